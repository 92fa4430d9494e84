// Package wallet builds the decryption signature message and verifies
// personal_sign (EIP-191) signatures produced by browser wallets.
package wallet

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// DefaultDurationDays is the validity window offered to clients.
const DefaultDurationDays = 30

// publicKeyHexLen is the number of hex digits in a generated session public key.
const publicKeyHexLen = 2000

var (
	ErrInvalidAddress   = errors.New("invalid wallet address")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrSignerMismatch   = errors.New("signature does not match address")
)

// SignatureParams are the values embedded in the message a wallet signs before decryption.
type SignatureParams struct {
	PublicKey       string `json:"publicKey"`
	ContractAddress string `json:"contractAddress"`
	ChainID         int64  `json:"chainId"`
	StartTimestamp  int64  `json:"startTimestamp"`
	DurationDays    int    `json:"durationDays"`
}

// NewSignatureParams returns params with a fresh random public key starting at now.
func NewSignatureParams(contractAddress string, chainID int64, now time.Time) (SignatureParams, error) {
	pk, err := GeneratePublicKey()
	if err != nil {
		return SignatureParams{}, err
	}
	return SignatureParams{
		PublicKey:       pk,
		ContractAddress: contractAddress,
		ChainID:         chainID,
		StartTimestamp:  now.Unix(),
		DurationDays:    DefaultDurationDays,
	}, nil
}

// Message renders the text the wallet signs.
func (p SignatureParams) Message() string {
	var b strings.Builder
	b.WriteString("publickey:")
	b.WriteString(p.PublicKey)
	b.WriteString("\ncontractAddresses:")
	b.WriteString(p.ContractAddress)
	b.WriteString("\ncontractsChainId:")
	b.WriteString(strconv.FormatInt(p.ChainID, 10))
	b.WriteString("\nstartTimestamp:")
	b.WriteString(strconv.FormatInt(p.StartTimestamp, 10))
	b.WriteString("\ndurationDays:")
	b.WriteString(strconv.Itoa(p.DurationDays))
	return b.String()
}

// ValidUntil is the end of the signature's validity window.
func (p SignatureParams) ValidUntil() time.Time {
	return time.Unix(p.StartTimestamp, 0).Add(time.Duration(p.DurationDays) * 24 * time.Hour)
}

// ValidAt reports whether t falls inside [start, start+duration).
func (p SignatureParams) ValidAt(t time.Time) bool {
	start := time.Unix(p.StartTimestamp, 0)
	return p.DurationDays > 0 && !t.Before(start) && t.Before(p.ValidUntil())
}

// GeneratePublicKey returns "0x" followed by 2000 random hex digits.
func GeneratePublicKey() (string, error) {
	buf := make([]byte, publicKeyHexLen/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate public key: %w", err)
	}
	return "0x" + hex.EncodeToString(buf), nil
}

// TextHash is the EIP-191 personal message hash:
// keccak256("\x19Ethereum Signed Message:\n" + len(message) + message).
func TextHash(message []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	fmt.Fprintf(h, "\x19Ethereum Signed Message:\n%d", len(message))
	h.Write(message)
	return h.Sum(nil)
}

// RecoverAddress returns the address that produced a 65-byte personal_sign signature.
func RecoverAddress(message string, signatureHex string) (common.Address, error) {
	sig, err := hex.DecodeString(strings.TrimPrefix(signatureHex, "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSignature, crypto.SignatureLength, len(sig))
	}
	// wallets emit v as 27/28
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// VerifySignature checks that signatureHex over message was made by address.
func VerifySignature(address, message, signatureHex string) error {
	if !common.IsHexAddress(address) {
		return ErrInvalidAddress
	}
	signer, err := RecoverAddress(message, signatureHex)
	if err != nil {
		return err
	}
	if signer != common.HexToAddress(address) {
		return ErrSignerMismatch
	}
	return nil
}

// NormalizeAddress lower-cases a hex address for use as an identity key.
func NormalizeAddress(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", ErrInvalidAddress
	}
	return strings.ToLower(common.HexToAddress(address).Hex()), nil
}
