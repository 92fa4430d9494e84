package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/pageza/chef-fhe/backend/internal/logging"
	"github.com/pageza/chef-fhe/backend/internal/types"
	"github.com/pageza/chef-fhe/backend/internal/wallet"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrContractMismatch = errors.New("signed contract address does not match")
	ErrChainMismatch    = errors.New("signed chain id does not match")
	ErrSignatureExpired = errors.New("signature is outside its validity window")
	ErrSignatureWindow  = errors.New("signature validity window is longer than allowed")
	ErrUnknownPublicKey = errors.New("session public key was not issued by this service")
)

// DefaultTokenTTL caps the lifetime of a session token.
const DefaultTokenTTL = 24 * time.Hour

const tokenIssuer = "chef-fhe"

// AuthService issues wallet session tokens after checking a decryption signature.
type AuthService struct {
	jwtSecret       []byte
	contractAddress string
	chainID         int64
	tokenTTL        time.Duration
	keys            KeyRegistry
	now             func() time.Time
	logger          *zap.Logger
}

var _ IAuthService = (*AuthService)(nil)

// NewAuthService creates a new AuthService instance
func NewAuthService(jwtSecret, contractAddress string, chainID int64, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTokenTTL
	}
	return &AuthService{
		jwtSecret:       []byte(jwtSecret),
		contractAddress: contractAddress,
		chainID:         chainID,
		tokenTTL:        tokenTTL,
		keys:            NewMemoryKeyRegistry(),
		now:             time.Now,
		logger:          logging.OrNop(logger).Named("auth"),
	}
}

// SetKeyRegistry replaces the in-process registry of issued public keys,
// typically with a RedisKeyRegistry shared by every instance.
func (s *AuthService) SetKeyRegistry(keys KeyRegistry) {
	s.keys = keys
}

// SignatureParams returns fresh parameters for the wallet to sign.
func (s *AuthService) SignatureParams(ctx context.Context) (*types.SignatureParamsResponse, error) {
	params, err := wallet.NewSignatureParams(s.contractAddress, s.chainID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.keys.Remember(ctx, params.PublicKey, params.ValidUntil().Sub(s.now())); err != nil {
		return nil, fmt.Errorf("failed to record session key: %w", err)
	}
	return &types.SignatureParamsResponse{SignatureParams: params, Message: params.Message()}, nil
}

// CreateSession verifies a signed params message and issues a token for the signer.
func (s *AuthService) CreateSession(ctx context.Context, req *types.CreateSessionRequest) (*types.SessionResponse, error) {
	params := wallet.SignatureParams{
		PublicKey:       req.PublicKey,
		ContractAddress: req.ContractAddress,
		ChainID:         req.ChainID,
		StartTimestamp:  req.StartTimestamp,
		DurationDays:    req.DurationDays,
	}

	if !common.IsHexAddress(params.ContractAddress) ||
		common.HexToAddress(params.ContractAddress) != common.HexToAddress(s.contractAddress) {
		return nil, ErrContractMismatch
	}
	if params.ChainID != s.chainID {
		return nil, ErrChainMismatch
	}
	if params.DurationDays > wallet.DefaultDurationDays {
		return nil, fmt.Errorf("%w: %d days", ErrSignatureWindow, params.DurationDays)
	}
	now := s.now()
	if !params.ValidAt(now) {
		return nil, ErrSignatureExpired
	}
	known, err := s.keys.Known(ctx, params.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to look up session key: %w", err)
	}
	if !known {
		return nil, ErrUnknownPublicKey
	}
	if err := wallet.VerifySignature(req.Address, params.Message(), req.Signature); err != nil {
		s.logger.Info("signature verification failed", zap.String("address", req.Address), zap.Error(err))
		return nil, err
	}

	address := strings.ToLower(req.Address)
	expires := now.Add(s.tokenTTL)
	if until := params.ValidUntil(); until.Before(expires) {
		expires = until
	}

	token, err := s.GenerateToken(&types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   address,
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		Address:        address,
		ChainID:        s.chainID,
		SignatureValid: params.ValidUntil().Unix(),
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wallet session created", zap.String("address", address), zap.Time("expires_at", expires))
	return &types.SessionResponse{Token: token, Address: address, ExpiresAt: expires.Unix()}, nil
}

// GenerateToken signs claims with HS256.
func (s *AuthService) GenerateToken(claims *types.TokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a session token.
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || !common.IsHexAddress(claims.Address) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
