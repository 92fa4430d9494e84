package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims represents the claims in a wallet session token.
// Subject carries the lower-cased wallet address.
type TokenClaims struct {
	jwt.RegisteredClaims
	Address        string `json:"address"`
	ChainID        int64  `json:"chain_id"`
	SignatureValid int64  `json:"signature_valid_until"`
}
