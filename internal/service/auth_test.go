package service_test

import (
	"context"
	"crypto/ecdsa"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/chef-fhe/backend/internal/service"
	"github.com/pageza/chef-fhe/backend/internal/types"
	"github.com/pageza/chef-fhe/backend/internal/wallet"
)

const (
	testSecret  = "test-secret"
	testChainID = int64(11155111)
)

func signMessage(t *testing.T, key *ecdsa.PrivateKey, message string) string {
	t.Helper()
	sig, err := crypto.Sign(wallet.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27
	return "0x" + hex.EncodeToString(sig)
}

// signedSession asks the service for params and signs them with a fresh key.
func signedSession(t *testing.T, svc *service.AuthService) (*types.CreateSessionRequest, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	params, err := svc.SignatureParams(context.Background())
	require.NoError(t, err)

	return &types.CreateSessionRequest{
		Address:         address,
		PublicKey:       params.PublicKey,
		ContractAddress: params.ContractAddress,
		ChainID:         params.ChainID,
		StartTimestamp:  params.StartTimestamp,
		DurationDays:    params.DurationDays,
		Signature:       signMessage(t, key, params.Message),
	}, address
}

func TestSignatureParams(t *testing.T) {
	svc := service.NewAuthService(testSecret, contractAddr, testChainID, 0, nil)

	params, err := svc.SignatureParams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, contractAddr, params.ContractAddress)
	assert.Equal(t, testChainID, params.ChainID)
	assert.Equal(t, wallet.DefaultDurationDays, params.DurationDays)
	assert.Equal(t, params.SignatureParams.Message(), params.Message)
	assert.True(t, strings.HasPrefix(params.Message, "publickey:0x"))
}

func TestCreateSessionIssuesToken(t *testing.T) {
	svc := service.NewAuthService(testSecret, contractAddr, testChainID, time.Hour, nil)
	req, address := signedSession(t, svc)

	session, err := svc.CreateSession(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(address), session.Address)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), session.ExpiresAt, 5)

	claims, err := svc.ValidateToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(address), claims.Address)
	assert.Equal(t, strings.ToLower(address), claims.Subject)
	assert.Equal(t, testChainID, claims.ChainID)
	assert.Equal(t, req.StartTimestamp+int64(req.DurationDays)*86400, claims.SignatureValid)
}

func TestCreateSessionTokenNeverOutlivesSignature(t *testing.T) {
	svc := service.NewAuthService(testSecret, contractAddr, testChainID, 365*24*time.Hour, nil)
	req, _ := signedSession(t, svc)

	session, err := svc.CreateSession(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, req.StartTimestamp+int64(req.DurationDays)*86400, session.ExpiresAt)
}

func TestCreateSessionRejections(t *testing.T) {
	svc := service.NewAuthService(testSecret, contractAddr, testChainID, 0, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(r *types.CreateSessionRequest)
		want   error
	}{
		{"other contract", func(r *types.CreateSessionRequest) { r.ContractAddress = bob }, service.ErrContractMismatch},
		{"other chain", func(r *types.CreateSessionRequest) { r.ChainID = 1 }, service.ErrChainMismatch},
		{"expired window", func(r *types.CreateSessionRequest) { r.StartTimestamp -= 31 * 86400 }, service.ErrSignatureExpired},
		{"future window", func(r *types.CreateSessionRequest) { r.StartTimestamp += 3600 }, service.ErrSignatureExpired},
		{"tampered key", func(r *types.CreateSessionRequest) { r.PublicKey = "0x00" }, service.ErrUnknownPublicKey},
		{"century window", func(r *types.CreateSessionRequest) {
			r.StartTimestamp -= 1000 * 86400
			r.DurationDays = 36500
		}, service.ErrSignatureWindow},
		{"wrong signer", func(r *types.CreateSessionRequest) { r.Address = alice }, wallet.ErrSignerMismatch},
		{"garbage signature", func(r *types.CreateSessionRequest) { r.Signature = "0x1234" }, wallet.ErrInvalidSignature},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := signedSession(t, svc)
			tt.mutate(req)
			_, err := svc.CreateSession(ctx, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateSessionRequiresIssuedPublicKey(t *testing.T) {
	svc := service.NewAuthService(testSecret, contractAddr, testChainID, 0, nil)
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	// correctly signed, but the params never came from this service
	params, err := wallet.NewSignatureParams(contractAddr, testChainID, time.Now())
	require.NoError(t, err)
	_, err = svc.CreateSession(context.Background(), &types.CreateSessionRequest{
		Address:         crypto.PubkeyToAddress(key.PublicKey).Hex(),
		PublicKey:       params.PublicKey,
		ContractAddress: params.ContractAddress,
		ChainID:         params.ChainID,
		StartTimestamp:  params.StartTimestamp,
		DurationDays:    params.DurationDays,
		Signature:       signMessage(t, key, params.Message()),
	})
	assert.ErrorIs(t, err, service.ErrUnknownPublicKey)
}

func TestCreateSessionUsesSharedKeyRegistry(t *testing.T) {
	shared := service.NewMemoryKeyRegistry()
	issuer := service.NewAuthService(testSecret, contractAddr, testChainID, 0, nil)
	issuer.SetKeyRegistry(shared)
	other := service.NewAuthService(testSecret, contractAddr, testChainID, 0, nil)
	req, _ := signedSession(t, issuer)

	_, err := other.CreateSession(context.Background(), req)
	assert.ErrorIs(t, err, service.ErrUnknownPublicKey)

	other.SetKeyRegistry(shared)
	_, err = other.CreateSession(context.Background(), req)
	assert.NoError(t, err)
}

func TestValidateTokenRejectsBadTokens(t *testing.T) {
	svc := service.NewAuthService(testSecret, contractAddr, testChainID, 0, nil)
	other := service.NewAuthService("other-secret", contractAddr, testChainID, 0, nil)

	claims := func(exp time.Time) *types.TokenClaims {
		return &types.TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
			Address:          strings.ToLower(alice),
		}
	}

	forged, err := other.GenerateToken(claims(time.Now().Add(time.Hour)))
	require.NoError(t, err)
	_, err = svc.ValidateToken(forged)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	expired, err := svc.GenerateToken(claims(time.Now().Add(-time.Minute)))
	require.NoError(t, err)
	_, err = svc.ValidateToken(expired)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	noExpiry, err := svc.GenerateToken(&types.TokenClaims{Address: strings.ToLower(alice)})
	require.NoError(t, err)
	_, err = svc.ValidateToken(noExpiry)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, claims(time.Now().Add(time.Hour)))
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ValidateToken(unsigned)
	assert.ErrorIs(t, err, service.ErrInvalidToken)

	valid, err := svc.GenerateToken(claims(time.Now().Add(time.Hour)))
	require.NoError(t, err)
	got, err := svc.ValidateToken(valid)
	require.NoError(t, err)
	assert.Equal(t, strings.ToLower(alice), got.Address)
}
