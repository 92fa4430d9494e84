package api

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/chef-fhe/backend/internal/contract"
	"github.com/pageza/chef-fhe/backend/internal/middleware"
	"github.com/pageza/chef-fhe/backend/internal/service"
	"github.com/pageza/chef-fhe/backend/internal/types"
	"github.com/pageza/chef-fhe/backend/internal/wallet"
)

const (
	testContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
	testChainID  = int64(31337)
)

type testEnv struct {
	router *gin.Engine
	store  *contract.MemoryStore
	auth   *service.AuthService
}

type testWallet struct {
	key     *ecdsa.PrivateKey
	address string
	token   string
}

func setupTestRouter(t *testing.T, submitLimit int) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := contract.NewMemoryStore(testContract)
	recipes := service.NewRecipeService(store, zap.NewNop(), service.RecipeServiceOptions{})
	auth := service.NewAuthService("test-secret", testContract, testChainID, time.Hour, zap.NewNop())

	var limiter *middleware.RateLimiter
	if submitLimit > 0 {
		limiter = middleware.NewSubmissionRateLimiter(middleware.NewLocalCounter(), submitLimit, time.Hour, nil)
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler(zap.NewNop()))
	RegisterRoutes(router, Deps{RecipeService: recipes, AuthService: auth, SubmitLimiter: limiter})
	return &testEnv{router: router, store: store, auth: auth}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signParams produces a personal_sign signature the way a browser wallet does.
func signParams(t *testing.T, key *ecdsa.PrivateKey, params wallet.SignatureParams) string {
	t.Helper()
	sig, err := crypto.Sign(wallet.TextHash([]byte(params.Message())), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27
	return "0x" + hex.EncodeToString(sig)
}

// newWallet runs the params and session endpoints for a fresh key.
func (e *testEnv) newWallet(t *testing.T) *testWallet {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := crypto.PubkeyToAddress(key.PublicKey).Hex()

	w := e.do(t, http.MethodGet, "/api/v1/wallet/params", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var params types.SignatureParamsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &params))

	w = e.do(t, http.MethodPost, "/api/v1/wallet/session", "", types.CreateSessionRequest{
		Address:         address,
		PublicKey:       params.PublicKey,
		ContractAddress: params.ContractAddress,
		ChainID:         params.ChainID,
		StartTimestamp:  params.StartTimestamp,
		DurationDays:    params.DurationDays,
		Signature:       signParams(t, key, params.SignatureParams),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session types.SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.Equal(t, strings.ToLower(address), session.Address)

	return &testWallet{key: key, address: address, token: session.Token}
}

func decodeRecipe(t *testing.T, w *httptest.ResponseRecorder) types.RecipeResponse {
	t.Helper()
	var resp types.RecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func submit(t *testing.T, e *testEnv, tw *testWallet, ingredients, allergies int) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/recipes", tw.token, types.SubmitRecipeRequest{
		Ingredients: ingredients,
		Allergies:   allergies,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeRecipe(t, w).Recipe.ID
}

