package types

import (
	"github.com/pageza/chef-fhe/backend/internal/models"
	"github.com/pageza/chef-fhe/backend/internal/wallet"
)

// Transaction banner states reported to the client.
const (
	TxPending = "pending"
	TxSuccess = "success"
	TxError   = "error"
)

// TransactionStatus is the outcome banner attached to mutating responses.
type TransactionStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RecipeResponse is returned by submit, generate and reject.
type RecipeResponse struct {
	Transaction TransactionStatus     `json:"transaction"`
	Recipe      *models.RecipeRequest `json:"recipe,omitempty"`
}

// RecipeListResponse is returned by the listing endpoint.
type RecipeListResponse struct {
	Recipes []*models.RecipeRequest `json:"recipes"`
	Total   int                     `json:"total"`
}

// DecryptResponse carries the decrypted recipe text.
type DecryptResponse struct {
	ID     string `json:"id"`
	Recipe string `json:"recipe"`
	Notice string `json:"notice"`
}

// SignatureParamsResponse tells the client what to sign.
type SignatureParamsResponse struct {
	wallet.SignatureParams
	Message string `json:"message"`
}

// SessionResponse is returned after a successful signature check.
type SessionResponse struct {
	Token     string `json:"token"`
	Address   string `json:"address"`
	ExpiresAt int64  `json:"expiresAt"`
}

// IntegrityReport lists key-list inconsistencies.
type IntegrityReport struct {
	KeyCount int      `json:"keyCount"`
	Dangling []string `json:"dangling"`
	Orphans  []string `json:"orphans"`
	Checked  bool     `json:"orphansChecked"`
}

// OK reports whether no inconsistency was found.
func (r IntegrityReport) OK() bool {
	return len(r.Dangling) == 0 && len(r.Orphans) == 0
}
