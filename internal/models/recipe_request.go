package models

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// Keys used in the contract's key/value namespace.
const (
	KeyListKey      = "recipe_keys"
	RecordKeyPrefix = "recipe_"
)

// RecordKey returns the contract key holding the blob for a recipe request.
func RecordKey(id string) string {
	return RecordKeyPrefix + id
}

// RequestStatus is the lifecycle state of a recipe request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusGenerated RequestStatus = "generated"
	StatusRejected  RequestStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusGenerated, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s RequestStatus) Terminal() bool {
	return s == StatusGenerated || s == StatusRejected
}

// CanTransition reports whether a request may move from s to next.
// Only pending requests move, and only forward.
func (s RequestStatus) CanTransition(next RequestStatus) bool {
	return s == StatusPending && next.Terminal()
}

// RecipeRequest is a user's encrypted dietary submission and its generated recipe.
type RecipeRequest struct {
	ID                   string        `json:"id"`
	EncryptedIngredients string        `json:"encryptedIngredients"`
	EncryptedAllergies   string        `json:"encryptedAllergies"`
	EncryptedPreferences string        `json:"encryptedPreferences"`
	EncryptedHealthGoal  string        `json:"encryptedHealthGoal,omitempty"`
	EncryptedRecipe      string        `json:"encryptedRecipe"`
	Timestamp            int64         `json:"timestamp"`
	Owner                string        `json:"owner"`
	Status               RequestStatus `json:"status"`
}

// IsOwnedBy compares wallet addresses case-insensitively.
func (r *RecipeRequest) IsOwnedBy(address string) bool {
	return address != "" && strings.EqualFold(r.Owner, address)
}

// recipeBlob is the JSON document stored under RecordKey(id).
type recipeBlob struct {
	Ingredients string        `json:"ingredients"`
	Allergies   string        `json:"allergies"`
	Preferences string        `json:"preferences"`
	HealthGoal  string        `json:"healthGoal,omitempty"`
	Recipe      string        `json:"recipe"`
	Timestamp   int64         `json:"timestamp"`
	Owner       string        `json:"owner"`
	Status      RequestStatus `json:"status"`
}

// MarshalBlob encodes the request in its stored form. The id is the key, not part of the blob.
func (r *RecipeRequest) MarshalBlob() ([]byte, error) {
	return json.Marshal(recipeBlob{
		Ingredients: r.EncryptedIngredients,
		Allergies:   r.EncryptedAllergies,
		Preferences: r.EncryptedPreferences,
		HealthGoal:  r.EncryptedHealthGoal,
		Recipe:      r.EncryptedRecipe,
		Timestamp:   r.Timestamp,
		Owner:       r.Owner,
		Status:      r.Status,
	})
}

// UnmarshalBlob decodes a stored blob for the given id. A missing status reads as pending.
func UnmarshalBlob(id string, data []byte) (*RecipeRequest, error) {
	var blob recipeBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("failed to parse recipe %s: %w", id, err)
	}

	status := blob.Status
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return nil, fmt.Errorf("recipe %s has unknown status %q", id, status)
	}

	return &RecipeRequest{
		ID:                   id,
		EncryptedIngredients: blob.Ingredients,
		EncryptedAllergies:   blob.Allergies,
		EncryptedPreferences: blob.Preferences,
		EncryptedHealthGoal:  blob.HealthGoal,
		EncryptedRecipe:      blob.Recipe,
		Timestamp:            blob.Timestamp,
		Owner:                blob.Owner,
		Status:               status,
	}, nil
}

// PatchBlob overwrites the given top-level fields of a stored blob and keeps
// every other field, including ones this service does not know about.
func PatchBlob(data []byte, patch map[string]any) ([]byte, error) {
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse stored blob: %w", err)
	}
	for k, v := range patch {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode field %s: %w", k, err)
		}
		fields[k] = raw
	}
	return json.Marshal(fields)
}

const (
	idSuffixLen = 7
	idSuffixMax = 78364164096 // 36^7
)

// NewRequestID returns "<unix millis>-<7 base36 chars>".
func NewRequestID(now time.Time) string {
	suffix := strconv.FormatInt(rand.Int63n(idSuffixMax), 36)
	if len(suffix) < idSuffixLen {
		suffix = strings.Repeat("0", idSuffixLen-len(suffix)) + suffix
	}
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}

// RecipeFilters narrows a recipe listing.
type RecipeFilters struct {
	Status RequestStatus `json:"status,omitempty"`
	Owner  string        `json:"owner,omitempty"`
	Query  string        `json:"q,omitempty"`
}

// Match reports whether r passes every non-empty filter.
func (f RecipeFilters) Match(r *RecipeRequest) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Owner != "" && !r.IsOwnedBy(f.Owner) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(r.ID), q) && !strings.Contains(strings.ToLower(r.Owner), q) {
			return false
		}
	}
	return true
}

// RecipeStats counts requests by status.
type RecipeStats struct {
	Total     int `json:"total"`
	Generated int `json:"generated"`
	Pending   int `json:"pending"`
	Rejected  int `json:"rejected"`
}

// Add counts r.
func (s *RecipeStats) Add(r *RecipeRequest) {
	s.Total++
	switch r.Status {
	case StatusGenerated:
		s.Generated++
	case StatusPending:
		s.Pending++
	case StatusRejected:
		s.Rejected++
	}
}
