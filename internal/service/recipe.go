package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/chef-fhe/backend/internal/contract"
	"github.com/pageza/chef-fhe/backend/internal/fhe"
	"github.com/pageza/chef-fhe/backend/internal/logging"
	"github.com/pageza/chef-fhe/backend/internal/models"
	"github.com/pageza/chef-fhe/backend/internal/types"
)

var (
	ErrNotFound          = errors.New("recipe request not found")
	ErrNotOwner          = errors.New("caller does not own this recipe request")
	ErrInvalidTransition = errors.New("recipe request is not pending")
	ErrNotGenerated      = errors.New("recipe has not been generated")
	ErrStoreUnavailable  = errors.New("contract not available")
	ErrInvalidInput      = errors.New("invalid input")
)

const (
	defaultLoadConcurrency = 8
	maxIDAttempts          = 5
)

// DietaryInput holds the plain dietary codes a user submits.
type DietaryInput struct {
	Ingredients int `validate:"gte=0"`
	Allergies   int `validate:"gte=0"`
	Preferences int `validate:"gte=0"`
	HealthGoal  int `validate:"gte=0"`
}

// RecipeServiceOptions tunes a RecipeService. Zero values select defaults.
type RecipeServiceOptions struct {
	// DecryptDelay simulates the latency of a decryption round trip.
	DecryptDelay time.Duration
	// LoadConcurrency bounds concurrent record reads while listing.
	LoadConcurrency int
	Now             func() time.Time
}

// RecipeService manages recipe requests stored in the contract.
type RecipeService struct {
	store           contract.Store
	logger          *zap.Logger
	validate        *validator.Validate
	now             func() time.Time
	decryptDelay    time.Duration
	loadConcurrency int

	// mu serializes read-modify-write cycles on the key list and on records.
	mu sync.Mutex
}

var _ IRecipeService = (*RecipeService)(nil)

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(store contract.Store, logger *zap.Logger, opts RecipeServiceOptions) *RecipeService {
	s := &RecipeService{
		store:           store,
		logger:          logging.OrNop(logger).Named("recipes"),
		validate:        validator.New(),
		now:             opts.Now,
		decryptDelay:    opts.DecryptDelay,
		loadConcurrency: opts.LoadConcurrency,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loadConcurrency <= 0 {
		s.loadConcurrency = defaultLoadConcurrency
	}
	return s
}

// ContractAddress returns the address of the backing contract.
func (s *RecipeService) ContractAddress() string {
	return s.store.Address()
}

// Available reports whether the contract can be reached.
func (s *RecipeService) Available(ctx context.Context) bool {
	ok, err := s.store.IsAvailable(ctx)
	if err != nil {
		s.logger.Warn("availability check failed", zap.Error(err))
		return false
	}
	return ok
}

func (s *RecipeService) requireAvailable(ctx context.Context) error {
	ok, err := s.store.IsAvailable(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if !ok {
		return ErrStoreUnavailable
	}
	return nil
}

// readKeys returns the stored id list. An unparsable list reads as empty.
func (s *RecipeService) readKeys(ctx context.Context) ([]string, error) {
	data, err := s.store.GetData(ctx, models.KeyListKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read key list: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		s.logger.Warn("key list is not a JSON array of ids, treating as empty", zap.Error(err))
		return nil, nil
	}
	return ids, nil
}

func (s *RecipeService) writeKeys(ctx context.Context, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := s.store.SetData(ctx, models.KeyListKey, data); err != nil {
		return fmt.Errorf("failed to write key list: %w", err)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// loadRecords reads every id concurrently. Unreadable, empty or unparsable
// blobs come back nil. Only cancellation of ctx fails the whole load.
func (s *RecipeService) loadRecords(ctx context.Context, ids []string) ([]*models.RecipeRequest, error) {
	records := make([]*models.RecipeRequest, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.loadConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			data, err := s.store.GetData(gctx, models.RecordKey(id))
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Warn("skipping unreadable recipe", zap.String("id", id), zap.Error(err))
				return nil
			}
			if len(data) == 0 {
				s.logger.Debug("skipping recipe without data", zap.String("id", id))
				return nil
			}
			r, err := models.UnmarshalBlob(id, data)
			if err != nil {
				s.logger.Warn("skipping unparsable recipe", zap.String("id", id), zap.Error(err))
				return nil
			}
			records[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// List returns the stored requests matching filters, newest first.
// An unreachable contract yields an empty list.
func (s *RecipeService) List(ctx context.Context, filters models.RecipeFilters) ([]*models.RecipeRequest, error) {
	if !s.Available(ctx) {
		s.logger.Info("contract not available, returning empty list")
		return []*models.RecipeRequest{}, nil
	}

	ids, err := s.readKeys(ctx)
	if err != nil {
		return nil, err
	}
	loaded, err := s.loadRecords(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}

	out := make([]*models.RecipeRequest, 0, len(loaded))
	for _, r := range loaded {
		if r != nil && filters.Match(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp > out[j].Timestamp
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Get loads a single request.
func (s *RecipeService) Get(ctx context.Context, id string) (*models.RecipeRequest, error) {
	r, _, err := s.load(ctx, id)
	return r, err
}

func (s *RecipeService) load(ctx context.Context, id string) (*models.RecipeRequest, []byte, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil, fmt.Errorf("%w: empty id", ErrInvalidInput)
	}
	data, err := s.store.GetData(ctx, models.RecordKey(id))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read recipe %s: %w", id, err)
	}
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r, err := models.UnmarshalBlob(id, data)
	if err != nil {
		return nil, nil, err
	}
	return r, data, nil
}

// Submit encrypts the dietary codes and stores a new pending request owned by owner.
func (s *RecipeService) Submit(ctx context.Context, owner string, input DietaryInput) (*models.RecipeRequest, error) {
	if err := s.validate.Var(owner, "required,eth_addr"); err != nil {
		return nil, fmt.Errorf("%w: owner must be a wallet address", ErrInvalidInput)
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.requireAvailable(ctx); err != nil {
		return nil, err
	}

	now := s.now()
	r := &models.RecipeRequest{
		EncryptedIngredients: fhe.EncryptNumber(float64(input.Ingredients)),
		EncryptedAllergies:   fhe.EncryptNumber(float64(input.Allergies)),
		EncryptedPreferences: fhe.EncryptNumber(float64(input.Preferences)),
		EncryptedHealthGoal:  fhe.EncryptNumber(float64(input.HealthGoal)),
		Timestamp:            now.Unix(),
		Owner:                common.HexToAddress(owner).Hex(),
		Status:               models.StatusPending,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.freshID(ctx, now)
	if err != nil {
		return nil, err
	}
	r.ID = id

	blob, err := r.MarshalBlob()
	if err != nil {
		return nil, err
	}
	// the record goes first so the key list never points at a missing blob
	if err := s.store.SetData(ctx, models.RecordKey(id), blob); err != nil {
		return nil, fmt.Errorf("failed to store recipe %s: %w", id, err)
	}

	ids, err := s.readKeys(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.writeKeys(ctx, append(dedupe(ids), id)); err != nil {
		return nil, err
	}

	s.logger.Info("recipe request submitted", zap.String("id", id), zap.String("owner", r.Owner))
	return r, nil
}

func (s *RecipeService) freshID(ctx context.Context, now time.Time) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := models.NewRequestID(now)
		existing, err := s.store.GetData(ctx, models.RecordKey(id))
		if err != nil {
			return "", fmt.Errorf("failed to check id %s: %w", id, err)
		}
		if len(existing) == 0 {
			return id, nil
		}
		s.logger.Debug("request id already taken, retrying", zap.String("id", id))
	}
	return "", fmt.Errorf("could not allocate a free request id after %d attempts", maxIDAttempts)
}

// transition moves a pending request owned by caller to next, patching the stored blob.
func (s *RecipeService) transition(ctx context.Context, caller, id string, next models.RequestStatus) (*models.RecipeRequest, error) {
	if err := s.requireAvailable(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r, data, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.IsOwnedBy(caller) {
		return nil, ErrNotOwner
	}
	if !r.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s is %s", ErrInvalidTransition, r.ID, r.Status)
	}

	patch := map[string]any{"status": next}
	if next == models.StatusGenerated {
		recipe, err := fhe.Compute(r.EncryptedIngredients, fhe.OpIncrease10)
		if err != nil {
			return nil, fmt.Errorf("failed to compute recipe %s: %w", r.ID, err)
		}
		patch["recipe"] = recipe
		r.EncryptedRecipe = recipe
	}

	updated, err := models.PatchBlob(data, patch)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetData(ctx, models.RecordKey(r.ID), updated); err != nil {
		return nil, fmt.Errorf("failed to update recipe %s: %w", r.ID, err)
	}

	r.Status = next
	s.logger.Info("recipe request updated", zap.String("id", r.ID), zap.String("status", string(next)))
	return r, nil
}

// Generate computes the encrypted recipe for a pending request.
func (s *RecipeService) Generate(ctx context.Context, caller, id string) (*models.RecipeRequest, error) {
	return s.transition(ctx, caller, id, models.StatusGenerated)
}

// Reject marks a pending request rejected.
func (s *RecipeService) Reject(ctx context.Context, caller, id string) (*models.RecipeRequest, error) {
	return s.transition(ctx, caller, id, models.StatusRejected)
}

// Decrypt returns the recipe text for a generated request owned by caller.
func (s *RecipeService) Decrypt(ctx context.Context, caller, id string) (string, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if !r.IsOwnedBy(caller) {
		return "", ErrNotOwner
	}
	if r.Status != models.StatusGenerated || r.EncryptedRecipe == "" {
		return "", fmt.Errorf("%w: %s is %s", ErrNotGenerated, r.ID, r.Status)
	}

	if s.decryptDelay > 0 {
		timer := time.NewTimer(s.decryptDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	value, err := fhe.DecryptNumber(r.EncryptedRecipe)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt recipe %s: %w", r.ID, err)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return "", fmt.Errorf("failed to decrypt recipe %s: %w", r.ID, fhe.ErrMalformed)
	}
	code := int(math.Mod(math.Floor(value), float64(len(recipeIngredients))))
	return GenerateRecipeText(code), nil
}

// Stats counts every stored request by status.
func (s *RecipeService) Stats(ctx context.Context) (models.RecipeStats, error) {
	var stats models.RecipeStats
	all, err := s.List(ctx, models.RecipeFilters{})
	if err != nil {
		return stats, err
	}
	for _, r := range all {
		stats.Add(r)
	}
	return stats, nil
}

// CheckIntegrity compares the key list against the stored records.
func (s *RecipeService) CheckIntegrity(ctx context.Context) (*types.IntegrityReport, error) {
	if err := s.requireAvailable(ctx); err != nil {
		return nil, err
	}
	ids, err := s.readKeys(ctx)
	if err != nil {
		return nil, err
	}
	ids = dedupe(ids)

	report := &types.IntegrityReport{KeyCount: len(ids), Dangling: []string{}, Orphans: []string{}}

	present := make([]bool, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.loadConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			data, err := s.store.GetData(gctx, models.RecordKey(id))
			if err != nil {
				return fmt.Errorf("failed to read recipe %s: %w", id, err)
			}
			present[i] = len(data) > 0
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, id := range ids {
		if !present[i] {
			report.Dangling = append(report.Dangling, id)
		}
	}

	lister, ok := s.store.(contract.Lister)
	if !ok {
		return report, nil
	}
	keys, err := lister.Keys(ctx, models.RecordKeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list record keys: %w", err)
	}
	listed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		listed[id] = struct{}{}
	}
	for _, key := range keys {
		if key == models.KeyListKey {
			continue
		}
		id := strings.TrimPrefix(key, models.RecordKeyPrefix)
		if _, ok := listed[id]; !ok {
			report.Orphans = append(report.Orphans, id)
		}
	}
	sort.Strings(report.Orphans)
	report.Checked = true

	if !report.OK() {
		s.logger.Warn("key list integrity problems found",
			zap.Strings("dangling", report.Dangling),
			zap.Strings("orphans", report.Orphans))
	}
	return report, nil
}
