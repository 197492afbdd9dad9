package finance

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/logging"
)

//go:embed currencies.json
var currenciesJSON []byte

var baseIncomeCategories = []string{
	"Salary", "Investment",
	"Pocket Money", "Pension",
	"Gift", "Other",
}

var baseExpenseCategories = []string{
	"Food",
	"Health",
	"Transport",
	"Beauty",
	"Apparel",
	"Education",
	"Household",
	"Pets",
	"Gift",
	"Other",
}

// Store is the persistence contract the finance service needs.
type Store interface {
	ListCurrencies(ctx context.Context) ([]Currency, error)
	CountCurrencies(ctx context.Context) (int, error)
	InsertCurrencies(ctx context.Context, currencies []Currency) error
	CreateCategorySet(ctx context.Context, kind Kind, userID uuid.UUID, categories []string) error
	GetCategories(ctx context.Context, kind Kind, userID uuid.UUID) ([]string, error)
	ReplaceCategories(ctx context.Context, kind Kind, userID uuid.UUID, categories []string) error
	CreateRecord(ctx context.Context, kind Kind, userID uuid.UUID, input RecordInput) (*Record, error)
	ListRecords(ctx context.Context, kind Kind, userID uuid.UUID, offset, limit int) ([]*Record, error)
}

// Service implements the finance operations: currency reference data,
// per-user category lists and income/expense records.
type Service struct {
	store  Store
	logger *logging.Logger
}

func NewService(store Store, logger *logging.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// InitCurrencies loads the embedded currency reference data on first start.
// A populated table is left untouched.
func (s *Service) InitCurrencies(ctx context.Context) error {
	count, err := s.store.CountCurrencies(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var currencies []Currency
	if err := json.Unmarshal(currenciesJSON, &currencies); err != nil {
		return fmt.Errorf("failed to decode embedded currencies: %w", err)
	}

	if err := s.store.InsertCurrencies(ctx, currencies); err != nil {
		return err
	}

	s.logger.Info("currency table seeded", "count", len(currencies))
	return nil
}

// GetCurrencies returns the currency reference table.
func (s *Service) GetCurrencies(ctx context.Context) ([]Currency, error) {
	return s.store.ListCurrencies(ctx)
}

// SeedDefaults installs the base income and expense categories for a new
// user. Called once at registration.
func (s *Service) SeedDefaults(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.CreateCategorySet(ctx, Income, userID, baseIncomeCategories); err != nil {
		return err
	}
	return s.store.CreateCategorySet(ctx, Expense, userID, baseExpenseCategories)
}

// GetCategories returns the user's category list for one ledger side.
// A user missing their category rows gets them re-seeded on first read.
func (s *Service) GetCategories(ctx context.Context, kind Kind, userID uuid.UUID) ([]string, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}

	categories, err := s.store.GetCategories(ctx, kind, userID)
	if errors.Is(err, ErrCategoriesNotSet) {
		if seedErr := s.SeedDefaults(ctx, userID); seedErr != nil {
			return nil, seedErr
		}
		return s.store.GetCategories(ctx, kind, userID)
	}
	return categories, err
}

// AddCategory appends a category to the user's list and returns the
// updated list. Duplicates are rejected.
func (s *Service) AddCategory(ctx context.Context, kind Kind, userID uuid.UUID, category string) ([]string, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if category == "" {
		return nil, ErrCategoryRequired
	}

	categories, err := s.GetCategories(ctx, kind, userID)
	if err != nil {
		return nil, err
	}

	for _, existing := range categories {
		if existing == category {
			return nil, ErrCategoryExists
		}
	}

	categories = append(categories, category)
	if err := s.store.ReplaceCategories(ctx, kind, userID, categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// CreateRecord validates and stores an income or expense entry.
func (s *Service) CreateRecord(ctx context.Context, kind Kind, userID uuid.UUID, input RecordInput) (*Record, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if input.CurrencyCode == "" {
		return nil, ErrCurrencyRequired
	}
	if input.Category == "" {
		return nil, ErrCategoryRequired
	}
	if input.Value <= 0 {
		return nil, ErrValueInvalid
	}

	return s.store.CreateRecord(ctx, kind, userID, input)
}

// ListRecords returns the user's records for one ledger side, newest first.
func (s *Service) ListRecords(ctx context.Context, kind Kind, userID uuid.UUID, offset, limit int) ([]*Record, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListRecords(ctx, kind, userID, offset, limit)
}
