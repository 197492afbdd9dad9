package finance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"fintrack/internal/database"
)

// Repository handles finance data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// ListCurrencies returns the full currency reference table.
func (r *Repository) ListCurrencies(ctx context.Context) ([]Currency, error) {
	var dbCurrencies []database.Currency
	err := r.db.NewSelect().
		Model(&dbCurrencies).
		Order("currency_code ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}

	currencies := make([]Currency, 0, len(dbCurrencies))
	for _, c := range dbCurrencies {
		currencies = append(currencies, Currency{
			Code:   c.Code,
			Symbol: c.Symbol,
			Name:   c.Name,
		})
	}
	return currencies, nil
}

// CountCurrencies reports how many currency rows exist.
func (r *Repository) CountCurrencies(ctx context.Context) (int, error) {
	count, err := r.db.NewSelect().
		Model((*database.Currency)(nil)).
		Count(ctx)

	if err != nil {
		return 0, fmt.Errorf("failed to count currencies: %w", err)
	}
	return count, nil
}

// InsertCurrencies bulk-loads currency rows.
func (r *Repository) InsertCurrencies(ctx context.Context, currencies []Currency) error {
	dbCurrencies := make([]database.Currency, 0, len(currencies))
	for _, c := range currencies {
		dbCurrencies = append(dbCurrencies, database.Currency{
			Code:   c.Code,
			Symbol: c.Symbol,
			Name:   c.Name,
		})
	}

	_, err := r.db.NewInsert().
		Model(&dbCurrencies).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to insert currencies: %w", err)
	}
	return nil
}

// CreateCategorySet installs a user's category list for one ledger side.
func (r *Repository) CreateCategorySet(ctx context.Context, kind Kind, userID uuid.UUID, categories []string) error {
	var err error
	switch kind {
	case Income:
		set := &database.IncomeCategorySet{
			CategorySet: database.CategorySet{UserID: userID, Categories: categories},
		}
		_, err = r.db.NewInsert().Model(set).Exec(ctx)
	case Expense:
		set := &database.ExpenseCategorySet{
			CategorySet: database.CategorySet{UserID: userID, Categories: categories},
		}
		_, err = r.db.NewInsert().Model(set).Exec(ctx)
	default:
		return ErrInvalidKind
	}

	if err != nil {
		return fmt.Errorf("failed to create %s category set: %w", kind, err)
	}
	return nil
}

// GetCategories returns a user's category list for one ledger side.
func (r *Repository) GetCategories(ctx context.Context, kind Kind, userID uuid.UUID) ([]string, error) {
	var (
		categories []string
		err        error
	)

	switch kind {
	case Income:
		set := new(database.IncomeCategorySet)
		err = r.db.NewSelect().Model(set).Where("user_id = ?", userID).Scan(ctx)
		categories = set.Categories
	case Expense:
		set := new(database.ExpenseCategorySet)
		err = r.db.NewSelect().Model(set).Where("user_id = ?", userID).Scan(ctx)
		categories = set.Categories
	default:
		return nil, ErrInvalidKind
	}

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoriesNotSet
		}
		return nil, fmt.Errorf("failed to get %s categories: %w", kind, err)
	}
	return categories, nil
}

// ReplaceCategories overwrites a user's category list for one ledger side.
func (r *Repository) ReplaceCategories(ctx context.Context, kind Kind, userID uuid.UUID, categories []string) error {
	var (
		result sql.Result
		err    error
	)

	switch kind {
	case Income:
		result, err = r.db.NewUpdate().
			Model((*database.IncomeCategorySet)(nil)).
			Set("categories = ?", pgdialect.Array(categories)).
			Where("user_id = ?", userID).
			Exec(ctx)
	case Expense:
		result, err = r.db.NewUpdate().
			Model((*database.ExpenseCategorySet)(nil)).
			Set("categories = ?", pgdialect.Array(categories)).
			Where("user_id = ?", userID).
			Exec(ctx)
	default:
		return ErrInvalidKind
	}

	if err != nil {
		return fmt.Errorf("failed to update %s categories: %w", kind, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrCategoriesNotSet
	}
	return nil
}

// CreateRecord inserts an income or expense row.
func (r *Repository) CreateRecord(ctx context.Context, kind Kind, userID uuid.UUID, input RecordInput) (*Record, error) {
	record := database.FinanceRecord{
		UserID:       userID,
		CurrencyCode: input.CurrencyCode,
		Category:     input.Category,
		Comment:      input.Comment,
		Value:        input.Value,
	}

	switch kind {
	case Income:
		row := &database.Income{FinanceRecord: record}
		if _, err := r.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to create income: %w", err)
		}
		return mapRecord(row.ID, row.FinanceRecord), nil
	case Expense:
		row := &database.Expense{FinanceRecord: record}
		if _, err := r.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
			return nil, fmt.Errorf("failed to create expense: %w", err)
		}
		return mapRecord(row.ID, row.FinanceRecord), nil
	default:
		return nil, ErrInvalidKind
	}
}

// ListRecords returns a user's records for one ledger side, newest first.
func (r *Repository) ListRecords(ctx context.Context, kind Kind, userID uuid.UUID, offset, limit int) ([]*Record, error) {
	switch kind {
	case Income:
		var rows []database.Income
		err := r.db.NewSelect().
			Model(&rows).
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Offset(offset).
			Limit(limit).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list incomes: %w", err)
		}
		records := make([]*Record, 0, len(rows))
		for _, row := range rows {
			records = append(records, mapRecord(row.ID, row.FinanceRecord))
		}
		return records, nil
	case Expense:
		var rows []database.Expense
		err := r.db.NewSelect().
			Model(&rows).
			Where("user_id = ?", userID).
			Order("created_at DESC").
			Offset(offset).
			Limit(limit).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list expenses: %w", err)
		}
		records := make([]*Record, 0, len(rows))
		for _, row := range rows {
			records = append(records, mapRecord(row.ID, row.FinanceRecord))
		}
		return records, nil
	default:
		return nil, ErrInvalidKind
	}
}

func mapRecord(id uuid.UUID, record database.FinanceRecord) *Record {
	return &Record{
		ID:           id,
		UserID:       record.UserID,
		CurrencyCode: record.CurrencyCode,
		Category:     record.Category,
		Comment:      record.Comment,
		Value:        record.Value,
		CreatedAt:    record.CreatedAt,
	}
}
