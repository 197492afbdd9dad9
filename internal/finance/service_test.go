package finance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/logging"
)

// --- fakes ---

type fakeStore struct {
	currencies []Currency
	categories map[Kind]map[uuid.UUID][]string
	records    map[Kind][]*Record
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		categories: map[Kind]map[uuid.UUID][]string{
			Income:  {},
			Expense: {},
		},
		records: map[Kind][]*Record{},
	}
}

func (f *fakeStore) ListCurrencies(ctx context.Context) ([]Currency, error) {
	return f.currencies, nil
}

func (f *fakeStore) CountCurrencies(ctx context.Context) (int, error) {
	return len(f.currencies), nil
}

func (f *fakeStore) InsertCurrencies(ctx context.Context, currencies []Currency) error {
	f.currencies = append(f.currencies, currencies...)
	return nil
}

func (f *fakeStore) CreateCategorySet(ctx context.Context, kind Kind, userID uuid.UUID, categories []string) error {
	f.categories[kind][userID] = append([]string(nil), categories...)
	return nil
}

func (f *fakeStore) GetCategories(ctx context.Context, kind Kind, userID uuid.UUID) ([]string, error) {
	categories, ok := f.categories[kind][userID]
	if !ok {
		return nil, ErrCategoriesNotSet
	}
	return categories, nil
}

func (f *fakeStore) ReplaceCategories(ctx context.Context, kind Kind, userID uuid.UUID, categories []string) error {
	if _, ok := f.categories[kind][userID]; !ok {
		return ErrCategoriesNotSet
	}
	f.categories[kind][userID] = append([]string(nil), categories...)
	return nil
}

func (f *fakeStore) CreateRecord(ctx context.Context, kind Kind, userID uuid.UUID, input RecordInput) (*Record, error) {
	record := &Record{
		ID:           uuid.New(),
		UserID:       userID,
		CurrencyCode: input.CurrencyCode,
		Category:     input.Category,
		Comment:      input.Comment,
		Value:        input.Value,
		CreatedAt:    time.Now(),
	}
	f.records[kind] = append(f.records[kind], record)
	return record, nil
}

func (f *fakeStore) ListRecords(ctx context.Context, kind Kind, userID uuid.UUID, offset, limit int) ([]*Record, error) {
	var records []*Record
	for _, record := range f.records[kind] {
		if record.UserID == userID {
			records = append(records, record)
		}
	}
	return records, nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	return NewService(store, logging.NewLogger(true)), store
}

// --- currencies ---

func TestInitCurrencies_SeedsOnce(t *testing.T) {
	service, store := newTestService()

	require.NoError(t, service.InitCurrencies(context.Background()))
	seeded := len(store.currencies)
	assert.Greater(t, seeded, 0)

	// A second start must not duplicate rows.
	require.NoError(t, service.InitCurrencies(context.Background()))
	assert.Len(t, store.currencies, seeded)
}

// --- categories ---

func TestSeedDefaults(t *testing.T) {
	service, store := newTestService()
	userID := uuid.New()

	require.NoError(t, service.SeedDefaults(context.Background(), userID))

	assert.Equal(t, baseIncomeCategories, store.categories[Income][userID])
	assert.Equal(t, baseExpenseCategories, store.categories[Expense][userID])
}

func TestGetCategories_ReseedsMissing(t *testing.T) {
	service, _ := newTestService()
	userID := uuid.New()

	categories, err := service.GetCategories(context.Background(), Expense, userID)
	require.NoError(t, err)
	assert.Equal(t, baseExpenseCategories, categories)
}

func TestGetCategories_InvalidKind(t *testing.T) {
	service, _ := newTestService()

	_, err := service.GetCategories(context.Background(), Kind("savings"), uuid.New())
	assert.ErrorIs(t, err, ErrInvalidKind)
}

func TestAddCategory(t *testing.T) {
	service, _ := newTestService()
	userID := uuid.New()
	require.NoError(t, service.SeedDefaults(context.Background(), userID))

	categories, err := service.AddCategory(context.Background(), Income, userID, "Freelance")
	require.NoError(t, err)
	assert.Contains(t, categories, "Freelance")

	// Income and expense lists are independent.
	expenseCategories, err := service.GetCategories(context.Background(), Expense, userID)
	require.NoError(t, err)
	assert.NotContains(t, expenseCategories, "Freelance")
}

func TestAddCategory_Duplicate(t *testing.T) {
	service, _ := newTestService()
	userID := uuid.New()
	require.NoError(t, service.SeedDefaults(context.Background(), userID))

	_, err := service.AddCategory(context.Background(), Income, userID, "Salary")
	assert.ErrorIs(t, err, ErrCategoryExists)
}

func TestAddCategory_Empty(t *testing.T) {
	service, _ := newTestService()

	_, err := service.AddCategory(context.Background(), Income, uuid.New(), "")
	assert.ErrorIs(t, err, ErrCategoryRequired)
}

// --- records ---

func TestCreateRecord(t *testing.T) {
	service, _ := newTestService()
	userID := uuid.New()

	record, err := service.CreateRecord(context.Background(), Expense, userID, RecordInput{
		CurrencyCode: "USD",
		Category:     "Food",
		Comment:      "groceries",
		Value:        42.50,
	})
	require.NoError(t, err)

	assert.Equal(t, userID, record.UserID)
	assert.Equal(t, "Food", record.Category)
	assert.Equal(t, 42.50, record.Value)

	records, err := service.ListRecords(context.Background(), Expense, userID, 0, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestCreateRecord_Validation(t *testing.T) {
	service, _ := newTestService()
	userID := uuid.New()
	ctx := context.Background()

	tests := []struct {
		name    string
		kind    Kind
		input   RecordInput
		wantErr error
	}{
		{"bad kind", Kind("debt"), RecordInput{CurrencyCode: "USD", Category: "Food", Value: 1}, ErrInvalidKind},
		{"no currency", Income, RecordInput{Category: "Salary", Value: 1}, ErrCurrencyRequired},
		{"no category", Income, RecordInput{CurrencyCode: "USD", Value: 1}, ErrCategoryRequired},
		{"zero value", Income, RecordInput{CurrencyCode: "USD", Category: "Salary"}, ErrValueInvalid},
		{"negative value", Income, RecordInput{CurrencyCode: "USD", Category: "Salary", Value: -5}, ErrValueInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateRecord(ctx, tt.kind, userID, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestListRecords_ScopedToUser(t *testing.T) {
	service, _ := newTestService()
	first := uuid.New()
	second := uuid.New()
	ctx := context.Background()

	_, err := service.CreateRecord(ctx, Income, first, RecordInput{CurrencyCode: "USD", Category: "Salary", Value: 100})
	require.NoError(t, err)
	_, err = service.CreateRecord(ctx, Income, second, RecordInput{CurrencyCode: "EUR", Category: "Gift", Value: 20})
	require.NoError(t, err)

	records, err := service.ListRecords(ctx, Income, first, 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, first, records[0].UserID)
}
