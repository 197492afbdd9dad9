package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the persisted user record. The email stays claimed even after a
// soft delete (is_active=false), so uniqueness holds regardless of status.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	IsActive     bool      `bun:"is_active,notnull,default:true"`
	IsVerified   bool      `bun:"is_verified,notnull,default:false"`
	IsSuperuser  bool      `bun:"is_superuser,notnull,default:false"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt    time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// RefreshSession is a single refresh grant. A session is valid while
// now < created_at + expires_in seconds. The refresh token is an opaque
// UUID looked up directly, never decoded.
type RefreshSession struct {
	bun.BaseModel `bun:"table:refresh_sessions,alias:rs"`

	ID           uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	UserID       uuid.UUID `bun:"user_id,notnull,type:uuid"`
	RefreshToken uuid.UUID `bun:"refresh_token,notnull,type:uuid"`
	ExpiresIn    int64     `bun:"expires_in,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Profile is a user's display profile. At most one exists per user; the
// user id is the primary key.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	UserID       uuid.UUID `bun:"user_id,pk,type:uuid"`
	Username     string    `bun:"username"`
	CurrencyCode string    `bun:"currency_code,notnull"`
}

// Currency is a reference row seeded once at startup.
type Currency struct {
	bun.BaseModel `bun:"table:currencies,alias:c"`

	Code   string `bun:"currency_code,pk"`
	Symbol string `bun:"symbol,notnull"`
	Name   string `bun:"name,notnull"`
}

// CategorySet holds a user's category list for one side of the ledger.
// Two tables share the shape; the repository picks the table name.
type CategorySet struct {
	UserID     uuid.UUID `bun:"user_id,pk,type:uuid"`
	Categories []string  `bun:"categories,array,notnull"`
}

// IncomeCategorySet is the income-side category list.
type IncomeCategorySet struct {
	bun.BaseModel `bun:"table:income_categories,alias:ic"`
	CategorySet
}

// ExpenseCategorySet is the expense-side category list.
type ExpenseCategorySet struct {
	bun.BaseModel `bun:"table:expense_categories,alias:ec"`
	CategorySet
}

// FinanceRecord is a single income or expense row.
type FinanceRecord struct {
	UserID       uuid.UUID `bun:"user_id,notnull,type:uuid"`
	CurrencyCode string    `bun:"currency_code,notnull"`
	Category     string    `bun:"category,notnull"`
	Comment      string    `bun:"comment"`
	Value        float64   `bun:"value,notnull"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

// Income is a money-in record.
type Income struct {
	bun.BaseModel `bun:"table:incomes,alias:i"`

	ID uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	FinanceRecord
}

// Expense is a money-out record.
type Expense struct {
	bun.BaseModel `bun:"table:expenses,alias:e"`

	ID uuid.UUID `bun:"id,pk,type:uuid,default:gen_random_uuid()"`
	FinanceRecord
}
