package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cheftrack/cheftrack-backend/pkg/database"
	"golang.org/x/crypto/bcrypt"
)

// DefaultPassword is the plain-text password of fixture users
const DefaultPassword = "password123"

// UserFixture is a user row created for a test
type UserFixture struct {
	ID          string
	Email       string
	FirstName   string
	LastName    string
	IsSuperuser bool
}

// BatchFixture describes a batch row to insert
type BatchFixture struct {
	ProductID string
	Quantity  int
	Purchased time.Time
	Expires   time.Time
	IsExpired bool
	AddedBy   *string
	CostPrice string
	Supplier  string
}

// Fixtures inserts rows straight into the test database
type Fixtures struct {
	db  *database.DB
	mu  sync.Mutex
	seq int
}

// NewFixtures creates a fixture factory bound to db
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

func (f *Fixtures) next() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	return f.seq
}

// User inserts an active user with DefaultPassword
func (f *Fixtures) User(t *testing.T, opts ...func(*UserFixture)) UserFixture {
	t.Helper()
	n := f.next()
	u := UserFixture{
		Email:     fmt.Sprintf("cook%d@example.com", n),
		FirstName: "Test",
		LastName:  fmt.Sprintf("Cook%d", n),
	}
	for _, opt := range opts {
		opt(&u)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	err = f.db.QueryRowxContext(context.Background(), `
		INSERT INTO users (email, username, first_name, last_name, password_hash, is_superuser)
		VALUES ($1, $1, $2, $3, $4, $5)
		RETURNING id
	`, u.Email, u.FirstName, u.LastName, string(hash), u.IsSuperuser).Scan(&u.ID)
	if err != nil {
		t.Fatalf("failed to insert user fixture: %v", err)
	}
	return u
}

// WithEmail overrides the fixture user's email
func WithEmail(email string) func(*UserFixture) {
	return func(u *UserFixture) {
		u.Email = email
	}
}

// Superuser marks the fixture user as a superuser
func Superuser() func(*UserFixture) {
	return func(u *UserFixture) {
		u.IsSuperuser = true
	}
}

// Category inserts a category and returns its ID
func (f *Fixtures) Category(t *testing.T, name string) string {
	t.Helper()
	var id string
	err := f.db.QueryRowxContext(context.Background(),
		`INSERT INTO categories (name, description) VALUES ($1, '') RETURNING id`, name,
	).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert category fixture: %v", err)
	}
	return id
}

// Product inserts a product and returns its ID
func (f *Fixtures) Product(t *testing.T, barcode, name string, categoryID *string) string {
	t.Helper()
	var id string
	err := f.db.QueryRowxContext(context.Background(), `
		INSERT INTO products (name, barcode, category_id, unit_price)
		VALUES ($1, $2, $3, 1.00)
		RETURNING id
	`, name, barcode, categoryID).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert product fixture: %v", err)
	}
	return id
}

// Batch inserts a batch and returns its ID
func (f *Fixtures) Batch(t *testing.T, b BatchFixture) string {
	t.Helper()
	if b.Purchased.IsZero() {
		b.Purchased = time.Now().UTC()
	}
	if b.CostPrice == "" {
		b.CostPrice = "1.00"
	}
	if b.Supplier == "" {
		b.Supplier = "Test Supplier"
	}

	var id string
	err := f.db.QueryRowxContext(context.Background(), `
		INSERT INTO inventory_batches (
			product_id, quantity, purchase_date, expiry_date, supplier, cost_price, is_expired, added_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, b.ProductID, b.Quantity, b.Purchased, b.Expires, b.Supplier, b.CostPrice, b.IsExpired, b.AddedBy).Scan(&id)
	if err != nil {
		t.Fatalf("failed to insert batch fixture: %v", err)
	}
	return id
}

// Count returns the number of rows in table
func (f *Fixtures) Count(t *testing.T, table string) int {
	t.Helper()
	var n int
	if err := f.db.GetContext(context.Background(), &n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("failed to count %s: %v", table, err)
	}
	return n
}
