package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stoik/emailapi/internal/models"
)

// ErrNotFound is returned when no email matches an id or filter
var ErrNotFound = errors.New("email not found")

// Store defines the data access operations on the Emails table
type Store interface {
	// Sync creates the Emails table if it does not exist yet
	Sync(ctx context.Context) error

	Create(ctx context.Context, email models.NewEmail) (models.Email, error)

	// BulkCreate inserts all emails atomically, returning them in input order with ids assigned
	BulkCreate(ctx context.Context, emails []models.NewEmail) ([]models.Email, error)

	FindByID(ctx context.Context, id int64) (models.Email, error)

	// FindOne returns the lowest-id email matching filter
	FindOne(ctx context.Context, filter models.EmailFilter) (models.Email, error)

	// FindAll returns every email ordered by id
	FindAll(ctx context.Context) ([]models.Email, error)

	// Update merges patch into the stored email and returns the full result
	Update(ctx context.Context, id int64, patch models.EmailPatch) (models.Email, error)

	Delete(ctx context.Context, id int64) error

	// Truncate removes all rows. Ids already handed out are not reused.
	Truncate(ctx context.Context) error

	Ping(ctx context.Context) error
	Close() error
}

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Open creates a store for the given driver ("memory", "postgres" or "mysql").
// An empty driver defaults to memory.
func Open(ctx context.Context, driver, url string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverPostgres, "postgresql", "pgx":
		s, err := NewPostgresStore(ctx, url)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverMySQL:
		s, err := NewMySQLStore(url)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q (supported: memory, postgres, mysql)", driver)
	}
}
