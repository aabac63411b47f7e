package fixtures

import (
	"context"
	"fmt"

	"github.com/stoik/emailapi/internal/models"
)

// DefaultCount is the number of emails generated when no count is given
const DefaultCount = 100

// Seeder is the part of the store needed to reset and fill the Emails table
type Seeder interface {
	Sync(ctx context.Context) error
	Truncate(ctx context.Context) error
	BulkCreate(ctx context.Context, emails []models.NewEmail) ([]models.Email, error)
}

// Emails generates n deterministic emails: "Subject i" / "Email message i" for i in [0, n).
// n <= 0 falls back to DefaultCount.
func Emails(n int) []models.NewEmail {
	if n <= 0 {
		n = DefaultCount
	}

	emails := make([]models.NewEmail, 0, n)
	for i := 0; i < n; i++ {
		emails = append(emails, models.NewEmail{
			Subject: Subject(i),
			Message: Message(i),
		})
	}
	return emails
}

// Subject returns the fixture subject for index i
func Subject(i int) string {
	return fmt.Sprintf("Subject %d", i)
}

// Message returns the fixture message for index i
func Message(i int) string {
	return fmt.Sprintf("Email message %d", i)
}

// Seed ensures the schema exists, empties the table and inserts Emails(n).
// Afterwards the table holds exactly the generated rows.
func Seed(ctx context.Context, s Seeder, n int) ([]models.Email, error) {
	if err := s.Sync(ctx); err != nil {
		return nil, fmt.Errorf("failed to sync schema: %w", err)
	}
	if err := s.Truncate(ctx); err != nil {
		return nil, fmt.Errorf("failed to truncate emails: %w", err)
	}

	created, err := s.BulkCreate(ctx, Emails(n))
	if err != nil {
		return nil, fmt.Errorf("failed to insert fixtures: %w", err)
	}
	return created, nil
}
