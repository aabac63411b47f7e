package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stoik/emailapi/internal/models"
	"github.com/stoik/emailapi/services/email-api/internal/db"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS "Emails" (
	    id BIGSERIAL PRIMARY KEY,
	    subject TEXT NOT NULL,
	    message TEXT NOT NULL
	);
`

type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to connString and returns a store backed by the pool
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := db.Connect(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresStoreFromPool wraps an already configured pool. Close will close it.
func NewPostgresStoreFromPool(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Sync(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to create Emails table: %w", err)
	}
	return nil
}

func (p *PostgresStore) Create(ctx context.Context, email models.NewEmail) (models.Email, error) {
	query := `
		INSERT INTO "Emails" (subject, message)
		VALUES ($1, $2)
		RETURNING id, subject, message
	`

	var created models.Email
	err := p.pool.QueryRow(ctx, query, email.Subject, email.Message).Scan(
		&created.ID,
		&created.Subject,
		&created.Message,
	)
	if err != nil {
		return models.Email{}, fmt.Errorf("failed to insert email: %w", err)
	}
	return created, nil
}

func (p *PostgresStore) BulkCreate(ctx context.Context, emails []models.NewEmail) ([]models.Email, error) {
	if len(emails) == 0 {
		return []models.Email{}, nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, e := range emails {
		batch.Queue(`INSERT INTO "Emails" (subject, message) VALUES ($1, $2) RETURNING id, subject, message`,
			e.Subject, e.Message)
	}

	results := tx.SendBatch(ctx, batch)
	created := make([]models.Email, 0, len(emails))
	for range emails {
		var email models.Email
		if err := results.QueryRow().Scan(&email.ID, &email.Subject, &email.Message); err != nil {
			results.Close()
			return nil, fmt.Errorf("failed to insert email: %w", err)
		}
		created = append(created, email)
	}
	if err := results.Close(); err != nil {
		return nil, fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit bulk insert: %w", err)
	}
	return created, nil
}

func (p *PostgresStore) FindByID(ctx context.Context, id int64) (models.Email, error) {
	query := `SELECT id, subject, message FROM "Emails" WHERE id = $1`
	return p.scanOne(ctx, query, id)
}

func (p *PostgresStore) FindOne(ctx context.Context, filter models.EmailFilter) (models.Email, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Subject != nil {
		args = append(args, *filter.Subject)
		conds = append(conds, fmt.Sprintf("subject = $%d", len(args)))
	}
	if filter.Message != nil {
		args = append(args, *filter.Message)
		conds = append(conds, fmt.Sprintf("message = $%d", len(args)))
	}

	query := `SELECT id, subject, message FROM "Emails"`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id LIMIT 1"

	return p.scanOne(ctx, query, args...)
}

func (p *PostgresStore) scanOne(ctx context.Context, query string, args ...interface{}) (models.Email, error) {
	var email models.Email
	err := p.pool.QueryRow(ctx, query, args...).Scan(
		&email.ID,
		&email.Subject,
		&email.Message,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Email{}, ErrNotFound
	}
	if err != nil {
		return models.Email{}, fmt.Errorf("failed to query email: %w", err)
	}
	return email, nil
}

func (p *PostgresStore) FindAll(ctx context.Context) ([]models.Email, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, subject, message FROM "Emails" ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	defer rows.Close()

	emails := make([]models.Email, 0)
	for rows.Next() {
		var email models.Email
		if err := rows.Scan(&email.ID, &email.Subject, &email.Message); err != nil {
			return nil, fmt.Errorf("failed to scan email: %w", err)
		}
		emails = append(emails, email)
	}

	return emails, rows.Err()
}

func (p *PostgresStore) Update(ctx context.Context, id int64, patch models.EmailPatch) (models.Email, error) {
	// COALESCE keeps the stored value for fields the patch leaves unset
	query := `
		UPDATE "Emails"
		SET subject = COALESCE($2, subject),
		    message = COALESCE($3, message)
		WHERE id = $1
		RETURNING id, subject, message
	`
	return p.scanOne(ctx, query, id, patch.Subject, patch.Message)
}

func (p *PostgresStore) Delete(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM "Emails" WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStore) Truncate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `TRUNCATE TABLE "Emails"`); err != nil {
		return fmt.Errorf("failed to truncate Emails: %w", err)
	}
	return nil
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}
