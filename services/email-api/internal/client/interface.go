package client

import (
	"context"

	"github.com/stoik/emailapi/internal/models"
)

// EmailAPI defines the operations exposed by the email REST server
type EmailAPI interface {
	// Index returns the plain text body of GET /
	Index(ctx context.Context) (string, error)

	ListEmails(ctx context.Context) ([]models.Email, error)
	GetEmail(ctx context.Context, id int64) (models.Email, error)
	CreateEmail(ctx context.Context, email models.NewEmail) (models.Email, error)

	// UpdateEmail sends only the fields set in patch
	UpdateEmail(ctx context.Context, id int64, patch models.EmailPatch) (models.Email, error)

	// DeleteEmail returns the confirmation message from the server
	DeleteEmail(ctx context.Context, id int64) (string, error)
}

var _ EmailAPI = (*Client)(nil)
