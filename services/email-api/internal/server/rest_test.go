package server_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stoik/emailapi/internal/fixtures"
	"github.com/stoik/emailapi/internal/logging"
	"github.com/stoik/emailapi/internal/models"
	"github.com/stoik/emailapi/services/email-api/internal/client"
	"github.com/stoik/emailapi/services/email-api/internal/server"
	"github.com/stoik/emailapi/services/email-api/internal/store"
)

type restEnv struct {
	store   store.Store
	client  *client.Client
	baseURL string
}

// startServer serves a store holding exactly the default fixtures on an ephemeral port
func startServer(t *testing.T) *restEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	st := store.NewMemoryStore()
	_, err := fixtures.Seed(ctx, st, fixtures.DefaultCount)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := server.New(st, logging.Discard())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx, ln)
	}()

	select {
	case <-srv.Ready():
	case err := <-done:
		t.Fatalf("server stopped before ready: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server not ready within 5s")
	}

	t.Cleanup(func() {
		cancel()
		assert.NoError(t, <-done)
	})

	baseURL := fmt.Sprintf("http://%s", srv.Addr().String())
	return &restEnv{
		store:   st,
		client:  client.New(baseURL),
		baseURL: baseURL,
	}
}

func (e *restEnv) fixture(t *testing.T, subject string) models.Email {
	t.Helper()
	email, err := e.store.FindOne(context.Background(), models.BySubject(subject))
	require.NoError(t, err)
	return email
}

func TestRESTConnect(t *testing.T) {
	env := startServer(t)

	body, err := env.client.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "main index", body)
}

func TestRESTRetrieveEmail(t *testing.T) {
	env := startServer(t)
	seeded := env.fixture(t, "Subject 42")

	email, err := env.client.GetEmail(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Subject 42", email.Subject)
	assert.Equal(t, "Email message 42", email.Message)
	assert.Equal(t, seeded.ID, email.ID)
}

func TestRESTCreateEmail(t *testing.T) {
	env := startServer(t)

	email, err := env.client.CreateEmail(context.Background(), models.NewEmail{
		Subject: "New subject",
		Message: "New message",
	})
	require.NoError(t, err)
	assert.Equal(t, "New subject", email.Subject)
	assert.Equal(t, "New message", email.Message)
	assert.Greater(t, email.ID, int64(0))
}

func TestRESTListEmails(t *testing.T) {
	env := startServer(t)
	subjectRe := regexp.MustCompile(`^Subject [0-9]+$`)
	messageRe := regexp.MustCompile(`^Email message [0-9]+$`)

	emails, err := env.client.ListEmails(context.Background())
	require.NoError(t, err)
	require.Len(t, emails, 100)
	for _, email := range emails {
		assert.Regexp(t, subjectRe, email.Subject)
		assert.Regexp(t, messageRe, email.Message)
		assert.Greater(t, email.ID, int64(0))
	}
}

func TestRESTDeleteEmail(t *testing.T) {
	env := startServer(t)
	ctx := context.Background()
	seeded := env.fixture(t, "Subject 42")

	msg, err := env.client.DeleteEmail(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Item successfully deleted", msg)

	_, err = env.client.GetEmail(ctx, seeded.ID)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "email not found", apiErr.Message)
}

func TestRESTUpdateEmail(t *testing.T) {
	env := startServer(t)
	ctx := context.Background()
	seeded := env.fixture(t, "Subject 42")

	subject := "Changed Subject 42"
	email, err := env.client.UpdateEmail(ctx, seeded.ID, models.EmailPatch{Subject: &subject})
	require.NoError(t, err)
	assert.Equal(t, "Changed Subject 42", email.Subject)
	assert.Equal(t, "Email message 42", email.Message)
	assert.Equal(t, seeded.ID, email.ID)

	stored, err := env.store.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Changed Subject 42", stored.Subject)
	assert.Equal(t, "Email message 42", stored.Message)
	assert.Equal(t, seeded.ID, stored.ID)
}

func TestRESTGetIsRepeatable(t *testing.T) {
	env := startServer(t)
	seeded := env.fixture(t, "Subject 7")
	url := fmt.Sprintf("%s/email/%d", env.baseURL, seeded.ID)

	fetch := func() []byte {
		resp, err := http.Get(url)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return body
	}

	assert.Equal(t, fetch(), fetch())
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := server.New(store.NewMemoryStore(), logging.Discard())
	assert.Nil(t, srv.Addr())

	done := make(chan error, 1)
	go func() {
		done <- srv.ListenAndServe(ctx, "127.0.0.1:0")
	}()
	select {
	case <-srv.Ready():
	case err := <-done:
		t.Fatalf("server stopped before ready: %v", err)
	}
	require.NotNil(t, srv.Addr())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	_, err := net.DialTimeout("tcp", srv.Addr().String(), time.Second)
	assert.Error(t, err)
}
