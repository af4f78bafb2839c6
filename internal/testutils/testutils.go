package testutils

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/nfrund/confirmflow/internal/config"
	"github.com/nfrund/confirmflow/internal/domain"
)

// ConfigForTests loads the .env.test file and returns a valid config.Provider.
// This is the definitive way to get configuration for integration tests.
func ConfigForTests(t *testing.T) config.Provider {
	t.Helper()

	// 1. Find project root by looking for go.mod to reliably locate .env.test
	path, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(path, "go.mod")); err == nil {
			break
		}
		if path == filepath.Dir(path) {
			t.Fatalf("could not find project root with go.mod")
		}
		path = filepath.Dir(path)
	}

	// 2. Manually read the .env.test file.
	env, err := godotenv.Read(filepath.Join(path, ".env.test"))
	if err != nil {
		t.Fatalf("failed to load .env.test file: %v", err)
	}

	// 3. Use t.Setenv so the values are restored when the test ends.
	for key, value := range env {
		t.Setenv(key, value)
	}

	cfg, err := config.FromEnv()
	if err != nil {
		t.Fatalf("failed to build config from .env.test: %v", err)
	}
	return cfg
}

// FakeVerifier is a scriptable domain.Verifier that records its calls.
type FakeVerifier struct {
	mu sync.Mutex

	// Code is the only code ConfirmCode accepts.
	Code string
	// ConfirmErr and ResendErr, when set, are returned instead.
	ConfirmErr error
	ResendErr  error

	Confirms []string
	Resends  []string
	Issued   []string
}

var _ domain.Verifier = (*FakeVerifier)(nil)

// ConfirmCode implements domain.Verifier.
func (f *FakeVerifier) ConfirmCode(ctx context.Context, identifier, code string) (*domain.Confirmation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Confirms = append(f.Confirms, identifier+":"+code)
	if f.ConfirmErr != nil {
		return nil, f.ConfirmErr
	}
	if code != f.Code {
		return nil, domain.NewFailure("Invalid verification code provided, please try again.")
	}
	return &domain.Confirmation{Username: identifier, ConfirmedAt: time.Now().UTC()}, nil
}

// ResendCode implements domain.Verifier.
func (f *FakeVerifier) ResendCode(ctx context.Context, identifier string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Resends = append(f.Resends, identifier)
	return f.ResendErr
}

// Issue records the address a code was issued to.
func (f *FakeVerifier) Issue(ctx context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Issued = append(f.Issued, email)
	return nil
}
