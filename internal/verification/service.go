// Package verification is an in-process identity-verification backend. It
// issues one-time confirmation codes, delivers them by email and checks them.
package verification

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfrund/confirmflow/internal/domain"
	"github.com/nfrund/confirmflow/internal/domain/auth_errors"
	"github.com/nfrund/confirmflow/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// Messages returned to users when a confirmation is rejected.
const (
	MsgNoPending       = "No pending sign up was found for this account."
	MsgExpired         = "Invalid code provided, please request a code again."
	MsgMismatch        = "Invalid verification code provided, please try again."
	MsgAttemptsLimit   = "Attempt limit exceeded, please try after some time."
	MsgThrottled       = "Throttled"
	MsgTemporaryFailed = "Something went wrong, please try again."
)

const keyPrefix = "confirm:"

// Options tunes code lifetime and abuse limits.
type Options struct {
	CodeTTL        time.Duration
	ResendInterval time.Duration
	MaxAttempts    int
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// pending is the stored state of an unconfirmed account.
type pending struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CodeHash  []byte    `json:"codeHash"`
	Attempts  int       `json:"attempts"`
	SentAt    time.Time `json:"sentAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service implements domain.Verifier.
type Service struct {
	kv       storage.KV
	sender   domain.EmailSender
	opts     Options
	now      func() time.Time
	generate func() (string, error)
}

var _ domain.Verifier = (*Service)(nil)

// NewService creates a Service storing pending confirmations in kv.
func NewService(kv storage.KV, sender domain.EmailSender, opts Options) *Service {
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = 15 * time.Minute
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{kv: kv, sender: sender, opts: opts, now: time.Now, generate: generateCode}
}

// Issue starts a confirmation for email, replacing any pending one, and sends
// the code. Failed attempts against a pending code carry over to the new one.
func (s *Service) Issue(ctx context.Context, email string) error {
	email = normalize(email)
	if email == "" {
		return domain.NewFailure("An email address is required.")
	}
	code, hash, err := s.newCode()
	if err != nil {
		return err
	}
	for {
		cur, err := s.load(ctx, email)
		if err != nil {
			return err
		}
		attempts := 0
		if cur.live {
			attempts = cur.rec.Attempts
		}
		swapped, err := s.replace(ctx, email, cur.raw, hash, attempts)
		if err != nil {
			return err
		}
		if swapped {
			return s.send(email, code)
		}
	}
}

// ResendCode sends a fresh code for a pending confirmation. Requests closer
// together than ResendInterval are rejected with the bare string "Throttled".
func (s *Service) ResendCode(ctx context.Context, identifier string) error {
	email := normalize(identifier)
	var (
		code string
		hash []byte
	)
	for {
		cur, err := s.load(ctx, email)
		if err != nil {
			return err
		}
		if !cur.live {
			return &domain.Failure{Message: MsgNoPending, Err: auth_errors.ErrNoPendingConfirmation}
		}
		if s.opts.ResendInterval > 0 && s.now().Sub(cur.rec.SentAt) < s.opts.ResendInterval {
			return domain.PlainFailure(MsgThrottled)
		}
		if hash == nil {
			if code, hash, err = s.newCode(); err != nil {
				return err
			}
		}
		// A lost swap means another request replaced the record; the next
		// pass sees its SentAt and is throttled.
		swapped, err := s.replace(ctx, email, cur.raw, hash, cur.rec.Attempts)
		if err != nil {
			return err
		}
		if swapped {
			return s.send(email, code)
		}
	}
}

// ConfirmCode checks code against the pending confirmation for identifier.
// The attempt is counted before the code is compared.
func (s *Service) ConfirmCode(ctx context.Context, identifier, code string) (*domain.Confirmation, error) {
	email := normalize(identifier)
	rec, err := s.countAttempt(ctx, email)
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(rec.CodeHash, []byte(strings.TrimSpace(code))); err != nil {
		slog.Info("Confirmation code mismatch", "email", email, "attempts", rec.Attempts)
		return nil, &domain.Failure{Message: MsgMismatch, Err: auth_errors.ErrCodeMismatch}
	}

	if err := s.consume(ctx, email, rec.CodeHash); err != nil {
		return nil, err
	}
	slog.Info("Account confirmed", "email", email, "pending_id", rec.ID)
	return &domain.Confirmation{Username: email, ConfirmedAt: s.now().UTC()}, nil
}

// PendingInfo describes an unconfirmed account without exposing its code.
type PendingInfo struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Attempts  int       `json:"attempts"`
	SentAt    time.Time `json:"sentAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Pending reports the pending confirmation for email, if any.
func (s *Service) Pending(ctx context.Context, email string) (PendingInfo, bool, error) {
	cur, err := s.load(ctx, normalize(email))
	if err != nil || !cur.live {
		return PendingInfo{}, false, err
	}
	rec := cur.rec
	return PendingInfo{
		ID:        rec.ID,
		Email:     rec.Email,
		Attempts:  rec.Attempts,
		SentAt:    rec.SentAt,
		ExpiresAt: rec.ExpiresAt,
	}, true, nil
}

func (s *Service) countAttempt(ctx context.Context, email string) (pending, error) {
	for {
		cur, err := s.load(ctx, email)
		if err != nil {
			return pending{}, err
		}
		if !cur.live {
			return pending{}, &domain.Failure{Message: MsgExpired, Err: auth_errors.ErrNoPendingConfirmation}
		}
		rec := cur.rec
		if rec.Attempts >= s.opts.MaxAttempts {
			return pending{}, &domain.Failure{Message: MsgAttemptsLimit, Err: auth_errors.ErrAttemptsExceeded}
		}
		rec.Attempts++
		swapped, err := s.swap(ctx, email, cur.raw, rec)
		if err != nil {
			return pending{}, err
		}
		if swapped {
			return rec, nil
		}
	}
}

// consume deletes the pending record as long as it still holds hash. Only one
// of several concurrent correct submissions wins.
func (s *Service) consume(ctx context.Context, email string, hash []byte) error {
	for {
		cur, err := s.load(ctx, email)
		if err != nil {
			return err
		}
		if !cur.live {
			return &domain.Failure{Message: MsgExpired, Err: auth_errors.ErrNoPendingConfirmation}
		}
		if !bytes.Equal(cur.rec.CodeHash, hash) {
			return &domain.Failure{Message: MsgMismatch, Err: auth_errors.ErrCodeMismatch}
		}
		swapped, err := s.kv.CompareAndSwap(ctx, keyPrefix+email, cur.raw, nil, 0)
		if err != nil {
			return &domain.Failure{Message: MsgTemporaryFailed, Err: err}
		}
		if swapped {
			return nil
		}
	}
}

func (s *Service) newCode() (string, []byte, error) {
	code, err := s.generate()
	if err != nil {
		return "", nil, &domain.Failure{Message: MsgTemporaryFailed, Err: err}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), s.opts.BcryptCost)
	if err != nil {
		return "", nil, &domain.Failure{Message: MsgTemporaryFailed, Err: err}
	}
	return code, hash, nil
}

// replace swaps old for a new pending record holding hash.
func (s *Service) replace(ctx context.Context, email string, old, hash []byte, attempts int) (bool, error) {
	now := s.now()
	return s.swap(ctx, email, old, pending{
		ID:        uuid.NewString(),
		Email:     email,
		CodeHash:  hash,
		Attempts:  attempts,
		SentAt:    now,
		ExpiresAt: now.Add(s.opts.CodeTTL),
	})
}

func (s *Service) send(email, code string) error {
	subject, body, err := codeEmail(code, s.opts.CodeTTL)
	if err != nil {
		return &domain.Failure{Message: MsgTemporaryFailed, Err: err}
	}
	if err := s.sender.Send(email, subject, body); err != nil {
		slog.Error("Failed to send confirmation code", "email", email, "error", err)
		return &domain.Failure{Message: "We could not send your code, please try again.", Err: err}
	}
	return nil
}

// stored is a pending record as read from the KV. raw holds the exact bytes
// for a later CompareAndSwap and is set even when the record has expired.
type stored struct {
	rec  pending
	raw  []byte
	live bool
}

func (s *Service) load(ctx context.Context, email string) (stored, error) {
	var cur stored
	raw, ok, err := s.kv.Get(ctx, keyPrefix+email)
	if err != nil {
		return cur, &domain.Failure{Message: MsgTemporaryFailed, Err: err}
	}
	if !ok {
		return cur, nil
	}
	cur.raw = raw
	if err := json.Unmarshal(raw, &cur.rec); err != nil {
		return cur, &domain.Failure{Message: MsgTemporaryFailed, Err: fmt.Errorf("corrupt pending record: %w", err)}
	}
	cur.live = s.now().Before(cur.rec.ExpiresAt)
	return cur, nil
}

func (s *Service) swap(ctx context.Context, email string, old []byte, rec pending) (bool, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return false, &domain.Failure{Message: MsgTemporaryFailed, Err: err}
	}
	ttl := rec.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return false, &domain.Failure{Message: MsgExpired, Err: auth_errors.ErrNoPendingConfirmation}
	}
	swapped, err := s.kv.CompareAndSwap(ctx, keyPrefix+email, old, raw, ttl)
	if err != nil {
		return false, &domain.Failure{Message: MsgTemporaryFailed, Err: err}
	}
	return swapped, nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var maxCode = big.NewInt(1_000_000)

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, maxCode)
	if err != nil {
		return "", errors.New("failed to generate confirmation code")
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
