package verification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/nfrund/confirmflow/internal/domain"
	"github.com/nfrund/confirmflow/internal/domain/auth_errors"
	"github.com/nfrund/confirmflow/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type sentEmail struct {
	to, subject, body string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentEmail
	err  error
}

func (f *fakeSender) Send(to, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentEmail{to: to, subject: subject, body: htmlBody})
	return nil
}

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func newTestService(t *testing.T) (*Service, *fakeSender, *testClock) {
	t.Helper()
	sender := &fakeSender{}
	clock := &testClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewService(storage.NewMemoryKV(), sender, Options{
		CodeTTL:        10 * time.Minute,
		ResendInterval: 30 * time.Second,
		MaxAttempts:    3,
		BcryptCost:     bcrypt.MinCost,
	})
	svc.now = clock.now
	codes := []string{"123456", "654321", "111111"}
	svc.generate = func() (string, error) {
		code := codes[0]
		codes = codes[1:]
		return code, nil
	}
	return svc, sender, clock
}

func TestIssueAndConfirm(t *testing.T) {
	ctx := context.Background()
	svc, sender, _ := newTestService(t)

	require.NoError(t, svc.Issue(ctx, " Bob@Example.com "))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "bob@example.com", sender.sent[0].to)
	assert.Equal(t, codeSubject, sender.sent[0].subject)
	assert.Contains(t, sender.sent[0].body, "123456")

	result, err := svc.ConfirmCode(ctx, "bob@example.com", "123456")
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", result.Username)

	_, err = svc.ConfirmCode(ctx, "bob@example.com", "123456")
	assert.Equal(t, MsgExpired, domain.FailureMessage(err), "a code can only be used once")
}

func TestConfirmCode_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown account", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.ConfirmCode(ctx, "nobody@example.com", "123456")
		assert.Equal(t, MsgExpired, domain.FailureMessage(err))
		assert.ErrorIs(t, err, auth_errors.ErrNoPendingConfirmation)
	})

	t.Run("wrong code then attempt limit", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		require.NoError(t, svc.Issue(ctx, "bob@example.com"))

		for i := 0; i < 3; i++ {
			_, err := svc.ConfirmCode(ctx, "bob@example.com", "000000")
			assert.Equal(t, MsgMismatch, domain.FailureMessage(err))
			assert.ErrorIs(t, err, auth_errors.ErrCodeMismatch)
		}
		_, err := svc.ConfirmCode(ctx, "bob@example.com", "123456")
		assert.Equal(t, MsgAttemptsLimit, domain.FailureMessage(err))
		assert.ErrorIs(t, err, auth_errors.ErrAttemptsExceeded)
	})

	t.Run("resend does not reset attempts", func(t *testing.T) {
		svc, sender, clock := newTestService(t)
		require.NoError(t, svc.Issue(ctx, "bob@example.com"))
		for i := 0; i < 3; i++ {
			_, err := svc.ConfirmCode(ctx, "bob@example.com", "000000")
			require.Error(t, err)
		}

		clock.t = clock.t.Add(time.Minute)
		require.NoError(t, svc.ResendCode(ctx, "bob@example.com"))
		require.Len(t, sender.sent, 2)

		_, err := svc.ConfirmCode(ctx, "bob@example.com", "654321")
		assert.Equal(t, MsgAttemptsLimit, domain.FailureMessage(err))

		require.NoError(t, svc.Issue(ctx, "bob@example.com"))
		_, err = svc.ConfirmCode(ctx, "bob@example.com", "111111")
		assert.Equal(t, MsgAttemptsLimit, domain.FailureMessage(err), "signing up again keeps the count")
	})

	t.Run("expired code", func(t *testing.T) {
		svc, _, clock := newTestService(t)
		require.NoError(t, svc.Issue(ctx, "bob@example.com"))
		clock.t = clock.t.Add(11 * time.Minute)

		_, err := svc.ConfirmCode(ctx, "bob@example.com", "123456")
		assert.Equal(t, MsgExpired, domain.FailureMessage(err))
	})
}

func TestResendCode(t *testing.T) {
	ctx := context.Background()

	t.Run("throttled as a bare string", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		require.NoError(t, svc.Issue(ctx, "bob@example.com"))

		err := svc.ResendCode(ctx, "bob@example.com")
		var plain domain.PlainFailure
		require.True(t, errors.As(err, &plain))
		assert.Equal(t, "Throttled", string(plain))
	})

	t.Run("new code replaces the old one", func(t *testing.T) {
		svc, sender, clock := newTestService(t)
		require.NoError(t, svc.Issue(ctx, "bob@example.com"))
		_, err := svc.ConfirmCode(ctx, "bob@example.com", "000000")
		require.Error(t, err)

		clock.t = clock.t.Add(time.Minute)
		require.NoError(t, svc.ResendCode(ctx, "bob@example.com"))
		require.Len(t, sender.sent, 2)
		assert.Contains(t, sender.sent[1].body, "654321")

		_, err = svc.ConfirmCode(ctx, "bob@example.com", "123456")
		assert.Equal(t, MsgMismatch, domain.FailureMessage(err))
		result, err := svc.ConfirmCode(ctx, "bob@example.com", "654321")
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", result.Username)
	})

	t.Run("nothing pending", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		err := svc.ResendCode(ctx, "bob@example.com")
		assert.Equal(t, MsgNoPending, domain.FailureMessage(err))
	})

	t.Run("delivery failure", func(t *testing.T) {
		svc, sender, clock := newTestService(t)
		require.NoError(t, svc.Issue(ctx, "bob@example.com"))
		clock.t = clock.t.Add(time.Minute)
		sender.err = errors.New("smtp down")

		err := svc.ResendCode(ctx, "bob@example.com")
		assert.Equal(t, "We could not send your code, please try again.", domain.FailureMessage(err))
		assert.ErrorContains(t, err, "smtp down")
	})
}

// sequentialCodes is safe for concurrent use.
func sequentialCodes() func() (string, error) {
	var (
		mu sync.Mutex
		n  int
	)
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%06d", n), nil
	}
}

// runConcurrently starts n calls of fn together and waits for all of them.
func runConcurrently(n int, fn func()) {
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			fn()
		}()
	}
	close(start)
	wg.Wait()
}

func TestConfirmCode_ConcurrentGuesses(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	svc.generate = sequentialCodes()
	require.NoError(t, svc.Issue(ctx, "bob@example.com"))

	var (
		mu       sync.Mutex
		messages = map[string]int{}
	)
	runConcurrently(50, func() {
		_, err := svc.ConfirmCode(ctx, "bob@example.com", "999999")
		mu.Lock()
		messages[domain.FailureMessage(err)]++
		mu.Unlock()
	})

	assert.Equal(t, 3, messages[MsgMismatch], "only MaxAttempts guesses reach the hash")
	assert.Equal(t, 47, messages[MsgAttemptsLimit])

	info, ok, err := svc.Pending(ctx, "bob@example.com")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, info.Attempts)
}

func TestConfirmCode_ConcurrentCorrectCode(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	svc.opts.MaxAttempts = 20
	require.NoError(t, svc.Issue(ctx, "bob@example.com"))

	var (
		mu        sync.Mutex
		confirmed int
	)
	runConcurrently(10, func() {
		if _, err := svc.ConfirmCode(ctx, "bob@example.com", "123456"); err == nil {
			mu.Lock()
			confirmed++
			mu.Unlock()
		}
	})
	assert.Equal(t, 1, confirmed, "a code can only be used once")
}

func TestResendCode_Concurrent(t *testing.T) {
	ctx := context.Background()
	svc, sender, clock := newTestService(t)
	svc.generate = sequentialCodes()
	require.NoError(t, svc.Issue(ctx, "bob@example.com"))
	clock.t = clock.t.Add(time.Minute)

	var (
		mu        sync.Mutex
		ok        int
		throttled int
	)
	runConcurrently(20, func() {
		err := svc.ResendCode(ctx, "bob@example.com")
		mu.Lock()
		defer mu.Unlock()
		var plain domain.PlainFailure
		switch {
		case err == nil:
			ok++
		case errors.As(err, &plain) && string(plain) == MsgThrottled:
			throttled++
		}
	})

	assert.Equal(t, 1, ok)
	assert.Equal(t, 19, throttled)
	assert.Len(t, sender.sent, 2)
}

func TestGenerateCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		assert.Len(t, code, 6)
	}
}

func TestPending(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newTestService(t)

	_, ok, err := svc.Pending(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, svc.Issue(ctx, "Pat@Example.com"))
	_, err = svc.ConfirmCode(ctx, "pat@example.com", "000000")
	require.Error(t, err)

	info, ok, err := svc.Pending(ctx, " PAT@example.com ")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "pat@example.com", info.Email)
	assert.Equal(t, 1, info.Attempts)
	assert.Equal(t, clock.t.Add(10*time.Minute), info.ExpiresAt)

	clock.t = clock.t.Add(11 * time.Minute)
	_, ok, err = svc.Pending(ctx, "pat@example.com")
	require.NoError(t, err)
	assert.False(t, ok)
}
