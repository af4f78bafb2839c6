package authstate_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/confirmflow/internal/authstate"
	"github.com/nfrund/confirmflow/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []pubsub.Message
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, msg pubsub.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msg)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

// newContext returns an echo context with a cookie session store attached,
// carrying over the cookies of a previous response when given.
func newContext(t *testing.T, prev *httptest.ResponseRecorder) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if prev != nil {
		for _, ck := range prev.Result().Cookies() {
			req.AddCookie(ck)
		}
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	attach := session.Middleware(sessions.NewCookieStore([]byte("authstate-test-secret")))
	require.NoError(t, attach(func(echo.Context) error { return nil })(c))
	return c, rec
}

func TestMachine_FreshSession(t *testing.T) {
	c, _ := newContext(t, nil)
	m := authstate.NewMachine(c, nil)

	assert.Equal(t, authstate.SignIn, m.Current())
	assert.Empty(t, m.ExternalIdentifier())
	_, ok := m.Requested()
	assert.False(t, ok)
}

func TestMachine_RequestTransition(t *testing.T) {
	pub := &recordingPublisher{}
	c, rec := newContext(t, nil)
	m := authstate.NewMachine(c, pub)

	err := m.RequestTransition(c.Request().Context(), authstate.ConfirmSignUp, authstate.Data{Username: "pat@example.com"})
	require.NoError(t, err)

	target, ok := m.Requested()
	require.True(t, ok)
	assert.Equal(t, authstate.ConfirmSignUp, target)
	assert.Equal(t, authstate.ConfirmSignUp, m.Current())
	assert.Equal(t, "pat@example.com", m.ExternalIdentifier())

	require.Len(t, pub.msgs, 1)
	msg := pub.msgs[0]
	assert.Equal(t, authstate.TopicStateChanged, msg.Topic)
	assert.Equal(t, "pat@example.com", msg.Subject)

	var tr authstate.Transition
	require.NoError(t, json.Unmarshal(msg.Payload, &tr))
	assert.Equal(t, authstate.SignIn, tr.From)
	assert.Equal(t, authstate.ConfirmSignUp, tr.To)
	assert.Equal(t, tr.ID, msg.Metadata["event_id"])
	assert.JSONEq(t, `{"username":"pat@example.com"}`, string(tr.Payload))

	t.Run("state survives into the next request", func(t *testing.T) {
		next, _ := newContext(t, rec)
		m := authstate.NewMachine(next, nil)
		assert.Equal(t, authstate.ConfirmSignUp, m.Current())
		assert.Equal(t, "pat@example.com", m.Data().Username)
	})
}

func TestMachine_NilPayloadClearsData(t *testing.T) {
	c, rec := newContext(t, nil)
	m := authstate.NewMachine(c, nil)
	require.NoError(t, m.RequestTransition(context.Background(), authstate.ConfirmSignUp, authstate.Data{Username: "pat@example.com"}))

	next, _ := newContext(t, rec)
	m = authstate.NewMachine(next, nil)
	require.NoError(t, m.RequestTransition(context.Background(), authstate.SignIn, nil))
	assert.Equal(t, authstate.SignIn, m.Current())
	assert.Empty(t, m.ExternalIdentifier())
}

func TestMachine_PublishFailureDoesNotFailTransition(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("bus closed")}
	c, _ := newContext(t, nil)
	m := authstate.NewMachine(c, pub)

	require.NoError(t, m.RequestTransition(context.Background(), authstate.SignedIn, map[string]string{"username": "pat@example.com"}))
	assert.Equal(t, authstate.SignedIn, m.Current())
}

func TestMachine_UnencodablePayload(t *testing.T) {
	c, _ := newContext(t, nil)
	m := authstate.NewMachine(c, nil)

	err := m.RequestTransition(context.Background(), authstate.SignedIn, make(chan int))
	assert.ErrorContains(t, err, "failed to encode auth payload")
	assert.Equal(t, authstate.SignIn, m.Current())
}

func TestMachine_CorruptDataIsLogged(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	c, _ := newContext(t, nil)
	sess, err := session.Get("auth-session", c)
	require.NoError(t, err)
	sess.Values["state"] = string(authstate.ConfirmSignUp)
	sess.Values["data"] = `{"username":`

	m := authstate.NewMachine(c, nil)
	assert.Equal(t, authstate.ConfirmSignUp, m.Current())
	assert.Empty(t, m.ExternalIdentifier())
	assert.Contains(t, buf.String(), "Failed to decode auth data")
}

func TestPathFor(t *testing.T) {
	tests := map[authstate.State]string{
		authstate.SignIn:        "/auth/login",
		authstate.SignUp:        "/auth/signup",
		authstate.ConfirmSignUp: "/auth/confirm",
		authstate.SignedIn:      "/",
		authstate.State("bogus"): "/auth/login",
	}
	for state, want := range tests {
		assert.Equal(t, want, authstate.PathFor(state), "state %q", state)
	}
}

func TestWatch(t *testing.T) {
	bus := pubsub.NewBus()
	defer bus.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan authstate.Transition, 1)
	require.NoError(t, authstate.Watch(ctx, bus, func(ctx context.Context, tr authstate.Transition) error {
		got <- tr
		return nil
	}))

	c, _ := newContext(t, nil)
	m := authstate.NewMachine(c, bus)
	require.NoError(t, m.RequestTransition(ctx, authstate.SignedIn, authstate.Data{Username: "pat@example.com"}))

	select {
	case tr := <-got:
		assert.Equal(t, authstate.SignedIn, tr.To)
		assert.Equal(t, "pat@example.com", tr.Username)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for transition")
	}
}
