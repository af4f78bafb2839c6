// Package authstate is the host auth-state machine the sign-up confirmation
// flow talks to. The current state and its payload live in a cookie session so
// that each request sees the state left behind by the previous one.
package authstate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/confirmflow/internal/pubsub"
)

// State names a step of the authentication flow.
type State string

const (
	SignIn        State = "signIn"
	SignUp        State = "signUp"
	ConfirmSignUp State = "confirmSignUp"
	SignedIn      State = "signedIn"
)

// TopicStateChanged receives a Transition for every applied state change.
const TopicStateChanged = "auth.state.changed"

const (
	sessionName = "auth-session"
	keyState    = "state"
	keyData     = "data"
)

// Data is the auth payload carried alongside the current state.
type Data struct {
	Username string `json:"username"`
}

// Transition is the event published when the machine moves between states.
type Transition struct {
	ID       string          `json:"id"`
	From     State           `json:"from"`
	To       State           `json:"to"`
	Username string          `json:"username,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
	At       time.Time       `json:"at"`
}

// Machine reads and writes the auth state of the session bound to one request.
type Machine struct {
	c         echo.Context
	publisher pubsub.Publisher
	requested *State
}

// NewMachine binds a machine to the request in c. The publisher may be nil.
func NewMachine(c echo.Context, publisher pubsub.Publisher) *Machine {
	return &Machine{c: c, publisher: publisher}
}

// Current returns the session's state. A fresh session starts in SignIn.
func (m *Machine) Current() State {
	sess, err := session.Get(sessionName, m.c)
	if err != nil {
		return SignIn
	}
	if s, ok := sess.Values[keyState].(string); ok && s != "" {
		return State(s)
	}
	return SignIn
}

// Data decodes the payload stored with the current state.
func (m *Machine) Data() Data {
	var data Data
	sess, err := session.Get(sessionName, m.c)
	if err != nil {
		return data
	}
	if raw, ok := sess.Values[keyData].(string); ok && raw != "" {
		data = decodeData([]byte(raw))
	}
	return data
}

func decodeData(raw []byte) Data {
	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		slog.Warn("Failed to decode auth data", "error", err)
		return Data{}
	}
	return data
}

// ExternalIdentifier returns the username carried over from a previous step, if any.
func (m *Machine) ExternalIdentifier() string {
	return m.Data().Username
}

// Requested reports the last state requested through this machine.
func (m *Machine) Requested() (State, bool) {
	if m.requested == nil {
		return "", false
	}
	return *m.requested, true
}

// RequestTransition moves the session to target, storing payload as the new
// auth data. A nil payload clears the data.
func (m *Machine) RequestTransition(ctx context.Context, target State, payload any) error {
	var raw []byte
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode auth payload: %w", err)
		}
	}

	from := m.Current()

	sess, err := session.Get(sessionName, m.c)
	if err != nil {
		return fmt.Errorf("failed to load auth session: %w", err)
	}
	sess.Values[keyState] = string(target)
	sess.Values[keyData] = string(raw)
	if err := sess.Save(m.c.Request(), m.c.Response()); err != nil {
		return fmt.Errorf("failed to save auth session: %w", err)
	}
	m.requested = &target

	var data Data
	if raw != nil {
		data = decodeData(raw)
	}
	slog.Debug("Auth state changed", "from", from, "to", target, "username", data.Username)
	m.publish(ctx, Transition{
		ID:       uuid.NewString(),
		From:     from,
		To:       target,
		Username: data.Username,
		Payload:  raw,
		At:       time.Now().UTC(),
	})
	return nil
}

func (m *Machine) publish(ctx context.Context, t Transition) {
	if m.publisher == nil {
		return
	}
	body, err := json.Marshal(t)
	if err != nil {
		slog.Error("Failed to encode transition", "error", err)
		return
	}
	err = m.publisher.Publish(ctx, pubsub.Message{
		Topic:    TopicStateChanged,
		Subject:  t.Username,
		Payload:  body,
		Metadata: map[string]string{"event_id": t.ID},
	})
	if err != nil {
		slog.Warn("Failed to publish transition", "to", t.To, "error", err)
	}
}

// PathFor returns the route of the page that serves state.
func PathFor(state State) string {
	switch state {
	case SignedIn:
		return "/"
	case SignUp:
		return "/auth/signup"
	case ConfirmSignUp:
		return "/auth/confirm"
	default:
		return "/auth/login"
	}
}

// Watch subscribes fn to every transition published on sub.
func Watch(ctx context.Context, sub pubsub.Subscriber, fn func(context.Context, Transition) error) error {
	return sub.Subscribe(ctx, TopicStateChanged, func(ctx context.Context, msg pubsub.Message) error {
		var t Transition
		if err := json.Unmarshal(msg.Payload, &t); err != nil {
			return fmt.Errorf("failed to decode transition: %w", err)
		}
		return fn(ctx, t)
	})
}
