// Package output renders confirmctl results as tables or JSON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/nfrund/confirmflow/internal/authstate"
	"github.com/nfrund/confirmflow/internal/domain"
	"github.com/nfrund/confirmflow/internal/verification"
)

// StateDisplay represents an auth state for display purposes
type StateDisplay struct {
	State string `json:"state"`
	Path  string `json:"path"`
	Topic string `json:"topic"`
}

// AllStates lists the states of the auth flow in the order a user meets them.
var AllStates = []authstate.State{
	authstate.SignIn,
	authstate.SignUp,
	authstate.ConfirmSignUp,
	authstate.SignedIn,
}

// States writes every auth state and its page.
func States(w io.Writer, format string) error {
	rows := make([]StateDisplay, len(AllStates))
	for i, s := range AllStates {
		rows[i] = StateDisplay{State: string(s), Path: authstate.PathFor(s), Topic: authstate.TopicStateChanged}
	}

	switch format {
	case "json":
		return writeJSON(w, struct {
			States []StateDisplay `json:"states"`
			Count  int            `json:"count"`
		}{States: rows, Count: len(rows)})
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STATE\tPATH\tTOPIC")
		fmt.Fprintln(tw, "-----\t----\t-----")
		for _, r := range rows {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.State, r.Path, r.Topic)
		}
		return tw.Flush()
	default:
		return unknownFormat(format)
	}
}

// Pending writes a pending confirmation.
func Pending(w io.Writer, format string, info verification.PendingInfo) error {
	switch format {
	case "json":
		return writeJSON(w, info)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "Email:\t%s\n", info.Email)
		fmt.Fprintf(tw, "ID:\t%s\n", info.ID)
		fmt.Fprintf(tw, "Attempts:\t%d\n", info.Attempts)
		fmt.Fprintf(tw, "Sent:\t%s\n", info.SentAt.Format(time.RFC3339))
		fmt.Fprintf(tw, "Expires:\t%s\n", info.ExpiresAt.Format(time.RFC3339))
		return tw.Flush()
	default:
		return unknownFormat(format)
	}
}

// Confirmation writes the result of a successful confirmation.
func Confirmation(w io.Writer, format string, c *domain.Confirmation) error {
	switch format {
	case "json":
		return writeJSON(w, c)
	case "table", "":
		_, err := fmt.Fprintf(w, "Confirmed %s at %s\n", c.Username, c.ConfirmedAt.Format(time.RFC3339))
		return err
	default:
		return unknownFormat(format)
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func unknownFormat(format string) error {
	return fmt.Errorf("unknown output format %q (use table or json)", format)
}
