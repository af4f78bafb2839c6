package components

import (
	"strings"
	"testing"

	"github.com/nfrund/confirmflow/internal/confirm"
	"github.com/nfrund/confirmflow/internal/view/dto/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	g "maragu.dev/gomponents"
)

func render(t *testing.T, n g.Node) string {
	t.Helper()
	var b strings.Builder
	require.NoError(t, n.Render(&b))
	return b.String()
}

func TestInput(t *testing.T) {
	t.Run("error state and passthrough attributes", func(t *testing.T) {
		html := render(t, Input(auth.Field{
			Options: confirm.Options{
				confirm.OptName:   "code",
				confirm.OptPrefix: "lock",
				confirm.OptSize:   "large",
				"data-testid":     "code-input",
				"aria-label":      "Code",
			},
			Value: "12",
			Error: "Please enter secret code!",
		}))

		assert.Contains(t, html, `class="form-item has-error"`)
		assert.Contains(t, html, `class="input-affix size-large"`)
		assert.Contains(t, html, `class="icon icon-lock"`)
		assert.Contains(t, html, `aria-invalid="true" aria-label="Code" data-testid="code-input"`)
		assert.Contains(t, html, "Please enter secret code!")
	})

	t.Run("disabled without error", func(t *testing.T) {
		html := render(t, Input(auth.Field{
			Options: confirm.Options{confirm.OptName: "email", confirm.OptDisabled: true},
			Value:   "pat@example.com",
		}))

		assert.Contains(t, html, `type="text" id="email" name="email" value="pat@example.com" disabled`)
		assert.NotContains(t, html, "has-error")
		assert.NotContains(t, html, "icon-")
	})
}

func TestSubmitButton(t *testing.T) {
	html := render(t, SubmitButton(confirm.Options{
		confirm.OptType:      "primary",
		confirm.OptSize:      "large",
		confirm.OptClassName: "confirm-full-width wide",
		confirm.OptLoading:   true,
		confirm.OptDisabled:  true,
		confirm.OptLabel:     "Submit",
	}))

	assert.Contains(t, html, `type="submit"`)
	assert.Contains(t, html, `class="btn btn-primary size-large confirm-full-width wide"`)
	assert.Contains(t, html, `disabled aria-busy="true"`)
	assert.Contains(t, html, ">Submit</button>")
}

func TestFlashes_Empty(t *testing.T) {
	assert.Nil(t, Flashes(auth.ConfirmData{}.Flashes))
}
