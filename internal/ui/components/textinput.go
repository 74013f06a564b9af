package components

import (
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/quizgen/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with a label and an inline error.
type TextInput struct {
	Model       textinput.Model
	Label       string
	NumericOnly bool
	err         string
}

// NewTextInput creates a blurred input. charLimit <= 0 means unlimited.
func NewTextInput(label, placeholder string, numericOnly bool, charLimit int) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = max(0, charLimit)
	return TextInput{Model: ti, Label: label, NumericOnly: numericOnly}
}

// Focus gives the input keyboard focus.
func (t *TextInput) Focus() tea.Cmd { return t.Model.Focus() }

// Blur removes keyboard focus.
func (t *TextInput) Blur() { t.Model.Blur() }

// Focused reports whether the input has focus.
func (t TextInput) Focused() bool { return t.Model.Focused() }

// Update handles messages. Numeric inputs drop printable non-digits.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if t.NumericOnly {
		if kmsg, ok := msg.(tea.KeyMsg); ok {
			key := kmsg.String()
			if len(key) == 1 && (key[0] < '0' || key[0] > '9') {
				return t, nil
			}
		}
	}

	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// View renders the label, the input and any error.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.Label != "" {
		view = theme.Label.Render(t.Label+": ") + view
	}
	if t.err != "" {
		view += "  " + theme.ErrorText.Render(t.err)
	}
	return view
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// SetValue replaces the input value and moves the cursor to the end.
func (t *TextInput) SetValue(s string) {
	t.Model.SetValue(s)
	t.Model.CursorEnd()
}

// NumericValue returns the input value as an integer.
func (t TextInput) NumericValue() (int, error) {
	return strconv.Atoi(t.Model.Value())
}

// SetError shows msg next to the input. An empty msg clears it.
func (t *TextInput) SetError(msg string) {
	t.err = msg
}

// Err returns the current inline error.
func (t TextInput) Err() string { return t.err }
