package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gittutor/tutor/internal/form"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldSecret
	fieldCheck
	fieldChoice
)

// field is one input of a fieldSet.
type field struct {
	id      form.Field
	label   string
	kind    fieldKind
	input   textinput.Model
	checked bool
	choices []string
	choice  int
	hidden  bool
}

func textField(id form.Field, label, placeholder string, limit int) field {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Prompt = "› "
	return field{id: id, label: label, kind: fieldText, input: ti}
}

func secretField(id form.Field, label string) field {
	f := textField(id, label, "", 128)
	f.kind = fieldSecret
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

func checkField(id form.Field, label string) field {
	return field{id: id, label: label, kind: fieldCheck}
}

func choiceField(id form.Field, label string, choices ...string) field {
	return field{id: id, label: label, kind: fieldChoice, choices: choices}
}

// fieldSet is an ordered group of inputs with a single focus.
type fieldSet struct {
	fields []field
	focus  int
}

func newFieldSet(fields ...field) *fieldSet {
	fs := &fieldSet{fields: fields}
	fs.applyFocus()
	return fs
}

func (fs *fieldSet) index(id form.Field) int {
	for i := range fs.fields {
		if fs.fields[i].id == id {
			return i
		}
	}
	return -1
}

func (fs *fieldSet) focused() *field {
	if fs.focus < 0 || fs.focus >= len(fs.fields) {
		return nil
	}
	return &fs.fields[fs.focus]
}

// focusedID returns the id of the focused field.
func (fs *fieldSet) focusedID() form.Field {
	if f := fs.focused(); f != nil {
		return f.id
	}
	return ""
}

func (fs *fieldSet) applyFocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range fs.fields {
		f := &fs.fields[i]
		if f.kind != fieldText && f.kind != fieldSecret {
			continue
		}
		if i == fs.focus {
			cmd = f.input.Focus()
		} else {
			f.input.Blur()
		}
	}
	return cmd
}

// move shifts focus by delta, skipping hidden fields.
func (fs *fieldSet) move(delta int) tea.Cmd {
	n := len(fs.fields)
	if n == 0 {
		return nil
	}
	i := fs.focus
	for range n {
		i = (i + delta + n) % n
		if !fs.fields[i].hidden {
			break
		}
	}
	fs.focus = i
	return fs.applyFocus()
}

func (fs *fieldSet) next() tea.Cmd { return fs.move(1) }
func (fs *fieldSet) prev() tea.Cmd { return fs.move(-1) }

// blur removes the cursor from every input.
func (fs *fieldSet) blur() {
	for i := range fs.fields {
		fs.fields[i].input.Blur()
	}
}

// update feeds a key to the focused field and reports which field changed.
func (fs *fieldSet) update(msg tea.KeyMsg) (form.Field, tea.Cmd) {
	f := fs.focused()
	if f == nil {
		return "", nil
	}
	switch f.kind {
	case fieldCheck:
		if msg.String() == " " {
			f.checked = !f.checked
			return f.id, nil
		}
		return "", nil
	case fieldChoice:
		switch msg.String() {
		case " ", "right", "l":
			f.choice = (f.choice + 1) % len(f.choices)
			return f.id, nil
		case "left", "h":
			f.choice = (f.choice - 1 + len(f.choices)) % len(f.choices)
			return f.id, nil
		}
		return "", nil
	}
	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if f.input.Value() != before {
		return f.id, cmd
	}
	return "", cmd
}

func (fs *fieldSet) value(id form.Field) string {
	if i := fs.index(id); i >= 0 {
		return fs.fields[i].input.Value()
	}
	return ""
}

func (fs *fieldSet) setValue(id form.Field, v string) {
	if i := fs.index(id); i >= 0 {
		fs.fields[i].input.SetValue(v)
	}
}

func (fs *fieldSet) checked(id form.Field) bool {
	if i := fs.index(id); i >= 0 {
		return fs.fields[i].checked
	}
	return false
}

func (fs *fieldSet) setChecked(id form.Field, v bool) {
	if i := fs.index(id); i >= 0 {
		fs.fields[i].checked = v
	}
}

func (fs *fieldSet) choice(id form.Field) string {
	if i := fs.index(id); i >= 0 && len(fs.fields[i].choices) > 0 {
		return fs.fields[i].choices[fs.fields[i].choice]
	}
	return ""
}

func (fs *fieldSet) setHidden(id form.Field, hidden bool) {
	if i := fs.index(id); i >= 0 {
		fs.fields[i].hidden = hidden
	}
}

// reset clears every value and moves focus to the first field.
func (fs *fieldSet) reset() {
	for i := range fs.fields {
		fs.fields[i].input.SetValue("")
		fs.fields[i].checked = false
	}
	fs.focus = 0
	fs.applyFocus()
}

// view renders the inputs with their current errors below each one.
func (fs *fieldSet) view(styles Styles, errs form.Errors, width int) string {
	var b strings.Builder
	for i, f := range fs.fields {
		if f.hidden {
			continue
		}
		focused := i == fs.focus
		label := styles.MutedText.Render(f.label)
		if focused {
			label = styles.AccentText.Bold(true).Render(f.label)
		}

		switch f.kind {
		case fieldCheck:
			box := "[ ]"
			if f.checked {
				box = "[x]"
			}
			b.WriteString(styles.Text.Render(box) + " " + label)
		case fieldChoice:
			b.WriteString(label + "\n")
			parts := make([]string, 0, len(f.choices))
			for j, c := range f.choices {
				if j == f.choice {
					parts = append(parts, styles.Selected.Render(" "+c+" "))
				} else {
					parts = append(parts, styles.MutedText.Render(" "+c+" "))
				}
			}
			b.WriteString(strings.Join(parts, " "))
		default:
			f.input.Width = max(width-4, 10)
			b.WriteString(label + "\n")
			b.WriteString(f.input.View())
		}
		b.WriteString("\n")
		if msg := errs.Get(f.id); msg != "" {
			b.WriteString(styles.DangerText.Render("  " + msg))
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
