package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gittutor/tutor/internal/form"
	"github.com/gittutor/tutor/internal/upload"
)

const fieldFree form.Field = "free"

// uploadModal edits an upload.Form. The form itself outlives the modal: the
// course page owns it so a result arriving later still finds it.
type uploadModal struct {
	form    *upload.Form
	course  string
	fields  *fieldSet
	spinner spinner.Model
}

func newUploadModal(f *upload.Form, courseTitle string) *uploadModal {
	d := f.Draft()
	fields := newFieldSet(
		textField(upload.FieldTitle, "Title", "Branching basics", 200),
		textField(upload.FieldDescription, "Description", "What this lesson covers", 2000),
		textField(upload.FieldDuration, "Duration (MM:SS)", "10:30", 8),
		textField(upload.FieldOrder, "Order", "0", 6),
		textField(upload.FieldVideo, "Video file", "/path/to/lesson.mp4", 1024),
		textField(upload.FieldThumbnail, "Thumbnail (optional)", "/path/to/poster.png", 1024),
		checkField(fieldFree, "Free preview"),
	)
	fields.setValue(upload.FieldTitle, d.Title)
	fields.setValue(upload.FieldDescription, d.Description)
	fields.setValue(upload.FieldDuration, d.Duration)
	fields.setValue(upload.FieldOrder, d.Order)
	if d.Video != nil {
		fields.setValue(upload.FieldVideo, d.Video.Path)
	}
	if d.Thumbnail != nil {
		fields.setValue(upload.FieldThumbnail, d.Thumbnail.Path)
	}
	fields.setChecked(fieldFree, d.IsFree)

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	return &uploadModal{form: f, course: courseTitle, fields: fields, spinner: spin}
}

// init focuses the first field.
func (u *uploadModal) init() tea.Cmd {
	return u.fields.applyFocus()
}

func (u *uploadModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !u.form.Pending() {
			return u, nil, false
		}
		var cmd tea.Cmd
		u.spinner, cmd = u.spinner.Update(msg)
		return u, cmd, false

	case tea.KeyMsg:
		if u.form.Pending() {
			return u, nil, false
		}
		switch {
		case msg.Type == tea.KeyEsc:
			return u, emit(uploadCancelMsg{}), true
		case key.Matches(msg, keys.Tab), msg.Type == tea.KeyDown:
			u.leave()
			return u, u.fields.next(), false
		case key.Matches(msg, keys.ShiftTab), msg.Type == tea.KeyUp:
			u.leave()
			return u, u.fields.prev(), false
		case key.Matches(msg, keys.Submit):
			u.sync()
			return u, emit(uploadSubmitMsg{}), false
		case key.Matches(msg, keys.FreeToggle):
			u.fields.setChecked(fieldFree, !u.fields.checked(fieldFree))
			u.form.Draft().SetFree(u.fields.checked(fieldFree))
			return u, nil, false
		}

		id, cmd := u.fields.update(msg)
		if id != "" {
			u.apply(id)
		}
		return u, cmd, false
	}
	return u, nil, false
}

// apply copies an edited field into the draft. File paths are inspected when
// the field loses focus, not on every keystroke.
func (u *uploadModal) apply(id form.Field) {
	d := u.form.Draft()
	v := u.fields.value(id)
	switch id {
	case upload.FieldTitle:
		d.SetTitle(v)
	case upload.FieldDescription:
		d.SetDescription(v)
	case upload.FieldDuration:
		d.SetDuration(v)
	case upload.FieldOrder:
		d.SetOrder(v)
	case upload.FieldVideo, upload.FieldThumbnail:
		d.Errors.Clear(id)
	case fieldFree:
		d.SetFree(u.fields.checked(fieldFree))
	}
}

// leave validates the field losing focus.
func (u *uploadModal) leave() {
	d := u.form.Draft()
	switch id := u.fields.focusedID(); id {
	case upload.FieldVideo:
		d.AttachVideoPath(u.fields.value(id))
		d.ValidateField(id)
	case upload.FieldThumbnail:
		d.AttachThumbnailPath(u.fields.value(id))
	case upload.FieldTitle, upload.FieldDescription, upload.FieldDuration, upload.FieldOrder:
		d.ValidateField(id)
	}
}

// sync attaches the typed file paths before submission.
func (u *uploadModal) sync() {
	d := u.form.Draft()
	if p := u.fields.value(upload.FieldVideo); d.Video == nil || d.Video.Path != strings.TrimSpace(p) {
		d.AttachVideoPath(p)
	}
	if p := u.fields.value(upload.FieldThumbnail); d.Thumbnail == nil || d.Thumbnail.Path != strings.TrimSpace(p) {
		d.AttachThumbnailPath(p)
	}
}

func (u *uploadModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	inner := min(LayoutModalWidth, max(width-4, 20)) - 6
	d := u.form.Draft()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Upload video"))
	if u.course != "" {
		b.WriteString(styles.MutedText.Render(" to " + u.course))
	}
	b.WriteString("\n\n")
	b.WriteString(u.fields.view(styles, d.Errors, inner))
	b.WriteString("\n")

	if d.Video != nil {
		b.WriteString(styles.FaintText.Render(d.Video.ContentType + ", " + humanSize(d.Video.Size)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case u.form.Pending():
		b.WriteString(styles.AccentText.Render(u.spinner.View()) + " " + styles.MutedText.Render("Uploading..."))
	case u.form.Error() != "":
		b.WriteString(wrap(styles.DangerText.Render(u.form.Error()), inner))
		b.WriteString("\n")
		fallthrough
	default:
		b.WriteString(styles.WarningText.Render("ctrl+s") + styles.MutedText.Render(" Upload   "))
		b.WriteString(styles.WarningText.Render("ctrl+t") + styles.MutedText.Render(" Free   "))
		b.WriteString(styles.WarningText.Render("esc") + styles.MutedText.Render(" Cancel"))
	}

	return placeModal(theme, width, height, b.String(), LayoutModalWidth)
}

func humanSize(n int64) string {
	const mb = 1 << 20
	if n >= mb {
		return strconv.FormatFloat(float64(n)/mb, 'f', 1, 64) + " MB"
	}
	return strconv.FormatInt(n/1024, 10) + " KB"
}
