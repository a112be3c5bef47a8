package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Back       key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding

	// Route switching
	GoHome    key.Binding
	GoCatalog key.Binding
	GoProfile key.Binding
	GoAccount key.Binding
	GoLogs    key.Binding

	// Navigation
	Up      key.Binding
	Down    key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Left    key.Binding
	Right   key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Toggle  key.Binding
	Reload  key.Binding

	// Catalog
	TabBrowse   key.Binding
	TabEnrolled key.Binding
	TabTeaching key.Binding

	// Course
	Comment    key.Binding
	Like       key.Binding
	Upload     key.Binding
	ToggleFree key.Binding
	Delete     key.Binding

	// Auth
	SignUp     key.Binding
	Forgot     key.Binding
	Verify     key.Binding
	Submit     key.Binding
	SignOut    key.Binding
	CycleRole  key.Binding
	FreeToggle key.Binding

	// Logs
	ToggleFollow key.Binding
	Search       key.Binding
	NextMatch    key.Binding
	PrevMatch    key.Binding
	CycleLevel   key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace"),
			key.WithHelp("esc", "Back"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next field/pane"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous field/pane"),
		),

		GoHome: key.NewBinding(
			key.WithKeys("H"),
			key.WithHelp("H", "Home"),
		),
		GoCatalog: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "Courses"),
		),
		GoProfile: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "Profile"),
		),
		GoAccount: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "Sign in"),
		),
		GoLogs: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Client log"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/left", "Previous tab"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/right", "Next tab"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter", "y"),
			key.WithHelp("enter", "Open/confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "n"),
			key.WithHelp("esc", "Cancel"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Toggle"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),

		TabBrowse: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "All courses"),
		),
		TabEnrolled: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "My enrollments"),
		),
		TabTeaching: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "My teaching"),
		),

		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Write a comment"),
		),
		Like: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "Like comment"),
		),
		Upload: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Upload video"),
		),
		ToggleFree: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Toggle free/premium"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Delete lesson"),
		),

		SignUp: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("ctrl+n", "Sign in/up"),
		),
		Forgot: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "Forgot password"),
		),
		Verify: key.NewBinding(
			key.WithKeys("ctrl+v"),
			key.WithHelp("ctrl+v", "Verify email"),
		),
		Submit: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Submit"),
		),
		SignOut: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Sign out"),
		),
		CycleRole: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "Cycle role"),
		),
		FreeToggle: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "Toggle free lesson"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys("F"),
			key.WithHelp("F", "Toggle follow mode"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search log"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Next match"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "Previous match"),
		),
		CycleLevel: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "Cycle minimum level"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.GoHome, k.GoCatalog, k.GoProfile, k.GoAccount, k.GoLogs, k.Back},
		{k.Up, k.Down, k.Top, k.Bottom, k.Confirm},
		{k.TabBrowse, k.TabEnrolled, k.TabTeaching, k.Reload},
		{k.Comment, k.Like, k.Upload, k.ToggleFree, k.Delete},
		{k.Submit, k.SignUp, k.Forgot, k.Verify, k.SignOut},
		{k.ToggleFollow, k.Search, k.NextMatch, k.PrevMatch, k.CycleLevel},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
