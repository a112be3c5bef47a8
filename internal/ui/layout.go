package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which panes stack vertically.
	LayoutCompactWidth = 100

	// LayoutCurriculumWidth is the width of the curriculum pane in split mode.
	LayoutCurriculumWidth = 38

	// LayoutModalWidth is the width of form modals.
	LayoutModalWidth = 64
)

// Log display limits.
const (
	// LogBufferLimit is the maximum number of log lines read from the file.
	LogBufferLimit = 2000
)

// Timing constants.
const (
	// DefaultUIInterval is the default UI refresh interval.
	DefaultUIInterval = time.Second

	// LogRefreshInterval is the minimum time between log file reads.
	LogRefreshInterval = 2 * time.Second

	// NoticeTTL is how long a header notice stays visible.
	NoticeTTL = 6 * time.Second
)
