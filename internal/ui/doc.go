// Package ui provides the terminal interface of the Git-Tutor client.
//
// # Architecture
//
// The UI is a single Bubble Tea program. Model is the root state; each
// screen keeps its own small state struct (homePage, authPage, catalogPage,
// coursePage, profilePage, logPage) behind a pointer so handlers can mutate
// it from the value-receiver Update.
//
// Navigation is a stack of routes mirroring the web client's paths:
//
//	/            home menu
//	/login       sign in, sign up, forgot password, verify email
//	/courses     catalog with All / My enrollments / My teaching tabs
//	/course/:id  curriculum, lesson pane and discussion
//	/enrollment  confirmation after a successful enrollment
//	/profile     user details and reconciled enrollments
//	/about, /contact, /terms
//	/logs        this client's own log file
//
// # Requests
//
// Every API call runs as a tea.Cmd and reports back with a message carrying
// the navigation generation it was issued under. Entering a route bumps the
// generation, so a result for a screen the viewer already left is dropped
// instead of being applied to whatever is on screen now. Enrollment outcomes
// are the exception: the enrolled set is always updated, only the navigation
// is skipped.
//
// # Modals
//
// Dialogs implement Modal. They never touch Model directly; confirming one
// emits an intent message (enrollConfirmMsg, uploadSubmitMsg,
// deleteConfirmMsg) that Model handles like any other result.
//
// # Key Bindings
//
//   - H/C/P/A/L: Home, Courses, Profile, Account, Client log
//   - 1/2/3: Catalog tabs
//   - enter: Open, play, confirm
//   - c, +: Comment, like
//   - u, f, x: Upload, toggle free, delete (teachers and admins)
//   - T: Cycle theme
//   - ?: Help
//   - esc: Back
//   - q or ctrl+c: Quit
package ui
