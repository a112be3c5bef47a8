// Package catalog holds the course browser's state machine.
//
// Three tabs exist: every course, the viewer's enrollments, and the courses
// the viewer teaches. The last two require a session and the teaching tab a
// teacher or admin role.
//
// Enrollment is a prompt followed by one request:
//
//	Open(course)      enrolled → Navigate, anonymous → RequireLogin, else Prompt
//	Confirm()         closes the prompt, marks the course in flight
//	Settle(id, err)   success → enrolled set grows, Navigate
//	                  failure → set unchanged, EnrollError set
//	                  not in flight (e.g. after Reset) → Dropped
//
// A course already in flight cannot be confirmed again until it settles.
package catalog
