// Package state shares the course catalog between background loads and the UI.
//
// # Update Semantics
//
// Update replaces the course list on success. On error the previous list is
// kept and the error recorded, so the UI always has the most recent good
// data:
//
//	store.Update(courses, nil)  → Courses = courses, LastError = nil
//	store.Update(nil, err)      → Courses unchanged, LastError = err
//
// ConsecutiveFailures counts failed loads; IsOffline reports two or more in
// a row. Observe lets other requests feed the same counter: calls that never
// reached the server count as failures, any server response resets it.
//
// Snapshot returns a copy; callers may modify it freely. The zero Store is
// ready to use.
package state
