// Package enroll keeps the viewer's enrolled-course set.
//
// Two sources exist: the API's enrollments/my listing and a local TOML cache
// written through on every successful enroll. Mine merges them with a fixed
// rule: the API is read first; ids only the cache knows are kept (an enroll
// whose listing has not caught up yet); when the API cannot be reached the
// cache is used on its own. Reconciled.OnlyLocal and OnlyRemote expose any
// disagreement, and a disagreement rewrites the cache with the union.
package enroll
