// Package session owns the signed-in identity.
//
// Gate is created once at startup and handed to everything that gates on
// role. It is mutated only by Login, Register, Logout and Restore, and it is
// the api.Credentials the client reads the bearer token from.
//
// The session is persisted as TOML (token, user snapshot, save time) with
// mode 0600. Restore discards it without a network call when the token is a
// JWT whose exp has passed, and otherwise refreshes the user from auth/me;
// any failure there removes the file and leaves the gate anonymous.
//
// The sign-in, sign-up and password reset forms live here too, since their
// rules (email domain per role, admin password length, admin key) are about
// accounts rather than presentation.
package session
