// Package form holds field-scoped validation shared by the tutor's forms.
//
// Errors is the map from field to message that every form exposes. Validator
// wraps go-playground/validator so rules live in struct tags and failures are
// translated into per-field messages; an error on one field never blocks or
// clears another.
package form
