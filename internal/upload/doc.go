// Package upload models the instructor's new-video submission.
//
// A Draft holds exactly what was typed plus a per-field error map. Rules:
//
//	title        required, 5..200 characters
//	description  required, 10..2000 characters
//	duration     required, MM:SS with seconds below 60, sent as seconds
//	order        integer >= 0, default 0
//	video        required, sniffed video/* type, at most 100 MiB
//	thumbnail    optional, sniffed image/* type
//
// File types come from content detection (gabriel-vasile/mimetype), not from
// the file extension.
//
// Form wraps a draft with the single in-flight guard of one upload modal:
// Begin refuses while a submission is pending, Finish resets the draft on
// success and preserves it on failure.
package upload
