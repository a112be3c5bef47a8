// Package api is the HTTP client for the course platform's REST API.
//
// # Overview
//
// Client wraps net/http with the conventions the API expects: every path is
// resolved relative to a configured base URL (default
// http://localhost:5000/api/v2), JSON is sent and received, and a bearer
// token is attached whenever a Credentials source reports one. Calls that
// require a session fail with ErrNoCredential before anything is sent.
//
// # Endpoints
//
//	auth         Login, Register, Me, VerifyEmail, ForgotPassword
//	courses      ListCourses, GetCourse
//	videos       ListVideos, GetVideo, UploadVideo, UpdateVideo, DeleteVideo
//	enrollments  Enroll, MyEnrollments
//	comments     ListComments, CreateComment
//
// # Payload shapes
//
// The API is not strict about envelopes. Lists may be bare arrays or wrapped
// under a named key or "data"; entities may use "id" or "_id"; references to
// users and courses may be bare ids or populated objects. The decoders in
// types.go absorb these variations so callers only see one shape per entity.
//
// # Errors
//
// Every failure is returned as *Error carrying a Kind:
//
//   - KindValidation: 400, 409, 422
//   - KindAuth: 401, 403, or a missing credential
//   - KindNotFound: 404
//   - KindTransient: network failures, timeouts, 5xx, undecodable bodies
//
// UserMessage returns the server's "message" verbatim when present and a
// caller-supplied fallback otherwise.
//
// # Observability
//
// Each request carries an X-Request-ID, is logged through log/slog, and when
// Metrics are attached is counted per endpoint label and status.
package api
