// Package course is the per-course content view: curriculum, player state and
// discussion threads.
//
// Fetch loads the course record and its videos concurrently with an errgroup;
// the first failure cancels the other call and the page never renders half a
// course. Videos are sorted by their order field with API order breaking
// ties.
//
// A Viewer starts in Loading and moves to Ready, NotFound or Failed once.
// Nothing is selected on load. Each video has its own comment thread; when no
// video is selected a course-level thread is shown. Threads are local state
// unless comment sync is enabled, in which case the UI seeds them from the
// API and mirrors new posts.
package course
