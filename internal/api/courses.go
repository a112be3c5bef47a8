package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

// ListCourses returns every published course.
func (c *Client) ListCourses(ctx context.Context) ([]Course, error) {
	const endpoint = "courses.list"
	body, err := c.send(ctx, call{
		method:   http.MethodGet,
		endpoint: endpoint,
		path:     []string{"courses"},
	})
	if err != nil {
		return nil, err
	}
	courses, err := decodeList[Course](body, "courses")
	if err != nil {
		return nil, decodeError(endpoint, err)
	}
	return courses, nil
}

// GetCourse fetches a single course.
func (c *Client) GetCourse(ctx context.Context, id ID) (Course, error) {
	const endpoint = "courses.get"
	body, err := c.send(ctx, call{
		method:   http.MethodGet,
		endpoint: endpoint,
		path:     []string{"courses", segment(id.String())},
	})
	if err != nil {
		return Course{}, err
	}
	course, err := decodeOne[Course](body, "course")
	if err != nil {
		return Course{}, decodeError(endpoint, err)
	}
	if course.ID == "" {
		course.ID = id
	}
	return course, nil
}

// ListVideos returns the videos of a course in the order the API sends them.
func (c *Client) ListVideos(ctx context.Context, courseID ID) ([]Video, error) {
	const endpoint = "videos.list"
	body, err := c.send(ctx, call{
		method:   http.MethodGet,
		endpoint: endpoint,
		path:     []string{"videos", "course", segment(courseID.String())},
	})
	if err != nil {
		return nil, err
	}
	videos, err := decodeList[Video](body, "videos")
	if err != nil {
		return nil, decodeError(endpoint, err)
	}
	return videos, nil
}

// GetVideo fetches a single video.
func (c *Client) GetVideo(ctx context.Context, id ID) (Video, error) {
	const endpoint = "videos.get"
	body, err := c.send(ctx, call{
		method:   http.MethodGet,
		endpoint: endpoint,
		path:     []string{"videos", segment(id.String())},
	})
	if err != nil {
		return Video{}, err
	}
	video, err := decodeOne[Video](body, "video")
	if err != nil {
		return Video{}, decodeError(endpoint, err)
	}
	return video, nil
}

// FilePart is a binary attachment of a multipart upload.
type FilePart struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// VideoUpload is the multipart payload of POST /videos/upload.
type VideoUpload struct {
	CourseID    ID
	Title       string
	Description string
	Duration    int // seconds
	IsFree      bool
	Order       int
	Video       FilePart
	Thumbnail   *FilePart
}

// UploadVideo streams a new video to the API. The body is produced while the
// request is in flight, so large files are never buffered in memory.
func (c *Client) UploadVideo(ctx context.Context, up VideoUpload) (Video, error) {
	const endpoint = "videos.upload"
	if up.Video.Body == nil {
		return Video{}, &Error{Kind: KindValidation, Endpoint: endpoint, Message: "Video file is required"}
	}
	if c.token() == "" {
		return Video{}, ErrNoCredential
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUpload(mw, up))
	}()

	body, err := c.send(ctx, call{
		method:      http.MethodPost,
		endpoint:    endpoint,
		path:        []string{"videos", "upload"},
		auth:        true,
		body:        pr,
		contentType: mw.FormDataContentType(),
		upload:      true,
	})
	_ = pr.Close()
	if err != nil {
		return Video{}, err
	}
	video, err := decodeOne[Video](body, "video")
	if err != nil {
		return Video{}, decodeError(endpoint, err)
	}
	return video, nil
}

func writeUpload(mw *multipart.Writer, up VideoUpload) error {
	fields := []struct{ name, value string }{
		{"title", strings.TrimSpace(up.Title)},
		{"description", strings.TrimSpace(up.Description)},
		{"course", up.CourseID.String()},
		{"duration", strconv.Itoa(up.Duration)},
		{"isFree", strconv.FormatBool(up.IsFree)},
		{"order", strconv.Itoa(up.Order)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("write field %s: %w", f.name, err)
		}
	}
	if err := writeFilePart(mw, "video", up.Video); err != nil {
		return err
	}
	if up.Thumbnail != nil && up.Thumbnail.Body != nil {
		if err := writeFilePart(mw, "thumbnail", *up.Thumbnail); err != nil {
			return err
		}
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFilePart(mw *multipart.Writer, field string, part FilePart) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(part.Filename)))
	contentType := part.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	w, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := io.Copy(w, part.Body); err != nil {
		return fmt.Errorf("copy %s: %w", field, err)
	}
	return nil
}

// UpdateVideo changes the mutable fields of a video.
func (c *Client) UpdateVideo(ctx context.Context, id ID, update VideoUpdate) (Video, error) {
	const endpoint = "videos.update"
	body, err := c.sendJSON(ctx, call{
		method:   http.MethodPut,
		endpoint: endpoint,
		path:     []string{"videos", segment(id.String())},
		auth:     true,
	}, update)
	if err != nil {
		return Video{}, err
	}
	video, err := decodeOne[Video](body, "video")
	if err != nil {
		return Video{}, decodeError(endpoint, err)
	}
	return video, nil
}

// DeleteVideo removes a video from its course.
func (c *Client) DeleteVideo(ctx context.Context, id ID) error {
	_, err := c.send(ctx, call{
		method:   http.MethodDelete,
		endpoint: "videos.delete",
		path:     []string{"videos", segment(id.String())},
		auth:     true,
	})
	return err
}

// segment escapes a single path element.
func segment(s string) string {
	return url.PathEscape(s)
}
