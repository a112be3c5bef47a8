package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Role is the account type assigned by the API at registration.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the roles the API issues.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// ID accepts either a JSON string or number. The API is backed by a document
// store and hands out hex strings, but fixtures and older builds use integers.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// String returns the raw identifier.
func (id ID) String() string { return string(id) }

// Ref is a reference to another entity. The API sends either a bare id or a
// populated object, so both forms decode into the same shape.
type Ref struct {
	ID   ID
	Name string
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if data[0] != '{' {
		var id ID
		if err := id.UnmarshalJSON(data); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	var raw struct {
		ID    ID     `json:"id"`
		Mongo ID     `json:"_id"`
		Name  string `json:"name"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.ID = firstID(raw.ID, raw.Mongo)
	r.Name = firstNonEmpty(raw.Name, raw.Title)
	return nil
}

// MarshalJSON writes the reference as its id.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(r.ID))
}

// User is the API's account record.
type User struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	IsVerified bool   `json:"isVerified"`
	Avatar     string `json:"avatar,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler, accepting `_id` for the id.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	var raw struct {
		alias
		Mongo ID `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User(raw.alias)
	u.ID = firstID(u.ID, raw.Mongo)
	u.Role = Role(strings.ToLower(strings.TrimSpace(string(u.Role))))
	return nil
}

// Course is read-only to the client; authoring happens elsewhere.
type Course struct {
	ID          ID      `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Code        *string `json:"code,omitempty"`
	Instructor  Ref     `json:"instructor"`
	Thumbnail   *string `json:"thumbnail,omitempty"`
	Level       string  `json:"level,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler. It accepts `_id`, a `teacher`
// alias for the instructor and an `image` alias for the thumbnail.
func (c *Course) UnmarshalJSON(data []byte) error {
	type alias Course
	var raw struct {
		alias
		Mongo   ID      `json:"_id"`
		Teacher Ref     `json:"teacher"`
		Image   *string `json:"image"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Course(raw.alias)
	c.ID = firstID(c.ID, raw.Mongo)
	if c.Instructor.ID == "" && c.Instructor.Name == "" {
		c.Instructor = raw.Teacher
	}
	if c.Thumbnail == nil {
		c.Thumbnail = raw.Image
	}
	c.Code = nilIfBlank(c.Code)
	c.Thumbnail = nilIfBlank(c.Thumbnail)
	return nil
}

// InstructorName returns a display name for the owning instructor.
func (c Course) InstructorName() string {
	if name := strings.TrimSpace(c.Instructor.Name); name != "" {
		return name
	}
	return "Unknown instructor"
}

// Video is one lesson of a course.
type Video struct {
	ID          ID      `json:"id"`
	Course      Ref     `json:"course"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Duration    int     `json:"duration"`
	IsFree      bool    `json:"isFree"`
	Order       int     `json:"order"`
	URL         string  `json:"url"`
	MimeType    string  `json:"mimeType,omitempty"`
	Thumbnail   *string `json:"thumbnail,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler. Duration may arrive as
// `durationInSeconds`, the media URL as `videoUrl` and the poster as
// `thumbnailUrl`.
func (v *Video) UnmarshalJSON(data []byte) error {
	type alias Video
	var raw struct {
		alias
		Mongo             ID       `json:"_id"`
		DurationInSeconds *float64 `json:"durationInSeconds"`
		RawDuration       any      `json:"duration"`
		VideoURL          string   `json:"videoUrl"`
		ThumbnailURL      *string  `json:"thumbnailUrl"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Video(raw.alias)
	v.ID = firstID(v.ID, raw.Mongo)
	v.Duration = 0
	if raw.DurationInSeconds != nil {
		v.Duration = int(*raw.DurationInSeconds)
	} else {
		v.Duration = durationSeconds(raw.RawDuration)
	}
	if v.URL == "" {
		v.URL = raw.VideoURL
	}
	if v.Thumbnail == nil {
		v.Thumbnail = raw.ThumbnailURL
	}
	v.Thumbnail = nilIfBlank(v.Thumbnail)
	return nil
}

// Comment is one entry of a discussion thread.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"user"`
	Avatar    string    `json:"avatar,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Likes     int       `json:"likes"`
	Replies   []Reply   `json:"replies"`
}

// Reply has the shape of a comment but cannot nest further.
type Reply struct {
	ID        string    `json:"id"`
	Author    string    `json:"user"`
	Avatar    string    `json:"avatar,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	Likes     int       `json:"likes"`
}

// UnmarshalJSON implements json.Unmarshaler. The author may be a populated
// user object or a plain name.
func (c *Comment) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        ID              `json:"id"`
		Mongo     ID              `json:"_id"`
		User      json.RawMessage `json:"user"`
		Avatar    string          `json:"avatar"`
		Content   string          `json:"content"`
		CreatedAt time.Time       `json:"createdAt"`
		Likes     json.RawMessage `json:"likes"`
		Replies   []Comment       `json:"replies"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.ID = firstID(raw.ID, raw.Mongo).String()
	c.Author = authorName(raw.User)
	c.Avatar = raw.Avatar
	c.Content = raw.Content
	c.CreatedAt = raw.CreatedAt
	c.Likes = likeCount(raw.Likes)
	c.Replies = make([]Reply, 0, len(raw.Replies))
	for _, r := range raw.Replies {
		c.Replies = append(c.Replies, Reply{
			ID:        r.ID,
			Author:    r.Author,
			Avatar:    r.Avatar,
			Content:   r.Content,
			CreatedAt: r.CreatedAt,
			Likes:     r.Likes,
		})
	}
	return nil
}

// Enrollment links the current user to a course.
type Enrollment struct {
	ID         ID        `json:"id"`
	Course     Ref       `json:"course"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Enrollment) UnmarshalJSON(data []byte) error {
	type alias Enrollment
	var raw struct {
		alias
		Mongo     ID        `json:"_id"`
		CourseID  ID        `json:"courseId"`
		CreatedAt time.Time `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = Enrollment(raw.alias)
	e.ID = firstID(e.ID, raw.Mongo)
	if e.Course.ID == "" {
		e.Course.ID = raw.CourseID
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = raw.CreatedAt
	}
	return nil
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	Token   string `json:"token"`
	User    *User  `json:"user"`
	Message string `json:"message"`
}

// Registration is the profile submitted to create an account.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	AdminKey string `json:"adminKey,omitempty"`
}

// VideoUpdate carries the mutable fields of an existing video. Nil fields are
// left untouched by the API.
type VideoUpdate struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	IsFree      *bool   `json:"isFree,omitempty"`
	Order       *int    `json:"order,omitempty"`
}

func firstID(ids ...ID) ID {
	for _, id := range ids {
		if id != "" {
			return id
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func nilIfBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

func durationSeconds(v any) int {
	switch d := v.(type) {
	case float64:
		return int(d)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(d))
		if err == nil {
			return n
		}
	}
	return 0
}

func authorName(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		_ = json.Unmarshal(raw, &s)
		return s
	}
	var ref Ref
	if err := ref.UnmarshalJSON(raw); err != nil {
		return ""
	}
	return ref.Name
}

// likeCount accepts a number or the list of user ids who liked the comment.
func likeCount(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	if raw[0] == '[' {
		var ids []json.RawMessage
		if err := json.Unmarshal(raw, &ids); err == nil {
			return len(ids)
		}
		return 0
	}
	var n int
	_ = json.Unmarshal(raw, &n)
	return n
}
