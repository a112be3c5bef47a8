package api

import (
	"context"
	"net/http"
)

// Enroll enrolls the current user in a course.
func (c *Client) Enroll(ctx context.Context, courseID ID) (Enrollment, error) {
	const endpoint = "enrollments.create"
	body, err := c.sendJSON(ctx, call{
		method:   http.MethodPost,
		endpoint: endpoint,
		path:     []string{"enrollments"},
		auth:     true,
	}, map[string]string{"courseId": courseID.String()})
	if err != nil {
		return Enrollment{}, err
	}
	enrollment, err := decodeOne[Enrollment](body, "enrollment")
	if err != nil {
		return Enrollment{}, decodeError(endpoint, err)
	}
	if enrollment.Course.ID == "" {
		enrollment.Course.ID = courseID
	}
	return enrollment, nil
}

// MyEnrollments lists the current user's enrollments.
func (c *Client) MyEnrollments(ctx context.Context) ([]Enrollment, error) {
	const endpoint = "enrollments.mine"
	body, err := c.send(ctx, call{
		method:   http.MethodGet,
		endpoint: endpoint,
		path:     []string{"enrollments", "my"},
		auth:     true,
	})
	if err != nil {
		return nil, err
	}
	enrollments, err := decodeList[Enrollment](body, "enrollments")
	if err != nil {
		return nil, decodeError(endpoint, err)
	}
	return enrollments, nil
}
