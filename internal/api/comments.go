package api

import (
	"context"
	"net/http"
	"strings"
)

// ListComments returns the discussion thread of a video.
func (c *Client) ListComments(ctx context.Context, videoID ID) ([]Comment, error) {
	const endpoint = "comments.list"
	body, err := c.send(ctx, call{
		method:   http.MethodGet,
		endpoint: endpoint,
		path:     []string{"comments", "video", segment(videoID.String())},
	})
	if err != nil {
		return nil, err
	}
	comments, err := decodeList[Comment](body, "comments")
	if err != nil {
		return nil, decodeError(endpoint, err)
	}
	return comments, nil
}

// CreateComment posts a comment on a video.
func (c *Client) CreateComment(ctx context.Context, videoID ID, content string) (Comment, error) {
	const endpoint = "comments.create"
	body, err := c.sendJSON(ctx, call{
		method:   http.MethodPost,
		endpoint: endpoint,
		path:     []string{"comments"},
		auth:     true,
	}, map[string]string{"video": videoID.String(), "content": strings.TrimSpace(content)})
	if err != nil {
		return Comment{}, err
	}
	comment, err := decodeOne[Comment](body, "comment")
	if err != nil {
		return Comment{}, decodeError(endpoint, err)
	}
	return comment, nil
}
