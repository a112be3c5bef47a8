package api

import (
	"context"
	"net/http"
	"strings"
)

// Login exchanges credentials for a token and user record.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	const endpoint = "auth.login"
	body, err := c.sendJSON(ctx, call{
		method:   http.MethodPost,
		endpoint: endpoint,
		path:     []string{"auth", "login"},
	}, map[string]string{"email": strings.TrimSpace(email), "password": password})
	if err != nil {
		return AuthResult{}, err
	}
	res, err := decodeOne[AuthResult](body)
	if err != nil {
		return AuthResult{}, decodeError(endpoint, err)
	}
	return res, nil
}

// Register creates an account. Teacher accounts are created unverified and the
// API may omit the token until the email address is confirmed.
func (c *Client) Register(ctx context.Context, reg Registration) (AuthResult, error) {
	const endpoint = "auth.register"
	reg.Email = strings.TrimSpace(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)
	body, err := c.sendJSON(ctx, call{
		method:   http.MethodPost,
		endpoint: endpoint,
		path:     []string{"auth", "register"},
	}, reg)
	if err != nil {
		return AuthResult{}, err
	}
	res, err := decodeOne[AuthResult](body)
	if err != nil {
		return AuthResult{}, decodeError(endpoint, err)
	}
	return res, nil
}

// Me returns the user the current credential belongs to.
func (c *Client) Me(ctx context.Context) (User, error) {
	const endpoint = "auth.me"
	body, err := c.send(ctx, call{
		method:   http.MethodGet,
		endpoint: endpoint,
		path:     []string{"auth", "me"},
		auth:     true,
	})
	if err != nil {
		return User{}, err
	}
	user, err := decodeOne[User](body, "user")
	if err != nil {
		return User{}, decodeError(endpoint, err)
	}
	return user, nil
}

// VerifyEmail confirms an account using the token from the verification mail.
// It returns the server's confirmation message.
func (c *Client) VerifyEmail(ctx context.Context, token string) (string, error) {
	const endpoint = "auth.verify_email"
	body, err := c.send(ctx, call{
		method:   http.MethodGet,
		endpoint: endpoint,
		path:     []string{"auth", "verify-email", segment(strings.TrimSpace(token))},
	})
	if err != nil {
		return "", err
	}
	return messageOf(body), nil
}

// ForgotPassword asks the API to mail a password reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	body, err := c.sendJSON(ctx, call{
		method:   http.MethodPost,
		endpoint: "auth.forgot_password",
		path:     []string{"auth", "forgotpassword"},
	}, map[string]string{"email": strings.TrimSpace(email)})
	if err != nil {
		return "", err
	}
	return messageOf(body), nil
}

func messageOf(body []byte) string {
	res, err := decodeOne[AuthResult](body)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(res.Message)
}
