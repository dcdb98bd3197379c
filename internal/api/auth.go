package api

import (
	"context"
	"errors"
	"net/http"

	apperrors "github.com/sadopc/taskr/internal/errors"
)

// Login exchanges credentials for a token pair. The call carries no bearer
// header and is never retried.
func (c *Client) Login(ctx context.Context, email, password string) (Tokens, error) {
	r, err := c.newRequest("login", http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, false)
	if err != nil {
		return Tokens{}, err
	}
	var out Tokens
	if err := c.do(ctx, r, &out); err != nil {
		return Tokens{}, err
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		return Tokens{}, apperrors.NewDecodeError("login", errors.New("missing tokens in response"))
	}
	return out, nil
}

// RevokeRefreshToken tells the server the refresh token is no longer used.
// It is an authenticated call, so an expired access token is refreshed once
// first. The response body is ignored.
func (c *Client) RevokeRefreshToken(ctx context.Context, refreshToken string) error {
	r, err := c.newRequest("logout", http.MethodPost, "/auth/logout", refreshRequest{RefreshToken: refreshToken}, true)
	if err != nil {
		return err
	}
	return c.do(ctx, r, nil)
}
