// Package rest implements service.Service against a taskpro server
// (see internal/api) over HTTP.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"taskpro/internal/service"
)

// APITimeout is the timeout for API calls.
const APITimeout = 10 * time.Second

// Client implements service.Service over HTTP. It holds the token of the
// signed-in user and refreshes it through the token endpoint on expiry.
type Client struct {
	baseURL string
	http    *http.Client
	oauth   *oauth2.Config

	// ctx carries the base HTTP client for token refreshes.
	ctx context.Context

	mu  sync.Mutex
	src oauth2.TokenSource
}

var _ service.Service = (*Client)(nil)

// New creates a client for the server at baseURL.
func New(baseURL, clientID string) (*Client, error) {
	return NewWithHTTPClient(baseURL, clientID, &http.Client{})
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL, clientID string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q", baseURL)
	}
	base := strings.TrimRight(u.String(), "/")
	return &Client{
		baseURL: base,
		http:    httpClient,
		oauth: &oauth2.Config{
			ClientID: clientID,
			Endpoint: oauth2.Endpoint{
				TokenURL:  base + "/auth/token",
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		ctx: context.WithValue(context.Background(), oauth2.HTTPClient, httpClient),
	}, nil
}

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type affectedResponse struct {
	Affected int64 `json:"affected"`
}

// SignUp registers an account and adopts its first session.
func (c *Client) SignUp(ctx context.Context, email, password string, meta service.Metadata) (service.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var tr tokenResponse
	err := c.send(ctx, c.http, http.MethodPost, "/auth/signup",
		signUpRequest{Email: email, Password: password, FullName: meta.FullName}, &tr)
	if err != nil {
		return service.Identity{}, wrapError(err)
	}
	tok := &oauth2.Token{
		AccessToken:  tr.AccessToken,
		TokenType:    tr.TokenType,
		RefreshToken: tr.RefreshToken,
	}
	if tr.ExpiresIn > 0 {
		tok.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	c.adopt(tok)
	return service.Identity{UserID: tr.UserID, Email: tr.Email, Token: tok}, nil
}

// SignIn runs the password grant.
func (c *Client) SignIn(ctx context.Context, email, password string) (service.Identity, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	tok, err := c.oauth.PasswordCredentialsToken(ctx, email, password)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.ErrorCode == "invalid_grant" {
			return service.Identity{}, service.ErrInvalidCredentials
		}
		return service.Identity{}, wrapError(err)
	}
	c.adopt(tok)

	ident := service.Identity{Token: tok}
	ident.UserID, _ = tok.Extra("user_id").(string)
	ident.Email, _ = tok.Extra("email").(string)
	if ident.UserID == "" {
		return service.Identity{}, fmt.Errorf("token response carries no user_id")
	}
	return ident, nil
}

// SignOut revokes tok on the server and forgets it locally.
func (c *Client) SignOut(ctx context.Context, tok *oauth2.Token) error {
	defer c.adopt(nil)
	if tok == nil || tok.AccessToken == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	hc := oauth2.NewClient(c.ctx, oauth2.StaticTokenSource(tok))
	err := c.send(ctx, hc, http.MethodPost, "/auth/logout", nil, nil)
	if err != nil {
		err = wrapError(err)
		if errors.Is(err, service.ErrNotAuthenticated) {
			return nil
		}
		return err
	}
	return nil
}

// CurrentUser adopts tok and asks the server who it belongs to. The
// returned identity carries the token in use afterwards, which differs
// from tok when it was refreshed.
func (c *Client) CurrentUser(ctx context.Context, tok *oauth2.Token) (service.Identity, error) {
	if tok == nil || tok.AccessToken == "" {
		return service.Identity{}, service.ErrNotAuthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	src := c.adopt(tok)
	var u userResponse
	if err := c.authed(ctx, http.MethodGet, "/auth/user", nil, &u); err != nil {
		if errors.Is(err, service.ErrNotAuthenticated) {
			c.adopt(nil)
		}
		return service.Identity{}, err
	}
	current, err := src.Token()
	if err != nil {
		return service.Identity{}, wrapError(err)
	}
	return service.Identity{UserID: u.ID, Email: u.Email, Token: current}, nil
}

// ListTasks returns the owner's tasks, newest first.
func (c *Client) ListTasks(ctx context.Context, ownerID string) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var out []service.Task
	err := c.authed(ctx, http.MethodGet, "/tasks?user_id="+url.QueryEscape(ownerID), nil, &out)
	return out, err
}

// InsertTask creates a task and returns the stored row.
func (c *Client) InsertTask(ctx context.Context, row service.TaskRow) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var t service.Task
	err := c.authed(ctx, http.MethodPost, "/tasks", row, &t)
	return t, err
}

// UpdateTask rewrites the task matching id and row.UserID.
func (c *Client) UpdateTask(ctx context.Context, id string, row service.TaskRow) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var resp affectedResponse
	err := c.authed(ctx, http.MethodPatch, "/tasks/"+url.PathEscape(id), row, &resp)
	return resp.Affected, err
}

// DeleteTask removes the task matching id and ownerID.
func (c *Client) DeleteTask(ctx context.Context, id, ownerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var resp affectedResponse
	path := "/tasks/" + url.PathEscape(id) + "?user_id=" + url.QueryEscape(ownerID)
	err := c.authed(ctx, http.MethodDelete, path, nil, &resp)
	return resp.Affected, err
}

// GetProfile fetches the user's profile row.
func (c *Client) GetProfile(ctx context.Context, userID string) (service.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var p service.Profile
	err := c.authed(ctx, http.MethodGet, "/profiles/"+url.PathEscape(userID), nil, &p)
	return p, err
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// adopt replaces the token source; nil forgets the session.
func (c *Client) adopt(tok *oauth2.Token) oauth2.TokenSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tok == nil {
		c.src = nil
		return nil
	}
	c.src = oauth2.ReuseTokenSource(tok, c.oauth.TokenSource(c.ctx, tok))
	return c.src
}

func (c *Client) authed(ctx context.Context, method, path string, body, out any) error {
	c.mu.Lock()
	src := c.src
	c.mu.Unlock()
	if src == nil {
		return service.ErrNotAuthenticated
	}
	return wrapError(c.send(ctx, oauth2.NewClient(c.ctx, src), method, path, body, out))
}

func (c *Client) send(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer googleapi.CloseBody(resp)
	if err := googleapi.CheckResponse(resp); err != nil {
		return err
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// wrapError maps transport and HTTP failures onto service errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.ErrorCode == "invalid_grant" {
		return service.ErrNotAuthenticated
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized:
			return service.ErrNotAuthenticated
		case http.StatusNotFound:
			return service.ErrNotFound
		case http.StatusConflict:
			return service.ErrEmailTaken
		case http.StatusForbidden:
			return fmt.Errorf("forbidden: %s", gerr.Message)
		}
		if gerr.Message != "" {
			return fmt.Errorf("server error %d: %s", gerr.Code, gerr.Message)
		}
	}
	return err
}
