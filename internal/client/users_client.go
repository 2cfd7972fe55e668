package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"userlist/internal/domain/entities"
)

const UsersPath = "/api/users"

// ErrFetch is the single failure kind of FetchUsers: transport errors,
// unexpected statuses and undecodable bodies all wrap it.
var ErrFetch = errors.New("fetch users failed")

type UsersClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewUsersClient returns a client for the directory served at baseURL. A nil
// httpClient means http.DefaultClient; no timeout is added on top of it.
func NewUsersClient(baseURL string, httpClient *http.Client) *UsersClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &UsersClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// FetchUsers issues one GET for the user directory. The body must be exactly
// one JSON array; the returned slice is never nil on success.
func (c *UsersClient) FetchUsers(ctx context.Context) ([]entities.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+UsersPath, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: unexpected status %s", ErrFetch, resp.Status)
	}

	dec := json.NewDecoder(resp.Body)
	var users []entities.User
	if err := dec.Decode(&users); err != nil {
		return nil, fmt.Errorf("%w: decode body: %w", ErrFetch, err)
	}
	if users == nil {
		return nil, fmt.Errorf("%w: body is not a JSON array", ErrFetch)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON array", ErrFetch)
	}
	for i, u := range users {
		if err := u.Validate(); err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrFetch, i, err)
		}
	}
	return users, nil
}
