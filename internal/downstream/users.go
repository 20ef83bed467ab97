package downstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/baechuer/paradies-dashboard/internal/domain"
)

// UserClient talks to the /user resource of the user-management API.
type UserClient struct {
	baseURL string
	client  *Client
}

func NewUserClient(baseURL string, client *Client) *UserClient {
	return &UserClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (c *UserClient) List(ctx context.Context, bearer string) ([]domain.UserRecord, error) {
	var out []domain.UserRecord
	if err := c.send(ctx, http.MethodGet, "/user", bearer, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.UserRecord{}
	}
	return out, nil
}

func (c *UserClient) Create(ctx context.Context, bearer string, draft domain.Draft) (*domain.UserRecord, error) {
	var out domain.UserRecord
	if err := c.send(ctx, http.MethodPost, "/user", bearer, draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *UserClient) Update(ctx context.Context, bearer string, id int64, draft domain.Draft) (*domain.UserRecord, error) {
	var out domain.UserRecord
	if err := c.send(ctx, http.MethodPut, fmt.Sprintf("/user/%d", id), bearer, draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *UserClient) Delete(ctx context.Context, bearer string, id int64) error {
	return c.send(ctx, http.MethodDelete, fmt.Sprintf("/user/%d", id), bearer, nil, nil)
}

// Ping reports whether the API answers at all; any non-5xx status counts.
func (c *UserClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return &StatusError{StatusCode: resp.StatusCode, Code: "upstream_error", Message: "unhealthy status"}
	}
	return nil
}

func (c *UserClient) send(ctx context.Context, method, path, bearer string, body any, out any) error {
	return sendJSON(ctx, c.client, method, c.baseURL+path, bearer, body, out)
}

func sendJSON(ctx context.Context, client *Client, method, url, bearer string, body any, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth := AuthorizationHeader(bearer); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := client.Do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return decodeData(resp.Body, out)
}

// decodeData accepts either a bare JSON value or one wrapped as {"data": ...}.
// An empty body leaves out untouched.
func decodeData(r io.Reader, out any) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	if raw[0] == '{' {
		var env struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
			raw = env.Data
		}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode upstream response: %w", err)
	}
	return nil
}

// AuthorizationHeader formats a stored credential as a bearer header value.
func AuthorizationHeader(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		return "Bearer " + strings.TrimSpace(token[7:])
	}
	return "Bearer " + token
}
