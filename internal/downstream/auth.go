package downstream

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var ErrNoToken = errors.New("login response carried no token")

// AuthClient performs the credential exchange that produces a session token.
type AuthClient struct {
	baseURL string
	client  *Client
}

func NewAuthClient(baseURL string, client *Client) *AuthClient {
	return &AuthClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
}

// Login posts the credentials to /login and returns the issued token.
func (c *AuthClient) Login(ctx context.Context, username, password string) (string, error) {
	var out loginResponse
	err := sendJSON(ctx, c.client, http.MethodPost, c.baseURL+"/login", "",
		loginRequest{Username: username, Password: password}, &out)
	if err != nil {
		return "", err
	}

	token := out.Token
	if token == "" {
		token = out.AccessToken
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}
