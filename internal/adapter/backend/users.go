package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/polkiloo/fosgateway/internal/domain/model"
)

// UsersPath lists user accounts.
const (
	UsersPath      = "/users"
	loginPath      = "/users/login"
	userHealthPath = "/users/health"
)

// LoginResult is a successful answer of the user service.
type LoginResult struct {
	User  model.User
	Token string
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	Token string    `json:"token"`
	User  *wireUser `json:"user"`
}

// loginResponse accepts both the {success, data, message} envelope and the
// bare {token, user} body.
type loginResponse struct {
	Success *bool      `json:"success"`
	Message string     `json:"message"`
	Error   string     `json:"error"`
	Data    *loginData `json:"data"`
	Token   string     `json:"token"`
	User    *wireUser  `json:"user"`
}

// UserClient talks to the user service.
type UserClient struct {
	*Client
}

// Login submits credentials. Client errors are definitive: 403 is
// ErrAccountLocked, 400 and 422 are ErrMalformed, any other 4xx except 408
// and 429 is ErrRejected. Transport failures, 5xx, 408, 429 and undecodable
// 2xx bodies are an UnreachableError or ServiceError.
func (c *UserClient) Login(ctx context.Context, creds model.Credentials) (*LoginResult, error) {
	status, body, err := c.do(ctx, http.MethodPost, loginPath, nil, loginRequest{Email: creds.Email, Password: creds.Password})
	if err != nil {
		return nil, err
	}

	var resp loginResponse
	decodeErr := json.Unmarshal(body, &resp)

	switch {
	case status == http.StatusUnauthorized:
		return nil, ErrRejected
	case status == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrAccountLocked, firstString(resp.Message, resp.Error, snippet(body)))
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: %s", ErrMalformed, firstString(resp.Message, resp.Error, snippet(body)))
	case definitiveClientError(status):
		return nil, ErrRejected
	case status < 200 || status >= 300:
		return nil, &ServiceError{Service: c.service, Endpoint: loginPath, StatusCode: status, Message: snippet(body)}
	case decodeErr != nil:
		return nil, c.malformed(loginPath, decodeErr)
	case resp.Success != nil && !*resp.Success:
		return nil, ErrRejected
	}

	token, user := resp.Token, resp.User
	if resp.Data != nil {
		token, user = resp.Data.Token, resp.Data.User
	}
	if user == nil {
		return nil, c.malformed(loginPath, fmt.Errorf("login response without user"))
	}
	u, err := user.toModel()
	if err != nil {
		return nil, c.malformed(loginPath, err)
	}
	return &LoginResult{User: u, Token: token}, nil
}

// definitiveClientError reports whether a 4xx answer is the service's final
// word rather than a transient condition worth degrading on.
func definitiveClientError(status int) bool {
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return false
	}
	return status >= 400 && status < 500
}
