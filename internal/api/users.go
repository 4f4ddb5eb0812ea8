package api

import (
	"context"
	"net/http"

	"github.com/schooldesk/admin-bot/internal/models"
)

type LoginResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Login — единственный вызов без токена.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body := map[string]string{"username": username, "password": password}
	var out LoginResult
	if err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListUsers(ctx context.Context, token string) ([]models.User, error) {
	var out struct {
		Users []models.User `json:"users"`
	}
	if err := c.do(ctx, "list_users", http.MethodGet, "/users", token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

type NewStudent struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// CreateUser регистрирует ученика; сервер возвращает сгенерированные
// username и initialPassword — их нужно показать один раз.
func (c *Client) CreateUser(ctx context.Context, token string, ns NewStudent) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, "create_user", http.MethodPost, "/users", token, nil, ns, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

func (c *Client) GetUser(ctx context.Context, token, id string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, "get_user", http.MethodGet, "/users/"+id, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
