package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/schooldesk/admin-bot/internal/models"
)

func (c *Client) ListInfractions(ctx context.Context, token, studentID string) ([]models.Infraction, error) {
	q := url.Values{"studentId": {studentID}}
	var out struct {
		Infractions []models.Infraction `json:"infractions"`
	}
	if err := c.do(ctx, "list_infractions", http.MethodGet, "/infractions", token, q, nil, &out); err != nil {
		return nil, err
	}
	return out.Infractions, nil
}

func (c *Client) AddInfraction(ctx context.Context, token string, inf models.Infraction) (*models.Infraction, error) {
	var out struct {
		Infraction models.Infraction `json:"infraction"`
	}
	if err := c.do(ctx, "add_infraction", http.MethodPost, "/infractions", token, nil, inf, &out); err != nil {
		return nil, err
	}
	return &out.Infraction, nil
}

func (c *Client) DeleteInfraction(ctx context.Context, token, id string) error {
	return c.do(ctx, "delete_infraction", http.MethodDelete, "/infractions/"+id, token, nil, nil, nil)
}
