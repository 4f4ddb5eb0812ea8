package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/schooldesk/admin-bot/internal/models"
)

func (c *Client) ListAbsences(ctx context.Context, token, studentID string) ([]models.Absence, error) {
	q := url.Values{"studentId": {studentID}}
	var out struct {
		Attendance []models.Absence `json:"attendance"`
	}
	if err := c.do(ctx, "list_absences", http.MethodGet, "/attendance", token, q, nil, &out); err != nil {
		return nil, err
	}
	return out.Attendance, nil
}

func (c *Client) AddAbsence(ctx context.Context, token string, a models.Absence) (*models.Absence, error) {
	var out struct {
		Attendance models.Absence `json:"attendance"`
	}
	if err := c.do(ctx, "add_absence", http.MethodPost, "/attendance", token, nil, a, &out); err != nil {
		return nil, err
	}
	return &out.Attendance, nil
}

func (c *Client) DeleteAbsence(ctx context.Context, token, id string) error {
	return c.do(ctx, "delete_absence", http.MethodDelete, "/attendance/"+id, token, nil, nil, nil)
}
