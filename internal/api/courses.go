package api

import (
	"context"
	"net/http"

	"github.com/schooldesk/admin-bot/internal/models"
)

func (c *Client) ListCourses(ctx context.Context, token string) ([]models.Course, error) {
	var out struct {
		Courses []models.Course `json:"courses"`
	}
	if err := c.do(ctx, "list_courses", http.MethodGet, "/courses", token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Courses, nil
}

// CreateCourse — ответ сервера считается авторитетным: созданный курс
// вставляется в локальное состояние без повторной загрузки списка.
func (c *Client) CreateCourse(ctx context.Context, token string, nc models.NewCourse) (*models.Course, error) {
	var out struct {
		Course models.Course `json:"course"`
	}
	if err := c.do(ctx, "create_course", http.MethodPost, "/courses", token, nil, nc, &out); err != nil {
		return nil, err
	}
	return &out.Course, nil
}

func (c *Client) Enroll(ctx context.Context, token, courseID, studentID string) error {
	body := map[string]string{"studentId": studentID}
	return c.do(ctx, "enroll", http.MethodPost, "/courses/"+courseID+"/enroll", token, nil, body, nil)
}

func (c *Client) Unenroll(ctx context.Context, token, courseID, studentID string) error {
	return c.do(ctx, "unenroll", http.MethodDelete, "/courses/"+courseID+"/students/"+studentID, token, nil, nil, nil)
}
