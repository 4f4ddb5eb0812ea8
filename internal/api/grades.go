package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/schooldesk/admin-bot/internal/models"
)

type gradesEnvelope struct {
	Grades []models.Grade `json:"grades"`
}

func (c *Client) StudentGrades(ctx context.Context, token, studentID string) ([]models.Grade, error) {
	var out gradesEnvelope
	if err := c.do(ctx, "student_grades", http.MethodGet, "/grades/student/"+studentID, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Grades, nil
}

func (c *Client) CourseGrades(ctx context.Context, token, courseID string) ([]models.Grade, error) {
	var out gradesEnvelope
	if err := c.do(ctx, "course_grades", http.MethodGet, "/grades/course/"+courseID, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Grades, nil
}

func (c *Client) CourseStats(ctx context.Context, token, courseID string) (*models.CourseStats, error) {
	var out models.CourseStats
	if err := c.do(ctx, "course_stats", http.MethodGet, "/grades/stats/course/"+courseID, token, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GradesBySubject — список оценок пары (ученик, предмет) в серверном
// порядке; последняя в списке и есть "последняя выставленная".
func (c *Client) GradesBySubject(ctx context.Context, token, studentID, subject string) ([]models.Grade, error) {
	q := url.Values{"studentId": {studentID}, "subject": {subject}}
	var out gradesEnvelope
	if err := c.do(ctx, "grades_by_subject", http.MethodGet, "/grades", token, q, nil, &out); err != nil {
		return nil, err
	}
	return out.Grades, nil
}

// LatestGrade — последняя оценка пары (ученик, курс); nil без ошибки,
// если оценок ещё нет.
func (c *Client) LatestGrade(ctx context.Context, token, studentID, courseID string) (*models.Grade, error) {
	q := url.Values{"studentId": {studentID}, "courseId": {courseID}}
	var out struct {
		Grade *models.Grade `json:"grade"`
	}
	if err := c.do(ctx, "latest_grade", http.MethodGet, "/grades/latest", token, q, nil, &out); err != nil {
		return nil, err
	}
	return out.Grade, nil
}

// AddSubject заводит предмет без оценки: сервер принимает POST /grades
// с subject и без score.
func (c *Client) AddSubject(ctx context.Context, token, studentID, subject string) error {
	body := map[string]any{"studentId": studentID, "subject": subject, "grade": nil}
	return c.do(ctx, "add_subject", http.MethodPost, "/grades", token, nil, body, nil)
}

func (c *Client) AddGrade(ctx context.Context, token string, ng models.NewGrade) (*models.Grade, error) {
	var out struct {
		Grade models.Grade `json:"grade"`
	}
	if err := c.do(ctx, "add_grade", http.MethodPost, "/grades", token, nil, ng, &out); err != nil {
		return nil, err
	}
	return &out.Grade, nil
}

func (c *Client) UpdateGrade(ctx context.Context, token, gradeID string, score float64, comment string) (*models.Grade, error) {
	body := map[string]any{"score": score, "comment": comment}
	var out struct {
		Grade models.Grade `json:"grade"`
	}
	if err := c.do(ctx, "update_grade", http.MethodPut, "/grades/"+gradeID, token, nil, body, &out); err != nil {
		return nil, err
	}
	return &out.Grade, nil
}

func (c *Client) DeleteGrade(ctx context.Context, token, gradeID string) error {
	return c.do(ctx, "delete_grade", http.MethodDelete, "/grades/"+gradeID, token, nil, nil, nil)
}
