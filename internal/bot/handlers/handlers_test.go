package handlers

import (
	"errors"
	"testing"

	"github.com/schooldesk/admin-bot/internal/api"
)

func TestApiErrText(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"server_message", &api.RequestError{Status: 403, Message: "нет прав"}, "нет прав"},
		{"server_no_message", &api.RequestError{Status: 500}, "внутренняя ошибка"},
		{"network", &api.NetworkError{Err: errors.New("dial tcp: refused")}, "сервер недоступен"},
		{"unknown", errors.New("что-то ещё"), "внутренняя ошибка"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := apiErrText(c.err); got != c.want {
				t.Fatalf("apiErrText = %q, ожидали %q", got, c.want)
			}
		})
	}
}

func TestGradeFormValidation(t *testing.T) {
	cases := []struct {
		name string
		form gradeForm
		ok   bool
	}{
		{"valid", gradeForm{StudentID: "st1", Score: 80}, true},
		{"zero_is_valid", gradeForm{StudentID: "st1", Score: 0}, true},
		{"max_is_valid", gradeForm{StudentID: "st1", Score: 100}, true},
		{"no_student", gradeForm{Score: 80}, false},
		{"negative", gradeForm{StudentID: "st1", Score: -1}, false},
		{"over_hundred", gradeForm{StudentID: "st1", Score: 120}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := validate.Struct(c.form)
			if c.ok && err != nil {
				t.Fatalf("не ожидали ошибку: %v", err)
			}
			if !c.ok && err == nil {
				t.Fatal("ожидали ошибку валидации")
			}
		})
	}
}

func TestSubjectByIndex(t *testing.T) {
	chatID := int64(777001)
	getChat(chatID).subjOrder = []string{"История", "Математика"}
	defer resetChat(chatID)

	if name, ok := subjectByIndex(chatID, "1"); !ok || name != "Математика" {
		t.Fatalf("name=%q ok=%v", name, ok)
	}
	for _, bad := range []string{"-1", "2", "abc", ""} {
		if _, ok := subjectByIndex(chatID, bad); ok {
			t.Fatalf("индекс %q не должен резолвиться", bad)
		}
	}
}
