package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestBearerHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"users": []any{}, "token": "t", "user": map[string]any{}})
	}))
	defer srv.Close()
	c := New(srv.URL, zap.NewNop().Sugar())

	t.Run("with_token", func(t *testing.T) {
		if _, err := c.ListUsers(context.Background(), "tkn"); err != nil {
			t.Fatal(err)
		}
		if gotAuth != "Bearer tkn" {
			t.Fatalf("Authorization = %q", gotAuth)
		}
	})

	t.Run("login_without_token", func(t *testing.T) {
		if _, err := c.Login(context.Background(), "u", "p"); err != nil {
			t.Fatal(err)
		}
		if gotAuth != "" {
			t.Fatalf("логин не должен слать Authorization, получили %q", gotAuth)
		}
	})
}

func TestRequestErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"неверный пароль"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()
	c := New(srv.URL, zap.NewNop().Sugar())

	_, err := c.Login(context.Background(), "u", "bad")
	var re *RequestError
	if !errors.As(err, &re) {
		t.Fatalf("ожидали RequestError, получили %T", err)
	}
	if re.Status != http.StatusUnauthorized || re.Message != "неверный пароль" {
		t.Fatalf("status=%d message=%q", re.Status, re.Message)
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatal("IsStatus(401) должен быть true")
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // сервер уже мёртв

	c := New(srv.URL, zap.NewNop().Sugar())
	_, err := c.ListCourses(context.Background(), "tkn")
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("ожидали NetworkError, получили %T: %v", err, err)
	}
}

func TestLatestGradeNilWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"grade":null}`))
	}))
	defer srv.Close()
	c := New(srv.URL, zap.NewNop().Sugar())

	g, err := c.LatestGrade(context.Background(), "tkn", "st1", "c1")
	if err != nil {
		t.Fatal(err)
	}
	if g != nil {
		t.Fatalf("ожидали nil, получили %+v", g)
	}
}

func TestEnvelopeDecoding(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/courses":
			_, _ = w.Write([]byte(`{"courses":[{"_id":"c1","name":"Математика","courseCode":"MATH"}]}`))
		case "/attendance":
			_, _ = w.Write([]byte(`{"attendance":[{"_id":"a1","date":"2026-02-10","status":"excused"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := New(srv.URL, zap.NewNop().Sugar())

	courses, err := c.ListCourses(context.Background(), "tkn")
	if err != nil {
		t.Fatal(err)
	}
	if len(courses) != 1 || courses[0].ID != "c1" || courses[0].CourseCode != "MATH" {
		t.Fatalf("курсы разобрались неверно: %+v", courses)
	}

	abs, err := c.ListAbsences(context.Background(), "tkn", "st1")
	if err != nil {
		t.Fatal(err)
	}
	if len(abs) != 1 || abs[0].ID != "a1" {
		t.Fatalf("пропуски разобрались неверно: %+v", abs)
	}
}
