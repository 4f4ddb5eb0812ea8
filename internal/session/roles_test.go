package session

import (
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"github.com/schooldesk/admin-bot/internal/models"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestDecodeRole(t *testing.T) {
	t.Run("admin", func(t *testing.T) {
		role, err := DecodeRole(signedToken(t, jwt.MapClaims{"role": "admin", "sub": "u1"}))
		if err != nil {
			t.Fatal(err)
		}
		if role != models.Admin {
			t.Fatalf("role = %q", role)
		}
	})

	t.Run("missing_role_claim", func(t *testing.T) {
		_, err := DecodeRole(signedToken(t, jwt.MapClaims{"sub": "u1"}))
		if !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("ожидали ErrMalformedToken, получили %v", err)
		}
	})

	t.Run("garbage_token", func(t *testing.T) {
		for _, bad := range []string{"", "abc", "a.b", "не-токен-вовсе"} {
			if _, err := DecodeRole(bad); !errors.Is(err, ErrMalformedToken) {
				t.Fatalf("%q: ожидали ErrMalformedToken, получили %v", bad, err)
			}
		}
	})
}

func TestCanViewRoster(t *testing.T) {
	cases := []struct {
		role models.Role
		want bool
	}{
		{models.Admin, true},
		{models.Teacher, true},
		{models.Student, false},
		{"", false},
		{"parent", false},
	}
	for _, c := range cases {
		if got := CanViewRoster(c.role); got != c.want {
			t.Fatalf("CanViewRoster(%q) = %v, ожидали %v", c.role, got, c.want)
		}
	}
}
