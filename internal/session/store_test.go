//go:build testutil
// +build testutil

package session

import (
	"context"
	"testing"

	"github.com/schooldesk/admin-bot/internal/models"
	"github.com/schooldesk/admin-bot/internal/testutil/testdb"
	"go.uber.org/zap"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	h, err := testdb.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()

	store := NewStore(h.DB, zap.NewNop().Sugar())

	t.Run("absent_is_nil_nil", func(t *testing.T) {
		sess, err := store.Get(ctx, 42)
		if err != nil || sess != nil {
			t.Fatalf("sess=%v err=%v", sess, err)
		}
	})

	user := models.User{ID: "u1", FirstName: "Анна", LastName: "Петрова", Role: models.Admin}
	if err := store.Set(ctx, 42, "tok-1", user); err != nil {
		t.Fatal(err)
	}

	t.Run("get_returns_saved", func(t *testing.T) {
		sess, err := store.Get(ctx, 42)
		if err != nil {
			t.Fatal(err)
		}
		if sess == nil || sess.Token != "tok-1" || sess.User.ID != "u1" || sess.User.Role != models.Admin {
			t.Fatalf("sess = %+v", sess)
		}
	})

	t.Run("set_overwrites", func(t *testing.T) {
		if err := store.Set(ctx, 42, "tok-2", user); err != nil {
			t.Fatal(err)
		}
		sess, _ := store.Get(ctx, 42)
		if sess == nil || sess.Token != "tok-2" {
			t.Fatalf("sess = %+v", sess)
		}
	})

	t.Run("clear_removes", func(t *testing.T) {
		if err := store.Clear(ctx, 42); err != nil {
			t.Fatal(err)
		}
		sess, err := store.Get(ctx, 42)
		if err != nil || sess != nil {
			t.Fatalf("после Clear: sess=%v err=%v", sess, err)
		}
	})
}
