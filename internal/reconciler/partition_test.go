package reconciler

import (
	"testing"

	"github.com/schooldesk/admin-bot/internal/models"
)

func TestPartition(t *testing.T) {
	courses := []models.Course{
		{ID: "a", Students: []string{"st1", "st2"}},
		{ID: "b", Students: []string{"st2"}},
		{ID: "c"},
	}

	t.Run("strict_split", func(t *testing.T) {
		enrolled, available := Partition(courses, "st1")
		if len(enrolled) != 1 || enrolled[0].ID != "a" {
			t.Fatalf("записан: %v", enrolled)
		}
		if len(available) != 2 {
			t.Fatalf("доступны: %v", available)
		}
		if len(enrolled)+len(available) != len(courses) {
			t.Fatal("каждый курс должен попасть ровно в один список")
		}
	})

	t.Run("unknown_student_gets_nothing", func(t *testing.T) {
		enrolled, available := Partition(courses, "nobody")
		if len(enrolled) != 0 || len(available) != len(courses) {
			t.Fatalf("записан=%v доступны=%v", enrolled, available)
		}
	})

	t.Run("empty_list", func(t *testing.T) {
		enrolled, available := Partition(nil, "st1")
		if len(enrolled) != 0 || len(available) != 0 {
			t.Fatal("пустой список курсов должен давать пустое разбиение")
		}
	})
}
