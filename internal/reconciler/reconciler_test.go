package reconciler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/schooldesk/admin-bot/internal/api"
	"github.com/schooldesk/admin-bot/internal/models"
	"go.uber.org/zap"
)

// fakeSchool — школьный API в памяти: ровно те ответы, на которые
// рассчитывает reconciler, плюс счётчики вызовов.
type fakeSchool struct {
	mu sync.Mutex

	student     models.User
	courses     []models.Course
	subjGrades  map[string][]models.Grade // ключ — предмет
	courseCalls map[string]int            // GET /grades/course/{id}

	enrollCalls   int
	unenrollCalls int
	deleteCalls   int
	deletedIDs    []string
	postGrades    int
	postInfr      int

	srv *httptest.Server
}

func newFakeSchool(student models.User, courses []models.Course) *fakeSchool {
	f := &fakeSchool{
		student:     student,
		courses:     courses,
		subjGrades:  make(map[string][]models.Grade),
		courseCalls: make(map[string]int),
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.handle))
	return f
}

func (f *fakeSchool) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/users/"):
		writeJSON(w, f.student)
	case path == "/infractions" && r.Method == http.MethodGet:
		writeJSON(w, map[string]any{"infractions": []models.Infraction{}})
	case path == "/attendance" && r.Method == http.MethodGet:
		writeJSON(w, map[string]any{"attendance": []models.Absence{}})
	case path == "/courses" && r.Method == http.MethodGet:
		writeJSON(w, map[string]any{"courses": f.courses})
	case path == "/courses" && r.Method == http.MethodPost:
		var nc models.NewCourse
		_ = json.NewDecoder(r.Body).Decode(&nc)
		created := models.Course{ID: "created-1", Name: nc.Name, CourseCode: nc.CourseCode}
		writeJSON(w, map[string]any{"course": created})
	case strings.HasSuffix(path, "/enroll"):
		f.enrollCalls++
		w.WriteHeader(http.StatusOK)
	case strings.Contains(path, "/students/"):
		f.unenrollCalls++
		w.WriteHeader(http.StatusOK)
	case strings.HasPrefix(path, "/grades/student/"):
		writeJSON(w, map[string]any{"grades": []models.Grade{}})
	case strings.HasPrefix(path, "/grades/course/"):
		id := strings.TrimPrefix(path, "/grades/course/")
		f.courseCalls[id]++
		writeJSON(w, map[string]any{"grades": []models.Grade{{ID: "g-" + id}}})
	case path == "/grades" && r.Method == http.MethodGet:
		subject := r.URL.Query().Get("subject")
		writeJSON(w, map[string]any{"grades": f.subjGrades[subject]})
	case path == "/grades" && r.Method == http.MethodPost:
		f.postGrades++
		writeJSON(w, map[string]any{"grade": models.Grade{ID: "new"}})
	case strings.HasPrefix(path, "/grades/") && r.Method == http.MethodDelete:
		f.deleteCalls++
		f.deletedIDs = append(f.deletedIDs, strings.TrimPrefix(path, "/grades/"))
		w.WriteHeader(http.StatusOK)
	case path == "/infractions" && r.Method == http.MethodPost:
		f.postInfr++
		writeJSON(w, map[string]any{"infraction": models.Infraction{ID: "i1"}})
	default:
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func testStudent() models.User {
	return models.User{
		ID:        "st1",
		FirstName: "Иван",
		LastName:  "Иванов",
		Username:  "ivanov",
		Role:      models.Student,
		Subjects:  map[string][]string{"Математика": {"5", "4"}},
	}
}

func testCourses() []models.Course {
	return []models.Course{
		{ID: "c1", Name: "Математика", CourseCode: "MATH", Students: []string{"st1"}},
		{ID: "c2", Name: "История", CourseCode: "HIST", Students: []string{"other"}},
	}
}

func newTestCard(t *testing.T, f *fakeSchool) *Reconciler {
	t.Helper()
	client := api.New(f.srv.URL, zap.NewNop().Sugar())
	r := New(context.Background(), client, "tkn", testStudent(), zap.NewNop().Sugar())
	r.Load()
	if r.State() != StateReady {
		t.Fatal("карточка не загрузилась")
	}
	return r
}

func TestLoadPartitionsCourses(t *testing.T) {
	f := newFakeSchool(testStudent(), testCourses())
	defer f.srv.Close()
	r := newTestCard(t, f)
	defer r.Close()

	enrolled, available := r.Enrolled(), r.Available()
	if len(enrolled) != 1 || enrolled[0].ID != "c1" {
		t.Fatalf("записан: ожидали c1, получили %v", enrolled)
	}
	if len(available) != 1 || available[0].ID != "c2" {
		t.Fatalf("доступен: ожидали c2, получили %v", available)
	}
}

func TestEnrollMovesCourseOnce(t *testing.T) {
	f := newFakeSchool(testStudent(), testCourses())
	defer f.srv.Close()
	r := newTestCard(t, f)
	defer r.Close()

	out := r.Enroll("c2")
	if !out.Applied {
		t.Fatalf("запись отклонена: %s", out.Reason)
	}
	if len(r.Available()) != 0 || len(r.Enrolled()) != 2 {
		t.Fatal("курс не перенёсся из доступных в записанные")
	}

	// Повторная запись: курса нет среди доступных — отказ без запроса.
	out = r.Enroll("c2")
	if out.Applied {
		t.Fatal("повторная запись не должна применяться")
	}
	f.mu.Lock()
	calls := f.enrollCalls
	f.mu.Unlock()
	if calls != 1 {
		t.Fatalf("ожидали 1 запрос записи, было %d", calls)
	}
	for _, c := range r.Enrolled() {
		if c.ID != "c2" {
			continue
		}
		seen := 0
		for _, id := range c.Students {
			if id == "st1" {
				seen++
			}
		}
		if seen != 1 {
			t.Fatalf("ученик в students курса %d раз", seen)
		}
	}
}

func TestUnenrollMovesCourseBack(t *testing.T) {
	f := newFakeSchool(testStudent(), testCourses())
	defer f.srv.Close()
	r := newTestCard(t, f)
	defer r.Close()

	out := r.Unenroll("c1")
	if !out.Applied {
		t.Fatalf("отписка отклонена: %s", out.Reason)
	}
	if len(r.Enrolled()) != 0 {
		t.Fatal("курс остался в записанных")
	}
	found := false
	for _, c := range r.Available() {
		if c.ID == "c1" {
			found = true
			if c.HasStudent("st1") {
				t.Fatal("ученик остался в students после отписки")
			}
		}
	}
	if !found {
		t.Fatal("курс не вернулся в доступные")
	}

	if out := r.Unenroll("c1"); out.Applied {
		t.Fatal("отписка от незаписанного курса не должна применяться")
	}
	f.mu.Lock()
	calls := f.unenrollCalls
	f.mu.Unlock()
	if calls != 1 {
		t.Fatalf("ожидали 1 запрос отписки, было %d", calls)
	}
}

func TestRemoveLatestGradeEmptyListNoDelete(t *testing.T) {
	f := newFakeSchool(testStudent(), testCourses())
	defer f.srv.Close()
	r := newTestCard(t, f)
	defer r.Close()

	out := r.RemoveLatestGrade("Физика")
	if out.Applied {
		t.Fatal("снятие при пустом списке не должно применяться")
	}
	f.mu.Lock()
	dels := f.deleteCalls
	f.mu.Unlock()
	if dels != 0 {
		t.Fatalf("DELETE не должен отправляться, было %d", dels)
	}
}

func TestRemoveLatestGradeDeletesServerLatest(t *testing.T) {
	f := newFakeSchool(testStudent(), testCourses())
	defer f.srv.Close()
	f.mu.Lock()
	f.subjGrades["Математика"] = []models.Grade{
		{ID: "g1", Subject: "Математика"},
		{ID: "g2", Subject: "Математика"},
	}
	f.mu.Unlock()
	r := newTestCard(t, f)
	defer r.Close()

	out := r.RemoveLatestGrade("Математика")
	if !out.Applied {
		t.Fatalf("снятие отклонено: %s", out.Reason)
	}
	f.mu.Lock()
	deleted := append([]string(nil), f.deletedIDs...)
	f.mu.Unlock()
	if len(deleted) != 1 || deleted[0] != "g2" {
		t.Fatalf("удаляться должна последняя в серверном порядке (g2), удалили %v", deleted)
	}
	if got := r.Subjects()["Математика"]; len(got) != 1 {
		t.Fatalf("локальный список должен укоротиться до 1, стало %v", got)
	}
}

func TestAddGradeRefreshesOnlyItsCourse(t *testing.T) {
	f := newFakeSchool(testStudent(), testCourses())
	defer f.srv.Close()
	r := newTestCard(t, f)
	defer r.Close()

	out := r.AddGradeForCourse(models.NewGrade{StudentID: "st1", CourseID: "c1", Score: 90})
	if !out.Applied {
		t.Fatalf("оценка отклонена: %s", out.Reason)
	}

	f.mu.Lock()
	c1, c2 := f.courseCalls["c1"], f.courseCalls["c2"]
	f.mu.Unlock()
	if c1 != 1 {
		t.Fatalf("кэш курса c1 должен перечитаться ровно раз, было %d", c1)
	}
	if c2 != 0 {
		t.Fatalf("кэш курса c2 трогаться не должен, было %d", c2)
	}
	if _, ok := r.CourseGrades("c1"); !ok {
		t.Fatal("кэш c1 после перечитывания должен быть тёплым")
	}
	if _, ok := r.CourseGrades("c2"); ok {
		t.Fatal("кэш c2 не должен появиться")
	}
}

func TestStaleCourseRefreshDiscarded(t *testing.T) {
	f := newFakeSchool(testStudent(), testCourses())
	defer f.srv.Close()
	r := newTestCard(t, f)
	defer r.Close()

	// Фоновый рефреш начался до мутации и принёс старый список.
	stale := testCourses()
	v := r.PartitionVersion()

	if out := r.Enroll("c2"); !out.Applied {
		t.Fatalf("запись отклонена: %s", out.Reason)
	}
	if r.ApplyCourseList(stale, v) {
		t.Fatal("устаревший список не должен применяться")
	}
	if len(r.Enrolled()) != 2 {
		t.Fatal("локальная мутация должна пережить устаревший рефреш")
	}

	// Рефреш, начатый после мутации, применяется.
	if !r.ApplyCourseList(stale, r.PartitionVersion()) {
		t.Fatal("актуальный список должен примениться")
	}
}

func TestCreateAndEnrollInsertsCreated(t *testing.T) {
	f := newFakeSchool(testStudent(), testCourses())
	defer f.srv.Close()
	r := newTestCard(t, f)
	defer r.Close()

	out := r.CreateAndEnroll(models.NewCourse{Name: "Химия", CourseCode: "CHEM"})
	if !out.Applied {
		t.Fatalf("создание отклонено: %s", out.Reason)
	}
	var created *models.Course
	for _, c := range r.Enrolled() {
		if c.ID == "created-1" {
			created = &c
			break
		}
	}
	if created == nil {
		t.Fatal("созданный курс должен попасть в записанные")
	}
	if !created.HasStudent("st1") {
		t.Fatal("ученик должен числиться в созданном курсе")
	}
}

func TestLocalValidationSkipsNetwork(t *testing.T) {
	f := newFakeSchool(testStudent(), testCourses())
	defer f.srv.Close()
	r := newTestCard(t, f)
	defer r.Close()

	t.Run("empty_subject", func(t *testing.T) {
		if out := r.AddSubject("  "); out.Applied {
			t.Fatal("пустой предмет не должен применяться")
		}
	})
	t.Run("non_numeric_grade", func(t *testing.T) {
		if out := r.AddGrade("Математика", "пять"); out.Applied {
			t.Fatal("нечисловая оценка не должна применяться")
		}
	})
	t.Run("empty_infraction", func(t *testing.T) {
		if out := r.AddInfraction("", "", "2026-01-01"); out.Applied {
			t.Fatal("проступок без типа не должен применяться")
		}
	})

	f.mu.Lock()
	posts := f.postGrades + f.postInfr
	f.mu.Unlock()
	if posts != 0 {
		t.Fatalf("локальные отказы не должны ходить в сеть, было %d запросов", posts)
	}
}

func TestCloseCancelsInflight(t *testing.T) {
	f := newFakeSchool(testStudent(), testCourses())
	defer f.srv.Close()
	r := newTestCard(t, f)

	r.Close()
	if err := r.RefreshCourses(); err == nil {
		t.Fatal("после Close рефреш должен падать по отменённому контексту")
	}
	if r.ApplyCourseList(testCourses(), r.PartitionVersion()) {
		t.Fatal("после Close список применяться не должен")
	}
}
