package reconciler

import (
	"context"
	"sync"

	"github.com/schooldesk/admin-bot/internal/api"
	"github.com/schooldesk/admin-bot/internal/models"
	"go.uber.org/zap"
)

type State int

const (
	StateLoading State = iota
	StateReady
	StateMutating
	StateError
)

// Reconciler держит авторитетную для бота проекцию одной карточки
// ученика: предметы с оценками, проступки, пропуски и разбиение курсов.
// Сервер — источник истины; локальный патч применяется строго после
// его подтверждения. Живёт, пока открыта карточка; Close обрывает
// все незавершённые запросы, их поздние результаты отбрасываются.
type Reconciler struct {
	api   *api.Client
	token string
	log   *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	state       State
	student     models.User
	subjects    map[string][]string
	summary     []models.Grade
	infractions []models.Infraction
	absences    []models.Absence
	enrolled    []models.Course
	available   []models.Course
	// Версия разбиения: каждая локальная мутация её двигает, фоновое
	// обновление списка курсов применяется только на той же версии.
	partVersion uint64
	// Кэш оценок по курсу. Не источник истины: после любой мутации
	// оценок курса инвалидируется и перечитывается с сервера.
	courseGrades map[string][]models.Grade
	loadErrs     map[string]error
}

func New(parent context.Context, client *api.Client, token string, student models.User, log *zap.SugaredLogger) *Reconciler {
	ctx, cancel := context.WithCancel(parent)
	subjects := make(map[string][]string)
	for name, grades := range student.Subjects {
		subjects[name] = append([]string(nil), grades...)
	}
	return &Reconciler{
		api:          client,
		token:        token,
		log:          log,
		ctx:          ctx,
		cancel:       cancel,
		state:        StateLoading,
		student:      student,
		subjects:     subjects,
		courseGrades: make(map[string][]models.Grade),
		loadErrs:     make(map[string]error),
	}
}

// Close — карточка закрыта: всё, что ещё летит по сети, отменяется.
func (r *Reconciler) Close() { r.cancel() }

// Load заполняет проекцию: пять независимых запросов параллельно.
// Падение одного не мешает остальным — тот срез остаётся прежним,
// ошибка запоминается для показа пользователю.
func (r *Reconciler) Load() {
	type fetch struct {
		name string
		fn   func(ctx context.Context) error
	}
	fetches := []fetch{
		{"student", r.fetchStudent},
		{"infractions", r.fetchInfractions},
		{"absences", r.fetchAbsences},
		{"courses", r.fetchCourses},
		{"grades", r.fetchGradeSummary},
	}

	var wg sync.WaitGroup
	for _, f := range fetches {
		wg.Add(1)
		go func(f fetch) {
			defer wg.Done()
			err := f.fn(r.ctx)
			r.mu.Lock()
			defer r.mu.Unlock()
			if err != nil {
				r.log.Warnw("часть карточки не загрузилась", "slice", f.name, "student", r.student.ID, "err", err)
				r.loadErrs[f.name] = err
			} else {
				delete(r.loadErrs, f.name)
			}
		}(f)
	}
	wg.Wait()

	if r.ctx.Err() != nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.loadErrs["student"]; ok {
		r.state = StateError
	} else {
		r.state = StateReady
	}
}

func (r *Reconciler) fetchStudent(ctx context.Context) error {
	u, err := r.api.GetUser(ctx, r.token, r.student.ID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx.Err() != nil {
		return nil
	}
	r.student = *u
	if u.Subjects != nil {
		r.subjects = make(map[string][]string, len(u.Subjects))
		for name, grades := range u.Subjects {
			r.subjects[name] = append([]string(nil), grades...)
		}
	}
	return nil
}

func (r *Reconciler) fetchInfractions(ctx context.Context) error {
	list, err := r.api.ListInfractions(ctx, r.token, r.student.ID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx.Err() != nil {
		return nil
	}
	r.infractions = list
	return nil
}

func (r *Reconciler) fetchAbsences(ctx context.Context) error {
	list, err := r.api.ListAbsences(ctx, r.token, r.student.ID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx.Err() != nil {
		return nil
	}
	r.absences = list
	return nil
}

func (r *Reconciler) fetchCourses(ctx context.Context) error {
	courses, err := r.api.ListCourses(ctx, r.token)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx.Err() != nil {
		return nil
	}
	r.enrolled, r.available = Partition(courses, r.student.ID)
	r.partVersion++
	return nil
}

func (r *Reconciler) fetchGradeSummary(ctx context.Context) error {
	grades, err := r.api.StudentGrades(ctx, r.token, r.student.ID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx.Err() != nil {
		return nil
	}
	r.summary = grades
	return nil
}

// ===== снимки состояния для хендлеров =====

func (r *Reconciler) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Reconciler) Student() models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.student
}

func (r *Reconciler) Subjects() map[string][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]string, len(r.subjects))
	for name, grades := range r.subjects {
		out[name] = append([]string(nil), grades...)
	}
	return out
}

func (r *Reconciler) Infractions() []models.Infraction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Infraction(nil), r.infractions...)
}

func (r *Reconciler) Absences() []models.Absence {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Absence(nil), r.absences...)
}

func (r *Reconciler) Enrolled() []models.Course {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Course(nil), r.enrolled...)
}

func (r *Reconciler) Available() []models.Course {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Course(nil), r.available...)
}

func (r *Reconciler) GradeSummary() []models.Grade {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Grade(nil), r.summary...)
}

// CourseGrades — кэшированный список оценок курса; second=false, если
// кэш пуст или инвалидирован.
func (r *Reconciler) CourseGrades(courseID string) ([]models.Grade, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	grades, ok := r.courseGrades[courseID]
	return append([]models.Grade(nil), grades...), ok
}

// LoadErr — ошибка загрузки конкретного среза (student, infractions,
// absences, courses, grades), nil если срез загрузился.
func (r *Reconciler) LoadErr(slice string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadErrs[slice]
}

// PartitionVersion — текущая версия разбиения курсов, для фонового
// обновления (см. ApplyCourseList).
func (r *Reconciler) PartitionVersion() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.partVersion
}

// ApplyCourseList применяет свежий список курсов, только если с момента
// startVersion не было локальных мутаций разбиения: локальная мутация
// побеждает устаревшее фоновое обновление.
func (r *Reconciler) ApplyCourseList(courses []models.Course, startVersion uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ctx.Err() != nil || r.partVersion != startVersion {
		return false
	}
	r.enrolled, r.available = Partition(courses, r.student.ID)
	r.partVersion++
	return true
}

// RefreshCourses — фоновое обновление разбиения. Если за время запроса
// случилась локальная мутация, свежий (но уже устаревший относительно
// неё) список молча отбрасывается.
func (r *Reconciler) RefreshCourses() error {
	v := r.PartitionVersion()
	courses, err := r.api.ListCourses(r.ctx, r.token)
	if err != nil {
		return err
	}
	r.ApplyCourseList(courses, v)
	return nil
}

// Done — контекст карточки, для фоновых задач.
func (r *Reconciler) Done() <-chan struct{} { return r.ctx.Done() }
