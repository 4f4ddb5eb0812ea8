package reconciler

import (
	"strconv"
	"strings"

	"github.com/schooldesk/admin-bot/internal/models"
)

// Все мутации двухфазные: сначала подтверждение сервера, потом локальный
// патч. При отказе состояние не тронуто, отката нет.

func (r *Reconciler) beginMutation() {
	r.mu.Lock()
	r.state = StateMutating
	r.mu.Unlock()
}

func (r *Reconciler) endMutation() {
	r.mu.Lock()
	if r.state == StateMutating {
		r.state = StateReady
	}
	r.mu.Unlock()
}

func (r *Reconciler) AddSubject(name string) Outcome {
	name = strings.TrimSpace(name)
	if name == "" {
		return rejected("название предмета пустое", nil)
	}
	r.beginMutation()
	defer r.endMutation()

	if err := r.api.AddSubject(r.ctx, r.token, r.student.ID, name); err != nil {
		return rejected("предмет добавить не удалось", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subjects[name]; !ok {
		r.subjects[name] = []string{}
	}
	return applied()
}

// AddGrade выставляет оценку по предмету из вкладки предметов. Курс
// подбирается по названию предмета среди записанных; если такой курс
// есть, его кэш оценок после успеха перечитывается.
func (r *Reconciler) AddGrade(subject, scoreText string) Outcome {
	scoreText = strings.TrimSpace(scoreText)
	if scoreText == "" {
		return rejected("оценка не введена", nil)
	}
	score, err := strconv.ParseFloat(scoreText, 64)
	if err != nil {
		return rejected("оценка должна быть числом", nil)
	}
	r.beginMutation()
	defer r.endMutation()

	courseID := r.courseIDForSubject(subject)
	ng := models.NewGrade{
		StudentID: r.student.ID,
		CourseID:  courseID,
		Subject:   subject,
		Score:     score,
	}
	if _, err := r.api.AddGrade(r.ctx, r.token, ng); err != nil {
		return rejected("оценку сохранить не удалось", err)
	}

	r.mu.Lock()
	r.subjects[subject] = append(r.subjects[subject], scoreText)
	r.mu.Unlock()

	if courseID != "" {
		r.refreshCourseGrades(courseID)
	}
	return applied()
}

// RemoveLatestGrade снимает последнюю оценку предмета: список пары
// (ученик, предмет) читается с сервера, удаляется последний элемент
// в серверном порядке — не локальный pop. Локальный список укорачивается
// только после успешного удаления.
func (r *Reconciler) RemoveLatestGrade(subject string) Outcome {
	r.beginMutation()
	defer r.endMutation()

	grades, err := r.api.GradesBySubject(r.ctx, r.token, r.student.ID, subject)
	if err != nil {
		return rejected("список оценок получить не удалось", err)
	}
	if len(grades) == 0 {
		return rejected("снимать нечего: оценок нет", nil)
	}
	latest := grades[len(grades)-1]
	if err := r.api.DeleteGrade(r.ctx, r.token, latest.ID); err != nil {
		return rejected("оценку удалить не удалось", err)
	}

	r.mu.Lock()
	if list := r.subjects[subject]; len(list) > 0 {
		r.subjects[subject] = list[:len(list)-1]
	}
	r.mu.Unlock()

	if latest.CourseID != "" {
		r.refreshCourseGrades(latest.CourseID)
	}
	return applied()
}

func (r *Reconciler) AddInfraction(infracType, description, date string) Outcome {
	if strings.TrimSpace(infracType) == "" || strings.TrimSpace(description) == "" {
		return rejected("тип и описание проступка обязательны", nil)
	}
	r.beginMutation()
	defer r.endMutation()

	inf := models.Infraction{
		StudentID:   r.student.ID,
		InfracType:  infracType,
		Description: description,
		Date:        date,
	}
	created, err := r.api.AddInfraction(r.ctx, r.token, inf)
	if err != nil {
		return rejected("проступок сохранить не удалось", err)
	}
	r.mu.Lock()
	r.infractions = append(r.infractions, *created)
	r.mu.Unlock()
	return applied()
}

func (r *Reconciler) DeleteInfraction(id string) Outcome {
	r.beginMutation()
	defer r.endMutation()

	if err := r.api.DeleteInfraction(r.ctx, r.token, id); err != nil {
		return rejected("проступок удалить не удалось", err)
	}
	r.mu.Lock()
	out := r.infractions[:0]
	for _, inf := range r.infractions {
		if inf.ID != id {
			out = append(out, inf)
		}
	}
	r.infractions = out
	r.mu.Unlock()
	return applied()
}

func (r *Reconciler) AddAbsence(date string, excused bool) Outcome {
	if strings.TrimSpace(date) == "" {
		return rejected("дата пропуска обязательна", nil)
	}
	r.beginMutation()
	defer r.endMutation()

	status := models.AbsenceAbsent
	if excused {
		status = models.AbsenceExcused
	}
	a := models.Absence{StudentID: r.student.ID, Date: date, Status: status}
	created, err := r.api.AddAbsence(r.ctx, r.token, a)
	if err != nil {
		return rejected("пропуск сохранить не удалось", err)
	}
	r.mu.Lock()
	r.absences = append(r.absences, *created)
	r.mu.Unlock()
	return applied()
}

func (r *Reconciler) DeleteAbsence(id string) Outcome {
	r.beginMutation()
	defer r.endMutation()

	if err := r.api.DeleteAbsence(r.ctx, r.token, id); err != nil {
		return rejected("пропуск удалить не удалось", err)
	}
	r.mu.Lock()
	out := r.absences[:0]
	for _, a := range r.absences {
		if a.ID != id {
			out = append(out, a)
		}
	}
	r.absences = out
	r.mu.Unlock()
	return applied()
}

// Enroll переносит курс из "доступных" в "записан". Строгое разбиение:
// курс, которого нет среди доступных, не записывается повторно — запрос
// на сервер не уходит, дубликата не возникает.
func (r *Reconciler) Enroll(courseID string) Outcome {
	r.mu.Lock()
	idx := courseIndex(r.available, courseID)
	r.mu.Unlock()
	if idx < 0 {
		return rejected("курс недоступен для записи", nil)
	}
	r.beginMutation()
	defer r.endMutation()

	if err := r.api.Enroll(r.ctx, r.token, courseID, r.student.ID); err != nil {
		return rejected("записать на курс не удалось", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	idx = courseIndex(r.available, courseID)
	if idx < 0 {
		// Разбиение успело смениться; сервер уже знает о записи,
		// свежий список принесёт её сам.
		return applied()
	}
	course := r.available[idx]
	course.Students = append(course.Students, r.student.ID)
	r.available = append(r.available[:idx], r.available[idx+1:]...)
	r.enrolled = append(r.enrolled, course)
	r.partVersion++
	return applied()
}

func (r *Reconciler) Unenroll(courseID string) Outcome {
	r.mu.Lock()
	idx := courseIndex(r.enrolled, courseID)
	r.mu.Unlock()
	if idx < 0 {
		return rejected("ученик не записан на этот курс", nil)
	}
	r.beginMutation()
	defer r.endMutation()

	if err := r.api.Unenroll(r.ctx, r.token, courseID, r.student.ID); err != nil {
		return rejected("отписать от курса не удалось", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	idx = courseIndex(r.enrolled, courseID)
	if idx < 0 {
		return applied()
	}
	course := r.enrolled[idx]
	students := course.Students[:0]
	for _, id := range course.Students {
		if id != r.student.ID {
			students = append(students, id)
		}
	}
	course.Students = students
	r.enrolled = append(r.enrolled[:idx], r.enrolled[idx+1:]...)
	r.available = append(r.available, course)
	r.partVersion++
	return applied()
}

// CreateAndEnroll создаёт курс и сразу записывает ученика. Ответ на
// создание авторитетен: курс вставляется в "записан" без перечитывания
// списка.
func (r *Reconciler) CreateAndEnroll(nc models.NewCourse) Outcome {
	if strings.TrimSpace(nc.Name) == "" || strings.TrimSpace(nc.CourseCode) == "" {
		return rejected("название и код курса обязательны", nil)
	}
	r.beginMutation()
	defer r.endMutation()

	course, err := r.api.CreateCourse(r.ctx, r.token, nc)
	if err != nil {
		return rejected("курс создать не удалось", err)
	}
	if err := r.api.Enroll(r.ctx, r.token, course.ID, r.student.ID); err != nil {
		return rejected("курс создан, но записать ученика не удалось", err)
	}

	r.mu.Lock()
	course.Students = append(course.Students, r.student.ID)
	r.enrolled = append(r.enrolled, *course)
	r.partVersion++
	r.mu.Unlock()
	return applied()
}

// AddGradeForCourse — выставление оценки из диалога управления оценками.
// Кэш оценок этого курса после успеха перечитывается; кэши остальных
// курсов не трогаются.
func (r *Reconciler) AddGradeForCourse(ng models.NewGrade) Outcome {
	r.beginMutation()
	defer r.endMutation()

	if _, err := r.api.AddGrade(r.ctx, r.token, ng); err != nil {
		return rejected("оценку сохранить не удалось", err)
	}
	if ng.CourseID != "" {
		r.refreshCourseGrades(ng.CourseID)
	}
	return applied()
}

// DeleteGradeInCourse — удаление оценки по id из диалога управления
// оценками (поиск последней оценки делает сам диалог).
func (r *Reconciler) DeleteGradeInCourse(courseID, gradeID string) Outcome {
	r.beginMutation()
	defer r.endMutation()

	if err := r.api.DeleteGrade(r.ctx, r.token, gradeID); err != nil {
		return rejected("оценку удалить не удалось", err)
	}
	if courseID != "" {
		r.refreshCourseGrades(courseID)
	}
	return applied()
}

// refreshCourseGrades инвалидирует кэш курса и перечитывает его с
// сервера. Если перечитать не вышло, кэш остаётся пустым — устаревшие
// данные хуже отсутствующих.
func (r *Reconciler) refreshCourseGrades(courseID string) {
	r.mu.Lock()
	delete(r.courseGrades, courseID)
	r.mu.Unlock()

	grades, err := r.api.CourseGrades(r.ctx, r.token, courseID)
	if err != nil {
		r.log.Warnw("кэш оценок курса перечитать не удалось", "course", courseID, "err", err)
		return
	}
	r.mu.Lock()
	if r.ctx.Err() == nil {
		r.courseGrades[courseID] = grades
	}
	r.mu.Unlock()
}

func (r *Reconciler) courseIDForSubject(subject string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.enrolled {
		if c.Name == subject {
			return c.ID
		}
	}
	return ""
}

func courseIndex(courses []models.Course, id string) int {
	for i, c := range courses {
		if c.ID == id {
			return i
		}
	}
	return -1
}
