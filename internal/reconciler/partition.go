package reconciler

import "github.com/schooldesk/admin-bot/internal/models"

// Partition разбивает список курсов на "записан"/"доступен" по тесту
// членства ученика. Инвариант: enrolled ∪ available = courses,
// enrolled ∩ available = ∅.
func Partition(courses []models.Course, studentID string) (enrolled, available []models.Course) {
	for _, c := range courses {
		if c.HasStudent(studentID) {
			enrolled = append(enrolled, c)
		} else {
			available = append(available, c)
		}
	}
	return enrolled, available
}
