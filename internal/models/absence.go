package models

const (
	AbsenceAbsent  = "absent"
	AbsenceExcused = "excused"
)

type Absence struct {
	ID        string `json:"_id"`
	StudentID string `json:"studentId"`
	Date      string `json:"date"`
	Status    string `json:"status"`
	CourseID  string `json:"courseId,omitempty"`
}
