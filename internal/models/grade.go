package models

// Grade принадлежит ровно одной паре (ученик, курс) и опционально
// одному заданию. Порядок в списках — серверный, бот на него полагается
// при снятии "последней" оценки.
type Grade struct {
	ID             string  `json:"_id"`
	StudentID      string  `json:"studentId"`
	CourseID       string  `json:"courseId,omitempty"`
	Subject        string  `json:"subject,omitempty"`
	Score          float64 `json:"score"`
	Comment        string  `json:"comment,omitempty"`
	AssignmentID   string  `json:"assignmentId,omitempty"`
	AssignmentName string  `json:"assignmentName,omitempty"`
	GradedAt       string  `json:"gradedAt,omitempty"`
}

// NewGrade — форма выставления оценки из диалога управления оценками.
type NewGrade struct {
	StudentID      string  `json:"studentId"`
	CourseID       string  `json:"courseId,omitempty"`
	Subject        string  `json:"subject,omitempty"`
	Score          float64 `json:"score"`
	Comment        string  `json:"comment,omitempty"`
	AssignmentID   string  `json:"assignmentId,omitempty"`
	AssignmentName string  `json:"assignmentName,omitempty"`
}

// CourseStats — агрегаты сервера по курсу (средний балл и число оценок).
type CourseStats struct {
	CourseID string  `json:"courseId"`
	Average  float64 `json:"average"`
	Count    int     `json:"count"`
}

// Assignment — задание курса, кандидат для привязки оценки.
type Assignment struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}
