package models

// Course — курс целиком принадлежит серверу; клиент только читает
// список students для разбиения на "записан"/"доступен".
type Course struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	CourseCode  string   `json:"courseCode"`
	Description string   `json:"description,omitempty"`
	StartDate   string   `json:"startDate,omitempty"`
	EndDate     string   `json:"endDate,omitempty"`
	Students    []string `json:"students,omitempty"`
}

// HasStudent — тест членства для разбиения списка курсов.
func (c Course) HasStudent(studentID string) bool {
	for _, id := range c.Students {
		if id == studentID {
			return true
		}
	}
	return false
}

// NewCourse — форма создания курса; обязательны только название и код.
type NewCourse struct {
	Name        string `json:"name"`
	CourseCode  string `json:"courseCode"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}
