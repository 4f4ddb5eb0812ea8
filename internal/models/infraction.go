package models

type Infraction struct {
	ID          string `json:"_id"`
	StudentID   string `json:"studentId"`
	InfracType  string `json:"infracType"`
	Description string `json:"description"`
	Date        string `json:"date"`
}
