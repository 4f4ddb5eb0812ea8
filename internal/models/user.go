package models

type Role string

const (
	Student Role = "student"
	Teacher Role = "teacher"
	Admin   Role = "admin"
)

// User — запись пользователя на стороне сервера. Для учеников сервер
// дополнительно отдаёт subjects: предмет → список оценок в порядке выставления.
type User struct {
	ID        string              `json:"_id"`
	FirstName string              `json:"firstName"`
	LastName  string              `json:"lastName"`
	Email     string              `json:"email"`
	Username  string              `json:"username"`
	Role      Role                `json:"role"`
	Subjects  map[string][]string `json:"subjects,omitempty"`
	// Выдаётся один раз в ответе на создание ученика.
	InitialPassword string `json:"initialPassword,omitempty"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Session — то, что бот хранит между перезапусками: токен и копия
// записи пользователя на момент логина. Роль декодируется из токена,
// заново не вычисляется, пока токен не сменится.
type Session struct {
	ChatID int64
	Token  string
	User   User
}
