package session

import (
	"errors"

	"github.com/golang-jwt/jwt/v4"
	"github.com/schooldesk/admin-bot/internal/models"
)

// ErrMalformedToken — клейм role из токена достать не удалось.
// Для вызывающих это не фатально: просто "роль не выдана".
var ErrMalformedToken = errors.New("session: malformed token")

// DecodeRole достаёт role из payload-сегмента токена. Подпись не
// проверяем — это делает сервер на каждом запросе; клиенту нужен
// только клейм. Декодируем один раз на токен.
func DecodeRole(token string) (models.Role, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", ErrMalformedToken
	}
	role, ok := claims["role"].(string)
	if !ok || role == "" {
		return "", ErrMalformedToken
	}
	return models.Role(role), nil
}

// CanViewRoster — список учеников видят только админ и учитель.
// Остальным — отказ и карточка профиля.
func CanViewRoster(role models.Role) bool {
	return role == models.Admin || role == models.Teacher
}
