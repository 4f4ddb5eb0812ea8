package api

import "fmt"

// RequestError — сервер ответил, но неуспешно (не-2xx).
// Message берём из тела {"message": ...}, если оно есть.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: http %d", e.Status)
}

// NetworkError — запрос вообще не дошёл до сервера (DNS, таймаут, обрыв).
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "api: network: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// IsStatus — удобная проверка "сервер ответил кодом code".
func IsStatus(err error, code int) bool {
	re, ok := err.(*RequestError)
	return ok && re.Status == code
}
