package reconciler

// Outcome — размеченный результат мутирующей операции: либо локальный
// патч уже применён, либо состояние не тронуто и есть причина отказа.
// Третьего не дано — откатывать нечего, потому что до подтверждения
// сервера локально ничего не меняется.
type Outcome struct {
	Applied bool
	Reason  string
	Err     error
}

func applied() Outcome { return Outcome{Applied: true} }

func rejected(reason string, err error) Outcome {
	return Outcome{Reason: reason, Err: err}
}
