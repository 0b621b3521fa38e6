package model

// Actor: кто выполняет запрос. Приходит из middleware, ядро его не перепроверяет.
type Actor struct {
	UserID    string
	Channel   string
	IP        string
	UserAgent string
}
