package models

import "time"

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time `json:"created_at"`    // время создания
	ID           string    `json:"id"`            // UUID пользователя
	Username     string    `json:"username"`      // уникальный username
	PasswordHash string    `json:"password_hash"` // bcrypt хеш пароля
	LastLogin    string    `json:"last_login"`    // метка последнего входа, она же идентификатор сессии
	Disabled     bool      `json:"disabled"`      // заблокированный пользователь не может войти
}

// SessionStamp formats a login time the way it is handed to clients
func SessionStamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
