package domain

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RolePOS   Role = "pos"
)

// User — учётная запись из конфигурации.
type User struct {
	Username string
	Password string
	Role     Role
	Terminal TerminalID
}

// Session — активная сессия пользователя.
type Session struct {
	Token     string
	Username  string
	Role      Role
	Terminal  TerminalID
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s *Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// CanView сообщает, может ли пользователь смотреть данные терминала.
func (s *Session) CanView(terminal TerminalID) bool {
	return s.IsAdmin() || s.Terminal == terminal
}
