package api

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Username string `json:"username"` // username пользователя
	Password string `json:"password"` // пароль в открытом виде, endpoint доступен только по HTTPS
}

// LoginResponse представляет ответ на успешный логин
type LoginResponse struct {
	Success   bool   `json:"success"`
	Username  string `json:"username"`
	LastLogin string `json:"last_login"` // вместе с username образует идентичность сессии
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error  string `json:"error"`            // описание ошибки
	Detail string `json:"detail,omitempty"` // фрагмент тела при ошибке разбора
}

// SuccessResponse is the reply of write actions
type SuccessResponse struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
}
