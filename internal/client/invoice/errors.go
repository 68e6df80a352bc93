package invoice

import (
	"errors"
	"fmt"

	"github.com/iudanet/invoicekeeper/internal/client/session"
	"github.com/iudanet/invoicekeeper/pkg/api"
)

// ErrNotLoggedIn возвращается, если операция требует сохраненной сессии
var ErrNotLoggedIn = errors.New("not logged in")

// RejectedError is an error reply of the endpoint
type RejectedError struct {
	Action  string
	Message string
	Detail  string // фрагмент тела для некорректного ответа
	Session bool   // ошибка сессии, пользователь уже разлогинен
}

func (e *RejectedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s rejected: %s (%s)", e.Action, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s rejected: %s", e.Action, e.Message)
}

// IsSessionRejected reports whether err is a session-class rejection
func IsSessionRejected(err error) bool {
	var rejected *RejectedError
	return errors.As(err, &rejected) && rejected.Session
}

// rejection converts an error reply into *RejectedError, nil otherwise
func rejection(action string, resp api.Response) error {
	if !resp.HasError() {
		return nil
	}

	rejected := &RejectedError{
		Action:  action,
		Message: resp.ErrorText(),
		Session: session.IsSessionError(resp),
	}
	if resp.IsMalformed() {
		rejected.Detail, _ = resp[api.FieldDetail].(string)
	}
	return rejected
}
