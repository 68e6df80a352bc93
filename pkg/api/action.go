package api

import (
	"encoding/json"
	"fmt"
)

// Действия, которые понимает удаленный endpoint
const (
	ActionLogin              = "login"
	ActionGetNextInvoiceNo   = "getNextInvoiceNo"
	ActionAddInvoice         = "addInvoice"
	ActionAddInvoiceItem     = "addInvoiceItem"
	ActionGetPendingExpenses = "getPendingExpenses"
	ActionApproveExpense     = "approveExpense"
)

// Служебные поля запроса и ответа
const (
	FieldAction    = "action"
	FieldUsername  = "username"
	FieldLastLogin = "last_login"
	FieldError     = "error"
	FieldDetail    = "detail"
	FieldQueued    = "queued"
)

const (
	// InvalidResponseMessage is the error text of a response whose body was not a JSON object
	InvalidResponseMessage = "Invalid server response"

	// MaxDetailLength limits the raw body excerpt carried by an invalid response
	MaxDetailLength = 200
)

// Request is a flat JSON object sent to the endpoint. It always carries an action.
type Request map[string]any

// NewRequest creates a request for the given action
func NewRequest(action string) Request {
	return Request{FieldAction: action}
}

// NewRequestFrom builds a request from a struct with json tags
func NewRequestFrom(action string, v any) (Request, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", action, err)
	}

	req := Request{}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("payload for %s is not a JSON object: %w", action, err)
	}
	req[FieldAction] = action

	return req, nil
}

// Action returns the action discriminator or an empty string
func (r Request) Action() string {
	action, _ := r[FieldAction].(string)
	return action
}

// Clone returns a shallow copy of the request
func (r Request) Clone() Request {
	out := make(Request, len(r)+2)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Response is a parsed endpoint reply: a business result or a mapping with an error field.
type Response map[string]any

// QueuedResponse is returned instead of a server reply when the request was stored for later delivery
func QueuedResponse() Response {
	return Response{FieldQueued: true}
}

// InvalidResponse wraps a body that could not be parsed as a JSON object
func InvalidResponse(raw string) Response {
	runes := []rune(raw)
	if len(runes) > MaxDetailLength {
		runes = runes[:MaxDetailLength]
	}
	return Response{
		FieldError:  InvalidResponseMessage,
		FieldDetail: string(runes),
	}
}

// HasError reports whether the response carries an error field
func (r Response) HasError() bool {
	_, ok := r[FieldError]
	return ok
}

// ErrorText returns the error field as text
func (r Response) ErrorText() string {
	v, ok := r[FieldError]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Queued reports whether the request was stored for later delivery
func (r Response) Queued() bool {
	queued, _ := r[FieldQueued].(bool)
	return queued
}

// IsMalformed reports whether the response stands for an unparseable body
func (r Response) IsMalformed() bool {
	return r.ErrorText() == InvalidResponseMessage && r[FieldDetail] != nil
}

// Decode converts the response into a typed value
func (r Response) Decode(v any) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Decode converts the request into a typed payload
func (r Request) Decode(v any) error {
	return Response(r).Decode(v)
}
