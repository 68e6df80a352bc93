package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/invoicekeeper/internal/crypto"
	"github.com/iudanet/invoicekeeper/internal/metrics"
	"github.com/iudanet/invoicekeeper/internal/models"
	"github.com/iudanet/invoicekeeper/internal/server/storage"
	"github.com/iudanet/invoicekeeper/internal/validation"
	"github.com/iudanet/invoicekeeper/pkg/api"
)

// MaxRequestSize ограничивает тело запроса
const MaxRequestSize = 1 << 20

// Тексты ошибок, которые видит клиент
const (
	ErrTextInvalidRequest     = "Invalid request"
	ErrTextInvalidCredentials = "Invalid username or password"
	ErrTextSessionExpired     = "Session expired, please login again"
	ErrTextAccountDisabled    = "Account disabled"
	ErrTextInternal           = "Internal error"
)

// ExecHandler обрабатывает единственный endpoint с полем action.
// Ответ всегда HTTP 200 с JSON объектом: результат или {"error": ...}.
type ExecHandler struct {
	logger   *slog.Logger
	users    storage.UserStorage
	invoices storage.InvoiceStorage
	expenses storage.ExpenseStorage
	now      func() time.Time
}

// NewExecHandler создает handler действий
func NewExecHandler(logger *slog.Logger, users storage.UserStorage, invoices storage.InvoiceStorage, expenses storage.ExpenseStorage) *ExecHandler {
	return &ExecHandler{
		logger:   logger,
		users:    users,
		invoices: invoices,
		expenses: expenses,
		now:      time.Now,
	}
}

// actionFunc обрабатывает действие от имени проверенного пользователя
type actionFunc func(r *http.Request, user *models.User, req api.Request) api.Response

// ServeHTTP обрабатывает POST /exec. Остальные методы отвечают статусом,
// чтобы проверка связи клиента получала ответ.
func (h *ExecHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendJSON(w, api.Response{"status": "ok"})
		return
	}

	ctx := r.Context()

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxRequestSize))
	if err != nil {
		h.logger.WarnContext(ctx, "failed to read request body", slog.Any("error", err))
		h.sendJSON(w, errorResponse(ErrTextInvalidRequest))
		return
	}

	var req api.Request
	if err := json.Unmarshal(raw, &req); err != nil || req == nil {
		h.logger.WarnContext(ctx, "failed to decode request", slog.Any("error", err))
		h.sendJSON(w, errorResponse(ErrTextInvalidRequest))
		return
	}

	action := req.Action()
	resp := h.dispatch(r, action, req)

	status := "ok"
	if resp.HasError() {
		status = "error"
	}
	metrics.RecordActionRequest(action, status)

	h.sendJSON(w, resp)
}

func (h *ExecHandler) dispatch(r *http.Request, action string, req api.Request) api.Response {
	if action == api.ActionLogin {
		return h.login(r, req)
	}

	var handle actionFunc
	switch action {
	case api.ActionGetNextInvoiceNo:
		handle = h.nextInvoiceNo
	case api.ActionAddInvoice:
		handle = h.addInvoice
	case api.ActionAddInvoiceItem:
		handle = h.addInvoiceItem
	case api.ActionGetPendingExpenses:
		handle = h.pendingExpenses
	case api.ActionApproveExpense:
		handle = h.approveExpense
	default:
		return errorResponse(fmt.Sprintf("Unknown action: %s", action))
	}

	user, resp := h.checkSession(r, req)
	if resp != nil {
		return resp
	}

	return handle(r, user, req)
}

// login проверяет пароль и выдает новую метку сессии
func (h *ExecHandler) login(r *http.Request, req api.Request) api.Response {
	ctx := r.Context()

	var login api.LoginRequest
	if err := req.Decode(&login); err != nil || login.Username == "" || login.Password == "" {
		return errorResponse(ErrTextInvalidCredentials)
	}

	user, err := h.users.GetUserByUsername(ctx, login.Username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login for unknown user", slog.String("username", login.Username))
			return errorResponse(ErrTextInvalidCredentials)
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		return errorResponse(ErrTextInternal)
	}

	if err := crypto.VerifyPassword(login.Password, user.PasswordHash); err != nil {
		h.logger.WarnContext(ctx, "invalid password", slog.String("username", login.Username))
		return errorResponse(ErrTextInvalidCredentials)
	}

	if user.Disabled {
		return errorResponse(ErrTextAccountDisabled)
	}

	// Новая метка делает недействительными сессии на других устройствах
	stamp := models.SessionStamp(h.now())
	if err := h.users.UpdateLastLogin(ctx, user.ID, stamp); err != nil {
		h.logger.ErrorContext(ctx, "failed to update last login", slog.Any("error", err))
		return errorResponse(ErrTextInternal)
	}

	h.logger.InfoContext(ctx, "user logged in", slog.String("username", user.Username))

	return api.Response{
		"success":          true,
		api.FieldUsername:  user.Username,
		api.FieldLastLogin: stamp,
	}
}

// checkSession сверяет пару (username, last_login) с сохраненной.
// Возвращает ответ с ошибкой, если сессия недействительна.
func (h *ExecHandler) checkSession(r *http.Request, req api.Request) (*models.User, api.Response) {
	ctx := r.Context()

	username, _ := req[api.FieldUsername].(string)
	lastLogin, _ := req[api.FieldLastLogin].(string)
	if username == "" || lastLogin == "" {
		return nil, errorResponse(ErrTextSessionExpired)
	}

	user, err := h.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, errorResponse(ErrTextSessionExpired)
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		return nil, errorResponse(ErrTextInternal)
	}

	if user.Disabled {
		return nil, errorResponse(ErrTextAccountDisabled)
	}
	if user.LastLogin == "" || user.LastLogin != lastLogin {
		h.logger.InfoContext(ctx, "stale session", slog.String("username", username))
		return nil, errorResponse(ErrTextSessionExpired)
	}

	return user, nil
}

func (h *ExecHandler) nextInvoiceNo(r *http.Request, _ *models.User, _ api.Request) api.Response {
	no, err := h.invoices.NextInvoiceNo(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to get next invoice number", slog.Any("error", err))
		return errorResponse(ErrTextInternal)
	}
	return api.Response{"invoice_no": no}
}

func (h *ExecHandler) addInvoice(r *http.Request, user *models.User, req api.Request) api.Response {
	ctx := r.Context()

	var in api.Invoice
	if err := req.Decode(&in); err != nil {
		return errorResponse(ErrTextInvalidRequest)
	}
	if err := validation.ValidateInvoice(&in); err != nil {
		return errorResponse(err.Error())
	}

	invoice := &models.Invoice{
		ID:            uuid.New().String(),
		InvoiceNo:     in.InvoiceNo,
		Date:          in.Date,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Notes:         in.Notes,
		Total:         in.Total,
		CreatedBy:     user.Username,
		CreatedAt:     h.now(),
	}

	if err := h.invoices.CreateInvoice(ctx, invoice); err != nil {
		if errors.Is(err, storage.ErrInvoiceExists) {
			return errorResponse(fmt.Sprintf("Invoice %s already exists", in.InvoiceNo))
		}
		h.logger.ErrorContext(ctx, "failed to create invoice", slog.Any("error", err))
		return errorResponse(ErrTextInternal)
	}

	h.logger.InfoContext(ctx, "invoice created",
		slog.String("invoice_no", invoice.InvoiceNo),
		slog.String("username", user.Username))

	return api.Response{"success": true, "id": invoice.ID}
}

func (h *ExecHandler) addInvoiceItem(r *http.Request, _ *models.User, req api.Request) api.Response {
	ctx := r.Context()

	var in api.InvoiceItem
	if err := req.Decode(&in); err != nil {
		return errorResponse(ErrTextInvalidRequest)
	}
	if err := validation.ValidateInvoiceNo(in.InvoiceNo); err != nil {
		return errorResponse(err.Error())
	}
	if err := validation.ValidateItem(&in); err != nil {
		return errorResponse(err.Error())
	}

	item := &models.InvoiceItem{
		ID:          uuid.New().String(),
		InvoiceNo:   in.InvoiceNo,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Amount:      in.Amount,
		CreatedAt:   h.now(),
	}

	if err := h.invoices.AddInvoiceItem(ctx, item); err != nil {
		if errors.Is(err, storage.ErrInvoiceNotFound) {
			return errorResponse(fmt.Sprintf("Invoice %s not found", in.InvoiceNo))
		}
		h.logger.ErrorContext(ctx, "failed to add invoice item", slog.Any("error", err))
		return errorResponse(ErrTextInternal)
	}

	return api.Response{"success": true, "id": item.ID}
}

func (h *ExecHandler) pendingExpenses(r *http.Request, _ *models.User, _ api.Request) api.Response {
	expenses, err := h.expenses.ListExpenses(r.Context(), models.ExpenseStatusPending)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list expenses", slog.Any("error", err))
		return errorResponse(ErrTextInternal)
	}

	out := make([]api.Expense, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, api.Expense{
			ID:          e.ID,
			SubmittedBy: e.SubmittedBy,
			Description: e.Description,
			Date:        e.Date,
			Status:      e.Status,
			Amount:      e.Amount,
		})
	}

	return api.Response{"expenses": out}
}

func (h *ExecHandler) approveExpense(r *http.Request, user *models.User, req api.Request) api.Response {
	ctx := r.Context()

	var in api.ApproveExpenseRequest
	if err := req.Decode(&in); err != nil || in.ID == "" {
		return errorResponse("Expense id is required")
	}

	err := h.expenses.ApproveExpense(ctx, in.ID, user.Username, h.now())
	switch {
	case errors.Is(err, storage.ErrExpenseNotFound):
		return errorResponse(fmt.Sprintf("Expense %s not found", in.ID))
	case errors.Is(err, storage.ErrExpenseNotPending):
		return errorResponse(fmt.Sprintf("Expense %s is not pending", in.ID))
	case err != nil:
		h.logger.ErrorContext(ctx, "failed to approve expense", slog.Any("error", err))
		return errorResponse(ErrTextInternal)
	}

	h.logger.InfoContext(ctx, "expense approved",
		slog.String("id", in.ID),
		slog.String("username", user.Username))

	return api.Response{"success": true}
}

// sendJSON отправляет JSON ответ со статусом 200
func (h *ExecHandler) sendJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

func errorResponse(message string) api.Response {
	return api.Response{api.FieldError: message}
}
