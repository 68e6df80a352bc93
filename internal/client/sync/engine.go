package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	httpClient "github.com/iudanet/invoicekeeper/internal/client/api"
	"github.com/iudanet/invoicekeeper/internal/client/session"
	"github.com/iudanet/invoicekeeper/internal/client/storage"
	"github.com/iudanet/invoicekeeper/internal/metrics"
	"github.com/iudanet/invoicekeeper/pkg/api"
)

// SessionGuard inspects replies for session-class errors
type SessionGuard interface {
	Check(ctx context.Context, resp api.Response) api.Response
}

// Engine wraps the transport into fail-safe write calls and replays
// queued requests in submission order
type Engine struct {
	transport httpClient.ClientAPI
	queue     storage.QueueStorage
	guard     SessionGuard
	meta      storage.MetadataStorage
	logger    *slog.Logger

	// draining не дает двум Drain одновременно отправить одну и ту же запись
	draining atomic.Bool
}

// NewEngine creates a new sync engine; guard may be nil
func NewEngine(transport httpClient.ClientAPI, queue storage.QueueStorage, guard SessionGuard, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		transport: transport,
		queue:     queue,
		guard:     guard,
		logger:    logger,
	}
}

// WithMetadata makes the engine record the time of every drain that leaves
// the queue empty
func (e *Engine) WithMetadata(meta storage.MetadataStorage) *Engine {
	e.meta = meta
	return e
}

// DrainResult contains drain run results
type DrainResult struct {
	StoppedAt  string // ID записи, на которой остановилась отправка
	StopReason string // текст ошибки этой записи
	Attempted  int    // количество отправленных попыток
	Delivered  int    // количество доставленных и удаленных из очереди записей
	Remaining  int    // размер очереди после прогона
	Stopped    bool   // прогон остановился на ошибке
	Skipped    bool   // другой прогон уже выполнялся
}

// SafeCall sends req and classifies the reply.
//
// A network failure stores req in the queue and returns a queued marker.
// Session, business and malformed replies are returned unchanged and never queued.
// The returned error is non-nil only when the request was neither sent nor queued.
func (e *Engine) SafeCall(ctx context.Context, req api.Request) (api.Response, error) {
	action := req.Action()

	resp, err := e.transport.Call(ctx, req)
	if err != nil {
		if !httpClient.IsNetworkError(err) {
			metrics.RecordSafeCall(action, metrics.OutcomeFailed)
			return nil, err
		}

		if qErr := e.queue.Append(ctx, req); qErr != nil {
			metrics.RecordSafeCall(action, metrics.OutcomeFailed)
			e.logger.ErrorContext(ctx, "Failed to queue request", "action", action, "error", qErr)
			return nil, fmt.Errorf("server unreachable and request not queued: %w", errors.Join(err, qErr))
		}

		pending := e.queue.Count(ctx)
		metrics.RecordSafeCall(action, metrics.OutcomeQueued)
		metrics.SetQueueDepth(pending)
		e.logger.WarnContext(ctx, "Server unreachable, request queued",
			"action", action,
			"pending", pending,
			"error", err)

		return api.QueuedResponse(), nil
	}

	resp = e.checkSession(ctx, resp)

	switch {
	case session.IsSessionError(resp):
		metrics.RecordSafeCall(action, metrics.OutcomeSessionError)
	case resp.IsMalformed():
		metrics.RecordSafeCall(action, metrics.OutcomeMalformed)
		e.logger.WarnContext(ctx, "Invalid server response",
			"action", action,
			"detail", resp[api.FieldDetail])
	case resp.HasError():
		metrics.RecordSafeCall(action, metrics.OutcomeBusinessError)
		e.logger.WarnContext(ctx, "Server rejected request",
			"action", action,
			"error", resp.ErrorText())
	default:
		metrics.RecordSafeCall(action, metrics.OutcomeDelivered)
	}

	return resp, nil
}

// Fetch sends a read-only request. Reads are never queued: a network
// failure is returned to the caller as *api.NetworkError.
func (e *Engine) Fetch(ctx context.Context, req api.Request) (api.Response, error) {
	resp, err := e.transport.Call(ctx, req)
	if err != nil {
		return nil, err
	}

	resp = e.checkSession(ctx, resp)
	if resp.HasError() && !session.IsSessionError(resp) {
		e.logger.WarnContext(ctx, "Server rejected request",
			"action", req.Action(),
			"error", resp.ErrorText())
	}

	return resp, nil
}

// Enqueue stores req for later delivery without trying the network.
// Callers use it for requests that must not overtake an already queued one.
func (e *Engine) Enqueue(ctx context.Context, req api.Request) (api.Response, error) {
	if err := e.queue.Append(ctx, req); err != nil {
		metrics.RecordSafeCall(req.Action(), metrics.OutcomeFailed)
		return nil, fmt.Errorf("failed to queue request: %w", err)
	}

	metrics.RecordSafeCall(req.Action(), metrics.OutcomeQueued)
	metrics.SetQueueDepth(e.queue.Count(ctx))

	return api.QueuedResponse(), nil
}

// Drain replays queued requests in stored order and stops at the first one
// that fails, whether by network error or by an error reply. Delivered
// requests before it are removed; it and everything after it stay queued
// untried. Requests appended while the drain runs are kept.
//
// A poison request at the head blocks the queue until it is removed by hand.
func (e *Engine) Drain(ctx context.Context) (*DrainResult, error) {
	if !e.draining.CompareAndSwap(false, true) {
		e.logger.DebugContext(ctx, "Drain already in progress, skipping")
		metrics.RecordDrain(metrics.DrainSkipped, 0)
		return &DrainResult{Skipped: true}, nil
	}
	defer e.draining.Store(false)

	result := &DrainResult{}

	ops := e.queue.ReadAll(ctx)
	if len(ops) == 0 {
		metrics.RecordDrain(metrics.DrainEmpty, 0)
		metrics.SetQueueDepth(0)
		e.markSynced(ctx)
		return result, nil
	}

	e.logger.InfoContext(ctx, "Starting queue drain", "pending", len(ops))

	for _, op := range ops {
		result.Attempted++

		resp, err := e.transport.Call(ctx, op.Payload)
		if err != nil {
			result.Stopped = true
			result.StoppedAt = op.ID
			result.StopReason = err.Error()
			break
		}

		resp = e.checkSession(ctx, resp)
		if resp.HasError() {
			result.Stopped = true
			result.StoppedAt = op.ID
			result.StopReason = resp.ErrorText()
			break
		}

		result.Delivered++
	}

	// Удаляем доставленные записи из текущей очереди, а не из снимка
	if err := e.queue.RemoveHead(ctx, result.Delivered); err != nil {
		metrics.RecordDrain(metrics.DrainFailed, 0)
		return result, fmt.Errorf("failed to remove delivered operations: %w", err)
	}

	result.Remaining = e.queue.Count(ctx)
	metrics.SetQueueDepth(result.Remaining)

	if result.Stopped {
		metrics.RecordDrain(metrics.DrainStopped, result.Delivered)
		e.logger.WarnContext(ctx, "Queue drain stopped",
			"delivered", result.Delivered,
			"remaining", result.Remaining,
			"stopped_at", result.StoppedAt,
			"reason", result.StopReason)
		return result, nil
	}

	metrics.RecordDrain(metrics.DrainComplete, result.Delivered)
	if result.Remaining == 0 {
		e.markSynced(ctx)
	}
	e.logger.InfoContext(ctx, "Queue drain completed",
		"delivered", result.Delivered,
		"remaining", result.Remaining)

	return result, nil
}

// PendingCount returns the number of requests waiting for delivery
func (e *Engine) PendingCount(ctx context.Context) int {
	return e.queue.Count(ctx)
}

// Pending returns the queued requests in delivery order
func (e *Engine) Pending(ctx context.Context) []storage.QueuedOperation {
	return e.queue.ReadAll(ctx)
}

// LastSync returns the time the queue was last confirmed empty, zero if unknown
func (e *Engine) LastSync(ctx context.Context) time.Time {
	if e.meta == nil {
		return time.Time{}
	}
	at, err := e.meta.GetLastSync(ctx)
	if err != nil {
		e.logger.WarnContext(ctx, "Failed to read last sync time", "error", err)
		return time.Time{}
	}
	return at
}

// markSynced ошибку записи только логирует: доставка уже произошла
func (e *Engine) markSynced(ctx context.Context) {
	if e.meta == nil {
		return
	}
	if err := e.meta.SaveLastSync(ctx, time.Now()); err != nil {
		e.logger.WarnContext(ctx, "Failed to save last sync time", "error", err)
	}
}

func (e *Engine) checkSession(ctx context.Context, resp api.Response) api.Response {
	if e.guard == nil {
		return resp
	}
	return e.guard.Check(ctx, resp)
}
