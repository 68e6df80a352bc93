package sync

import (
	"context"
	"strconv"
	stdsync "sync"
	"time"

	"github.com/iudanet/invoicekeeper/internal/client/storage"
	"github.com/iudanet/invoicekeeper/pkg/api"
)

// ClientAPIMock is a mock implementation of api.ClientAPI in the moq layout
type ClientAPIMock struct {
	CallFunc func(ctx context.Context, req api.Request) (api.Response, error)

	calls []api.Request
	lock  stdsync.Mutex
}

func (m *ClientAPIMock) Call(ctx context.Context, req api.Request) (api.Response, error) {
	m.lock.Lock()
	m.calls = append(m.calls, req)
	m.lock.Unlock()
	return m.CallFunc(ctx, req)
}

// CallCalls returns the requests passed to Call
func (m *ClientAPIMock) CallCalls() []api.Request {
	m.lock.Lock()
	defer m.lock.Unlock()
	out := make([]api.Request, len(m.calls))
	copy(out, m.calls)
	return out
}

// SessionGuardMock is a mock implementation of SessionGuard
type SessionGuardMock struct {
	CheckFunc func(ctx context.Context, resp api.Response) api.Response

	checks int
	lock   stdsync.Mutex
}

func (m *SessionGuardMock) Check(ctx context.Context, resp api.Response) api.Response {
	m.lock.Lock()
	m.checks++
	m.lock.Unlock()
	if m.CheckFunc == nil {
		return resp
	}
	return m.CheckFunc(ctx, resp)
}

// memoryQueue is an in-memory storage.QueueStorage
type memoryQueue struct {
	appendErr error
	ops       []storage.QueuedOperation
	seq       int
	mu        stdsync.Mutex
}

func newMemoryQueue(actions ...string) *memoryQueue {
	q := &memoryQueue{}
	for _, action := range actions {
		_ = q.Append(context.Background(), api.Request{"action": action})
	}
	return q
}

func (q *memoryQueue) Append(ctx context.Context, payload api.Request) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.appendErr != nil {
		return q.appendErr
	}
	q.seq++
	q.ops = append(q.ops, storage.QueuedOperation{
		ID:         payload.Action() + "-" + strconv.Itoa(q.seq),
		EnqueuedAt: time.Now(),
		Payload:    payload,
	})
	return nil
}

func (q *memoryQueue) ReadAll(ctx context.Context) []storage.QueuedOperation {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]storage.QueuedOperation, len(q.ops))
	copy(out, q.ops)
	return out
}

func (q *memoryQueue) ReplaceAll(ctx context.Context, ops []storage.QueuedOperation) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ops = append([]storage.QueuedOperation(nil), ops...)
	return nil
}

func (q *memoryQueue) RemoveHead(ctx context.Context, n int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > len(q.ops) {
		n = len(q.ops)
	}
	q.ops = append([]storage.QueuedOperation(nil), q.ops[n:]...)
	return nil
}

func (q *memoryQueue) Count(ctx context.Context) int {
	return len(q.ReadAll(ctx))
}

// actions возвращает действия записей очереди по порядку
func (q *memoryQueue) actions() []string {
	var out []string
	for _, op := range q.ReadAll(context.Background()) {
		out = append(out, op.Payload.Action())
	}
	return out
}
