package clog

import (
	"context"
	"maps"
	"sync"
)

const (
	ErrorAttributeKey    = "error.message"
	StackAttributeKey    = "error.stack"
	TaskIDAttributeKey   = "task_id"
	WorkerIDAttributeKey = "worker_id"
)

// scope collects attributes added while a request is served. The request
// logger reads them once, when the request completes.
type scope struct {
	mu    sync.RWMutex
	attrs map[string]any
}

type scopeKey struct{}

// ContextWithSlog starts a fresh attribute scope. Attributes added to a
// context without a scope are dropped.
func ContextWithSlog(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeKey{}, &scope{attrs: map[string]any{}})
}

func scopeFrom(ctx context.Context) *scope {
	s, _ := ctx.Value(scopeKey{}).(*scope)
	return s
}

func AddAttribute(ctx context.Context, key string, value any) {
	AddAttributes(ctx, map[string]any{key: value})
}

// AddAttributes merges attrs into the scope. Nested maps are merged key by
// key rather than replaced.
func AddAttributes(ctx context.Context, attrs map[string]any) {
	s := scopeFrom(ctx)
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	merge(s.attrs, attrs)
}

func GetAttribute[T any](ctx context.Context, key string) T {
	var zero T
	s := scopeFrom(ctx)
	if s == nil {
		return zero
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.attrs[key].(T)
	if !ok {
		return zero
	}
	return v
}

// GetAttributes returns a deep copy of the scope, nil without one.
func GetAttributes(ctx context.Context) map[string]any {
	s := scopeFrom(ctx)
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return deepCopy(s.attrs)
}

// AddTask records the task and acting worker for the current request.
func AddTask(ctx context.Context, taskID, workerID string) {
	attrs := map[string]any{TaskIDAttributeKey: taskID}
	if workerID != "" {
		attrs[WorkerIDAttributeKey] = workerID
	}
	AddAttributes(ctx, attrs)
}

func AddError(ctx context.Context, err error) {
	AddAttribute(ctx, ErrorAttributeKey, err)
}

func GetError(ctx context.Context) error {
	return GetAttribute[error](ctx, ErrorAttributeKey)
}

func AddStack(ctx context.Context, stack string) {
	AddAttribute(ctx, StackAttributeKey, stack)
}

func GetStack(ctx context.Context) string {
	return GetAttribute[string](ctx, StackAttributeKey)
}

func merge(dst, src map[string]any) {
	for k, v := range src {
		sub, ok := v.(map[string]any)
		if !ok {
			dst[k] = v
			continue
		}
		if existing, ok := dst[k].(map[string]any); ok {
			merge(existing, sub)
			continue
		}
		dst[k] = maps.Clone(sub)
	}
}

func deepCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			v = deepCopy(sub)
		}
		out[k] = v
	}
	return out
}
