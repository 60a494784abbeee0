// Package tenant scopes the conversation engine's document access to one
// project for the duration of a single request.
//
// The engine is handed only a user message; it still has to read and write
// the right project's document. The binding travels in the request context
// (the same pattern the repositories use for transactions), so concurrent
// requests for different projects each see their own binding. There is
// deliberately no package-level current-project variable: a shared field
// would let two in-flight requests corrupt each other's documents.
//
// Writes are staged on the binding, not committed to the store. An engine
// can write the document in an early tool round and then fail or time out
// in a later one; the caller commits the staged content only once the
// whole engine call has succeeded, so a failed turn leaves the stored
// document untouched.
package tenant

import (
	"context"
	"errors"
	"sync"

	"planner/internal/domain/repositories"
)

// ErrNoBinding is returned when a document operation runs on a context
// that was never bound to a project.
var ErrNoBinding = errors.New("no project bound to context")

// bindingKey is the context key type for tenant bindings
type bindingKey struct{}

type binding struct {
	projectID string
	docs      repositories.DocumentRepository

	mu     sync.Mutex
	staged *string
}

// Bind scopes document operations on the returned context to projectID.
// The binding lives exactly as long as the context does.
func Bind(ctx context.Context, projectID string, docs repositories.DocumentRepository) context.Context {
	return context.WithValue(ctx, bindingKey{}, &binding{projectID: projectID, docs: docs})
}

// ProjectID returns the bound project id, or "" when unbound.
func ProjectID(ctx context.Context) string {
	if b := get(ctx); b != nil {
		return b.projectID
	}
	return ""
}

// ReadDocument returns the bound project's document as the engine should
// see it: the staged content if this turn already wrote, otherwise the
// stored content.
func ReadDocument(ctx context.Context) (string, error) {
	b := get(ctx)
	if b == nil {
		return "", ErrNoBinding
	}

	b.mu.Lock()
	staged := b.staged
	b.mu.Unlock()
	if staged != nil {
		return *staged, nil
	}

	return b.docs.Get(ctx, b.projectID)
}

// WriteDocument stages a full replacement of the bound project's
// document. Nothing reaches the store until the caller commits via
// Staged; repeat writes within one turn keep only the last content.
func WriteDocument(ctx context.Context, content string) error {
	b := get(ctx)
	if b == nil {
		return ErrNoBinding
	}

	b.mu.Lock()
	b.staged = &content
	b.mu.Unlock()
	return nil
}

// Staged returns the content written during this binding's lifetime and
// whether any write happened at all.
func Staged(ctx context.Context) (string, bool) {
	b := get(ctx)
	if b == nil {
		return "", false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.staged == nil {
		return "", false
	}
	return *b.staged, true
}

func get(ctx context.Context) *binding {
	b, ok := ctx.Value(bindingKey{}).(*binding)
	if !ok {
		return nil
	}
	return b
}
