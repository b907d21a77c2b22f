// Package store persists the prompt library.
package store

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")
)

// PromptStoreIface exposes all prompt library operations.
// Handlers never query the DB directly; all access goes through this interface.
type PromptStoreIface interface {
	List(ctx context.Context, opts ListOptions) ([]*Prompt, error)
	Count(ctx context.Context) (int, error)
	GetByID(ctx context.Context, id string) (*Prompt, error)
	GetByName(ctx context.Context, name string) (*Prompt, error)
	Create(ctx context.Context, name, content string) (*Prompt, error)
	Rename(ctx context.Context, id, name string) (*Prompt, error)
	UpdateContent(ctx context.Context, id, content string) (*Prompt, error)
	Delete(ctx context.Context, id string) error
	Upsert(ctx context.Context, name, content string) (*Prompt, error)
}

// isUniqueConstraintError checks whether err indicates a unique constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // SQLite & PostgreSQL
		strings.Contains(msg, "duplicate key") || // PostgreSQL
		strings.Contains(msg, "duplicate entry") // MySQL
}
