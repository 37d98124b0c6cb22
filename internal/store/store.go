package store

import (
	"context"
)

// Well-known keys.
const (
	KeyTodoItems = "todo_items"
	KeyAuthToken = "auth_token"
	KeyAuthUser  = "auth_user"
	KeyTheme     = "app_theme"
)

// Store is a string key-value store. Implementations never report failures
// to the caller: a failed read looks like an absent key and a failed write
// is a no-op. Failures are logged.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	Remove(ctx context.Context, key string)

	Close() error
}
