// Package session provides durable storage for the client's session identity.
package session

import (
	"context"
	"errors"
)

// Keys under which the identity fields are stored.
const (
	KeyToken  = "token"
	KeyUserID = "user_id"
	KeyEmail  = "email"
)

// Common errors for session store operations.
var (
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrInvalidStoreType = errors.New("invalid store type")
	ErrNoToken          = errors.New("no session token stored")
)

// Store is a key/value holder for the session identity fields. The file and
// redis drivers survive process restarts. A missing key is not an error: Get
// returns the empty string.
//
// The identity manager is the only writer; the transport reads the token to
// attach credentials to outgoing requests.
type Store interface {
	// Get returns the value stored at key, or "" if nothing is stored there
	Get(ctx context.Context, key string) (string, error)
	// Set stores a value at key
	Set(ctx context.Context, key string, value string) error
	// Remove deletes the value stored at key, if any
	Remove(ctx context.Context, key string) error
	// Close closes the store and releases any resources
	Close() error
}
