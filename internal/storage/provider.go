// Package storage defines the key-value persistence boundary for the mood log.
package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// ErrNotExist is returned by Get when no value is stored under the key.
var ErrNotExist = errors.New("storage: key does not exist")

var keyRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Provider is the interface for key-value persistence.
type Provider interface {
	// Get returns the value stored under key, or ErrNotExist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Close releases the provider's resources.
	Close() error
}

func validateKey(key string) error {
	if !keyRe.MatchString(key) {
		return fmt.Errorf("storage: invalid key %q", key)
	}
	return nil
}
