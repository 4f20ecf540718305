// Package storage defines the sink interface the persistence adapter
// composes. A sink stores one encoded snapshot blob per identity; the three
// implementations (cache, localapi, remote) differ in durability and reach
// but share this contract.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Read when the sink holds no snapshot for the
// identity. Callers fall through to the next sink in the chain.
var ErrNotFound = errors.New("storage: no snapshot for identity")

// Sink reads and writes the encoded snapshot for an identity.
type Sink interface {
	// Name identifies the sink in log output ("cache", "localapi", "remote").
	Name() string

	// Read returns the stored snapshot blob, or ErrNotFound.
	Read(ctx context.Context, identity string) ([]byte, error)

	// Write stores the snapshot blob, replacing any previous one.
	Write(ctx context.Context, identity string, blob []byte) error
}

// Notifier is implemented by sinks that can report out-of-band changes made
// by other devices or processes.
type Notifier interface {
	// Subscribe returns a channel that receives a value whenever the sink's
	// record for the identity changes elsewhere. The channel closes when ctx
	// is done or the underlying connection drops.
	Subscribe(ctx context.Context, identity string) (<-chan struct{}, error)
}

// IsNotFound reports whether err means "no snapshot stored".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// AsNotifier attempts to cast a Sink to Notifier.
func AsNotifier(s Sink) (Notifier, bool) {
	n, ok := s.(Notifier)
	return n, ok
}
