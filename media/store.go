// Package media abstracts the hosted image store. The rest of the service
// only ever consumes the URL an upload yields.
package media

import (
	"context"
	"io"
)

// Store uploads a file to the media host and returns its public URL.
type Store interface {
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
}
