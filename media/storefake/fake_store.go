package fakestore

import (
	"context"
	"fmt"
	"io"
	"sync"

	apperrors "github.com/vidstream/go-video-backend/internal/errors"
	"github.com/vidstream/go-video-backend/media"
)

var _ media.Store = (*FakeStore)(nil)

// FakeStore is an in-memory media.Store for tests.
type FakeStore struct {
	lock    sync.Mutex
	Uploads []string // names in upload order
	Fail    bool     // when set, Upload reports an upstream failure
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (f *FakeStore) Upload(_ context.Context, name string, r io.Reader) (string, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.Fail {
		return "", apperrors.ErrMediaUpload
	}
	if _, err := io.ReadAll(r); err != nil {
		return "", apperrors.Wrapf(apperrors.ErrMediaUpload, "%v", err)
	}

	f.Uploads = append(f.Uploads, name)
	return fmt.Sprintf("https://media.test/%d/%s", len(f.Uploads), name), nil
}
