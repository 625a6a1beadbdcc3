// Copyright 2025 gorse Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package blob

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/gorse-io/toyrec/config"
	"github.com/juju/errors"
	"github.com/samber/lo"
)

// Store is a flat namespace of files. Names may contain slashes.
type Store interface {
	// Open a file for reading.
	Open(name string) (io.ReadCloser, error)
	// Create a file for writing. The done channel is closed once the content has been
	// persisted, which is no later than the return of Close on the writer.
	Create(name string) (io.WriteCloser, chan struct{}, error)
	// List names of all files.
	List() ([]string, error)
	// Remove a file.
	Remove(name string) error
}

// Open creates the store selected by the storage configuration.
func Open(cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case config.StoragePOSIX, "":
		return NewPOSIX(cfg.OutputDir), nil
	case config.StorageS3:
		return NewS3(cfg.S3, cfg.Timeout)
	case config.StorageGCS:
		return NewGCS(cfg.GCS, cfg.Timeout)
	case config.StorageAzure:
		return NewAzureBlob(cfg.Azure, cfg.Timeout)
	}
	return nil, errors.NotSupportedf("storage type %q", cfg.Type)
}

// Exists reports whether a file is present in the store.
func Exists(store Store, name string) (bool, error) {
	names, err := store.List()
	if err != nil {
		return false, errors.Trace(err)
	}
	return lo.Contains(names, name), nil
}

// Abort closes a writer after a failed write and returns cause, or the upload error if
// the upload failed first. Remote stores discard the upload instead of committing the
// partial content. Local files are left as written.
func Abort(w io.WriteCloser, cause error) error {
	if a, ok := w.(interface{ CloseWithError(error) error }); ok {
		return a.CloseWithError(cause)
	}
	_ = w.Close()
	return errors.Trace(cause)
}

// listPrefix returns the key prefix of a store rooted at prefix. It ends with a slash
// so that listing "data" does not match "database/".
func listPrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// relativeName strips the store prefix from an object key. It reports false for keys
// outside the prefix and for the prefix itself.
func relativeName(prefix, key string) (string, bool) {
	name, ok := strings.CutPrefix(key, listPrefix(prefix))
	return name, ok && name != ""
}

func withTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), timeout)
}

// pipeWriter streams writes to an upload goroutine. Close returns the upload error.
type pipeWriter struct {
	*io.PipeWriter
	done chan struct{}
	err  error
}

// newPipeWriter starts upload in the background, reading from the returned writer.
func newPipeWriter(upload func(r io.Reader) error) *pipeWriter {
	pr, pw := io.Pipe()
	w := &pipeWriter{PipeWriter: pw, done: make(chan struct{})}
	go func() {
		defer close(w.done)
		w.err = upload(pr)
		// unblock writers if the upload stopped early
		_ = pr.CloseWithError(w.err)
	}()
	return w
}

// CloseWithError fails the upload with cause and waits for it to stop.
func (w *pipeWriter) CloseWithError(cause error) error {
	_ = w.PipeWriter.CloseWithError(cause)
	<-w.done
	if w.err != nil {
		return errors.Trace(w.err)
	}
	return errors.Trace(cause)
}

func (w *pipeWriter) Close() error {
	if err := w.PipeWriter.Close(); err != nil {
		return errors.Trace(err)
	}
	<-w.done
	return errors.Trace(w.err)
}
