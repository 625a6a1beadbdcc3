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
	"os"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gorse-io/toyrec/config"
	"github.com/juju/errors"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GCS struct {
	client  *storage.Client
	bucket  string
	prefix  string
	timeout time.Duration
}

func NewGCS(cfg config.GCSConfig, timeout time.Duration) (*GCS, error) {
	var opts []option.ClientOption
	if endpoint := os.Getenv("GCS_EMULATOR_ENDPOINT"); endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
		opts = append(opts, option.WithoutAuthentication())
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return &GCS{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  strings.Trim(cfg.Prefix, "/"),
		timeout: timeout,
	}, nil
}

func (g *GCS) Open(name string) (io.ReadCloser, error) {
	r, err := g.client.Bucket(g.bucket).Object(path.Join(g.prefix, name)).NewReader(context.Background())
	if err != nil {
		return nil, errors.Trace(err)
	}
	return r, nil
}

func (g *GCS) Create(name string) (io.WriteCloser, chan struct{}, error) {
	ctx, cancel := withTimeout(g.timeout)
	wc := g.client.Bucket(g.bucket).Object(path.Join(g.prefix, name)).NewWriter(ctx)
	wc.ContentType = "text/csv"
	done := make(chan struct{})
	return &gcsWriter{Writer: wc, done: done, cancel: cancel}, done, nil
}

type gcsWriter struct {
	*storage.Writer
	done   chan struct{}
	cancel context.CancelFunc
}

// Close finalizes the object. The upload is committed by Close, not by Write.
func (w *gcsWriter) Close() error {
	defer w.cancel()
	err := w.Writer.Close()
	close(w.done)
	return errors.Trace(err)
}

// CloseWithError cancels the upload so the object is not created.
func (w *gcsWriter) CloseWithError(cause error) error {
	w.cancel()
	_ = w.Writer.Close()
	close(w.done)
	return errors.Trace(cause)
}

func (g *GCS) List() ([]string, error) {
	ctx, cancel := withTimeout(g.timeout)
	defer cancel()
	var names []string
	it := g.client.Bucket(g.bucket).Objects(ctx, &storage.Query{
		Prefix: listPrefix(g.prefix),
	})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Trace(err)
		}
		if name, ok := relativeName(g.prefix, attrs.Name); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

func (g *GCS) Remove(name string) error {
	ctx, cancel := withTimeout(g.timeout)
	defer cancel()
	return errors.Trace(g.client.Bucket(g.bucket).Object(path.Join(g.prefix, name)).Delete(ctx))
}
