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

package generator

import (
	"context"
	"io"

	"github.com/gorse-io/toyrec/base"
	"github.com/gorse-io/toyrec/base/log"
	"github.com/gorse-io/toyrec/base/progress"
	"github.com/gorse-io/toyrec/config"
	"github.com/gorse-io/toyrec/dataset"
	"github.com/gorse-io/toyrec/storage/blob"
	"github.com/juju/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

const (
	tracerName = "generator"

	StageGenerate      = "generate ratings"
	StageWriteItemFile = "write item-based file"
	StageWriteUserFile = "write user-based file"
)

// Generator renders one random rating matrix into an item-based and a user-based file.
type Generator struct {
	// ShowProgress draws a terminal progress bar while files are written.
	ShowProgress bool

	config config.DatasetConfig
	store  blob.Store
	rng    base.RandomGenerator
	tracer *progress.Tracer
}

type Result struct {
	Matrix        *dataset.Matrix
	ItemBasedFile string
	UserBasedFile string
	Progress      []progress.Progress
}

func New(cfg *config.Config, store blob.Store, rng base.RandomGenerator) *Generator {
	return &Generator{
		config: cfg.Dataset,
		store:  store,
		rng:    rng,
		tracer: progress.NewTracer(tracerName),
	}
}

// Tracer returns the progress of stages.
func (g *Generator) Tracer() *progress.Tracer {
	return g.tracer
}

// Run generates the matrix once, writes it to the item-based file and writes its
// transpose to the user-based file.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		ItemBasedFile: g.config.ItemBasedFile,
		UserBasedFile: g.config.UserBasedFile,
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}

	// generate ratings
	log.Logger().Info("start generating ratings",
		zap.Int("num_items", g.config.NumItems),
		zap.Int("num_users", g.config.NumUsers),
		zap.Float64("missing_rate", g.config.MissingRate))
	_, span := g.tracer.Start(ctx, StageGenerate, g.config.NumItems*g.config.NumUsers)
	matrix := dataset.Generate(g.rng, g.config.NumItems, g.config.NumUsers, g.config.MissingRate,
		g.config.ItemPrefix, g.config.UserPrefix)
	span.End()
	result.Matrix = matrix
	result.Progress = append(result.Progress, span.Progress(tracerName))
	emptyItems, emptyUsers := matrix.CountEmpty()
	if emptyItems > 0 || emptyUsers > 0 {
		log.Logger().Warn("some items or users have no rating",
			zap.Int("empty_items", emptyItems),
			zap.Int("empty_users", emptyUsers))
	}
	log.Logger().Info("complete generating ratings",
		zap.Int("num_ratings", matrix.NumRows()*matrix.NumColumns()-matrix.CountMissing()))

	// write item-based file
	if err := ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	p, err := g.write(ctx, StageWriteItemFile, g.config.ItemBasedFile, matrix)
	result.Progress = append(result.Progress, p)
	if err != nil {
		return nil, errors.Trace(err)
	}

	// write user-based file
	if err = ctx.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	p, err = g.write(ctx, StageWriteUserFile, g.config.UserBasedFile, matrix.Transpose())
	result.Progress = append(result.Progress, p)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return result, nil
}

func (g *Generator) write(ctx context.Context, stage, name string, matrix *dataset.Matrix) (progress.Progress, error) {
	log.Logger().Info("start writing file", zap.String("name", name), zap.String("kind", matrix.Kind()))
	_, span := g.tracer.Start(ctx, stage, matrix.NumRows())
	if err := g.writeFile(name, matrix); err != nil {
		log.Logger().Error("failed to write file", zap.String("name", name), zap.Error(err))
		span.Fail(err)
		return span.Progress(tracerName), errors.Trace(err)
	}
	span.End()
	log.Logger().Info("complete writing file", zap.String("name", name),
		zap.Int("num_rows", matrix.NumRows()), zap.Int("num_columns", matrix.NumColumns()))
	return span.Progress(tracerName), nil
}

func (g *Generator) writeFile(name string, matrix *dataset.Matrix) error {
	w, done, err := g.store.Create(name)
	if err != nil {
		return errors.Trace(err)
	}
	var out io.Writer = w
	if g.ShowProgress {
		bar := progressbar.DefaultBytes(-1, name)
		defer func() { _ = bar.Finish() }()
		out = io.MultiWriter(w, bar)
	}
	if err = matrix.WriteCSV(out); err != nil {
		return errors.Trace(blob.Abort(w, err))
	}
	if err = w.Close(); err != nil {
		return errors.Trace(err)
	}
	<-done
	return nil
}
