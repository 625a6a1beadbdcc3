// Copyright 2022 gorse Project Authors
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

package recommend

import (
	"context"
	"encoding/csv"
	"io"
	"slices"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/gorse-io/toyrec/base"
	"github.com/gorse-io/toyrec/base/log"
	"github.com/gorse-io/toyrec/base/parallel"
	"github.com/gorse-io/toyrec/base/progress"
	"github.com/gorse-io/toyrec/dataset"
	"github.com/gorse-io/toyrec/storage/blob"
	"github.com/juju/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	StageFitSimilarities  = "fit item similarities"
	StageLoadSimilarities = "load item similarities"
	StageSaveSimilarities = "save item similarities"
)

var similarityHeader = []string{"item1", "item2", "similarity"}

// ItemBased recommends items similar to those a user rated. Two items are similar if
// their ratings are positively correlated.
type ItemBased struct {
	matrix       *dataset.Matrix
	similarities []map[int]float64
	tracer       *progress.Tracer
}

func NewItemBased(m *dataset.Matrix) *ItemBased {
	return &ItemBased{matrix: m.ByItem(), tracer: progress.NewTracer("item-based")}
}

// Tracer returns the progress of fitting, loading and saving similarities.
func (r *ItemBased) Tracer() *progress.Tracer {
	return r.tracer
}

// Fit computes positive Pearson similarities between every pair of items.
func (r *ItemBased) Fit(ctx context.Context, jobs int) error {
	numItems := r.matrix.NumRows()
	_, span := r.tracer.Start(ctx, StageFitSimilarities, numItems)
	similarities := make([]map[int]float64, numItems)
	err := parallel.Parallel(ctx, numItems, jobs, func(_, i int) error {
		row := make(map[int]float64)
		for j := 0; j < numItems; j++ {
			if i == j {
				continue
			}
			if sim := base.Pearson(r.matrix.RowAt(i), r.matrix.RowAt(j)); sim > 0 {
				row[j] = sim
			}
		}
		similarities[i] = row
		span.Add(1)
		return nil
	})
	if err != nil {
		span.Fail(err)
		return errors.Trace(err)
	}
	span.End()
	r.similarities = similarities
	return nil
}

// Similarity returns the similarity between two items, or 0 if they are not similar.
func (r *ItemBased) Similarity(item1, item2 string) float64 {
	i, ok1 := r.matrix.RowIndex(item1)
	j, ok2 := r.matrix.RowIndex(item2)
	if !ok1 || !ok2 || r.similarities == nil {
		return 0
	}
	return r.similarities[i][j]
}

// WriteSimilarities writes similarities as CSV rows of item1,item2,similarity.
func (r *ItemBased) WriteSimilarities(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(similarityHeader); err != nil {
		return errors.Trace(err)
	}
	labels := r.matrix.RowLabels()
	for i, row := range r.similarities {
		neighbors := lo.Keys(row)
		slices.Sort(neighbors)
		for _, j := range neighbors {
			record := []string{labels[i], labels[j], strconv.FormatFloat(row[j], 'g', -1, 64)}
			if err := writer.Write(record); err != nil {
				return errors.Trace(err)
			}
		}
	}
	writer.Flush()
	return errors.Trace(writer.Error())
}

// ReadSimilarities replaces similarities by those read from CSV.
func (r *ItemBased) ReadSimilarities(rd io.Reader) error {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = len(similarityHeader)
	header, err := reader.Read()
	if err == io.EOF {
		return errors.NotValidf("empty similarity csv")
	} else if err != nil {
		return errors.Trace(err)
	}
	if !slices.Equal(header, similarityHeader) {
		return errors.NotValidf("similarity csv header %v", header)
	}
	similarities := make([]map[int]float64, r.matrix.NumRows())
	for i := range similarities {
		similarities[i] = make(map[int]float64)
	}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return errors.Trace(err)
		}
		i, ok := r.matrix.RowIndex(record[0])
		if !ok {
			return errors.NotValidf("item %q in similarity csv", record[0])
		}
		j, ok := r.matrix.RowIndex(record[1])
		if !ok {
			return errors.NotValidf("item %q in similarity csv", record[1])
		}
		sim, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return errors.NotValidf("similarity %q", record[2])
		}
		similarities[i][j] = sim
	}
	r.similarities = similarities
	return nil
}

// LoadSimilarities reads the similarity cache from the store. If the cache does not
// exist, similarities are fitted and saved to it.
func (r *ItemBased) LoadSimilarities(ctx context.Context, store blob.Store, name string, jobs int) error {
	exists, err := blob.Exists(store, name)
	if err != nil {
		return errors.Trace(err)
	}
	if exists {
		_, span := r.tracer.Start(ctx, StageLoadSimilarities, 1)
		if err = r.readCache(store, name); err != nil {
			span.Fail(err)
			return errors.Trace(err)
		}
		span.End()
		log.Logger().Info("load item similarities from cache", zap.String("name", name))
		return nil
	}

	if err = r.Fit(ctx, jobs); err != nil {
		return errors.Trace(err)
	}
	_, span := r.tracer.Start(ctx, StageSaveSimilarities, 1)
	if err = r.writeCache(store, name); err != nil {
		span.Fail(err)
		return errors.Trace(err)
	}
	span.End()
	log.Logger().Info("save item similarities to cache", zap.String("name", name))
	return nil
}

func (r *ItemBased) readCache(store blob.Store, name string) error {
	f, err := store.Open(name)
	if err != nil {
		return errors.Trace(err)
	}
	defer f.Close()
	return errors.Trace(r.ReadSimilarities(f))
}

func (r *ItemBased) writeCache(store blob.Store, name string) error {
	w, done, err := store.Create(name)
	if err != nil {
		return errors.Trace(err)
	}
	if err = r.WriteSimilarities(w); err != nil {
		return errors.Trace(blob.Abort(w, err))
	}
	if err = w.Close(); err != nil {
		return errors.Trace(err)
	}
	<-done
	return nil
}

// Recommend predicts ratings of items the user has not rated and returns the top n.
// Similarities are fitted on first use if they were neither fitted nor loaded.
func (r *ItemBased) Recommend(user string, n int) ([]Score, error) {
	ratings, ok := r.matrix.Column(user)
	if !ok {
		return nil, errors.NotFoundf("user %s", user)
	}
	if r.similarities == nil {
		if err := r.Fit(context.Background(), 1); err != nil {
			return nil, errors.Trace(err)
		}
	}
	rated := mapset.NewThreadUnsafeSet[int]()
	for i, rating := range ratings {
		if rating != dataset.Missing {
			rated.Add(i)
		}
	}
	mean := base.Mean(ratings)
	scores := make(map[int]float64)
	totals := make(map[int]float64)
	for i, rating := range ratings {
		if rating == dataset.Missing {
			continue
		}
		for j, sim := range r.similarities[i] {
			if rated.Contains(j) {
				continue
			}
			scores[j] += (float64(rating) - mean) * sim
			totals[j] += sim
		}
	}
	labels := r.matrix.RowLabels()
	predictions := make(map[string]float64)
	for j, score := range scores {
		if totals[j] > 0 {
			predictions[labels[j]] = mean + score/totals[j]
		}
	}
	return Top(predictions, n), nil
}
