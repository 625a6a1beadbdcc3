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
	"github.com/gorse-io/toyrec/base"
	"github.com/gorse-io/toyrec/dataset"
	"github.com/juju/errors"
)

// UserBased recommends items rated by users whose ratings are positively correlated
// with the target user.
type UserBased struct {
	matrix *dataset.Matrix
}

func NewUserBased(m *dataset.Matrix) *UserBased {
	return &UserBased{matrix: m.ByUser()}
}

// Recommend predicts ratings of items the user has not rated and returns the top n.
func (r *UserBased) Recommend(user string, n int) ([]Score, error) {
	u, ok := r.matrix.RowIndex(user)
	if !ok {
		return nil, errors.NotFoundf("user %s", user)
	}
	target := r.matrix.RowAt(u)
	mean := base.Mean(target)
	totals := make(map[int]float64)
	simSums := make(map[int]float64)
	for v := 0; v < r.matrix.NumRows(); v++ {
		if v == u {
			continue
		}
		other := r.matrix.RowAt(v)
		sim := base.Pearson(target, other)
		if sim <= 0 {
			continue
		}
		otherMean := base.Mean(other)
		for j, rating := range other {
			// only items the neighbor rated and the target did not
			if rating == dataset.Missing || target[j] != dataset.Missing {
				continue
			}
			totals[j] += (float64(rating) - otherMean) * sim
			simSums[j] += sim
		}
	}
	labels := r.matrix.ColumnLabels()
	predictions := make(map[string]float64)
	for j, total := range totals {
		if simSums[j] > 0 {
			predictions[labels[j]] = mean + total/simSums[j]
		}
	}
	return Top(predictions, n), nil
}
