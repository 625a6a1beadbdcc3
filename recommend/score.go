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
	"github.com/gorse-io/toyrec/base/heap"
	"github.com/gorse-io/toyrec/dataset"
)

// Score is a recommended id with its predicted rating.
type Score struct {
	Id    string
	Score float64
}

// lessScore orders by score, then by descending id so that smaller ids rank first.
func lessScore(a, b Score) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.Id > b.Id
}

// Top returns the n best scores in descending order. A non-positive n returns all.
func Top(scores map[string]float64, n int) []Score {
	filter := heap.NewTopKFilter(n, lessScore)
	for id, score := range scores {
		filter.Push(Score{Id: id, Score: score})
	}
	return filter.PopAll()
}

// Popular ranks items by their mean rating. Items without any rating are left out.
func Popular(m *dataset.Matrix, n int) []Score {
	m = m.ByItem()
	scores := make(map[string]float64)
	for i, label := range m.RowLabels() {
		sum, count := 0, 0
		for _, rating := range m.RowAt(i) {
			if rating != dataset.Missing {
				sum += rating
				count++
			}
		}
		if count > 0 {
			scores[label] = float64(sum) / float64(count)
		}
	}
	return Top(scores, n)
}
