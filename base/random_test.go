// Copyright 2020 gorse Project Authors
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

package base

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const randomEpsilon = 0.02

func TestRandomGenerator_Bernoulli(t *testing.T) {
	rng := NewRandomGenerator(0)
	hits := 0
	for i := 0; i < 100000; i++ {
		if rng.Bernoulli(0.3) {
			hits++
		}
	}
	assert.False(t, math.Abs(float64(hits)/100000-0.3) > randomEpsilon)
	// degenerate probabilities
	for i := 0; i < 1000; i++ {
		assert.False(t, rng.Bernoulli(0))
		assert.True(t, rng.Bernoulli(1))
	}
}

func TestRandomGenerator_UniformInt(t *testing.T) {
	rng := NewRandomGenerator(0)
	counts := make(map[int]int)
	for i := 0; i < 10000; i++ {
		v := rng.UniformInt(1, 5)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 5)
		counts[v]++
	}
	assert.Len(t, counts, 5)
}

func TestRandomGenerator_Seed(t *testing.T) {
	a := NewRandomGenerator(42)
	b := NewRandomGenerator(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.UniformInt(1, 5), b.UniformInt(1, 5))
	}
}
