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
	"math/rand"
	"time"
)

// RandomGenerator is the random generator for toyrec.
type RandomGenerator struct {
	*rand.Rand
}

// NewRandomGenerator creates a RandomGenerator.
func NewRandomGenerator(seed int64) RandomGenerator {
	return RandomGenerator{rand.New(rand.NewSource(seed))}
}

// NewTimeSeededGenerator creates a RandomGenerator seeded from the wall clock.
func NewTimeSeededGenerator() RandomGenerator {
	return NewRandomGenerator(time.Now().UnixNano())
}

// Bernoulli returns true with probability p.
func (rng RandomGenerator) Bernoulli(p float64) bool {
	return rng.Float64() < p
}

// UniformInt returns a uniform integer in [low, high].
func (rng RandomGenerator) UniformInt(low, high int) int {
	return low + rng.Intn(high-low+1)
}
