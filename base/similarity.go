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

import "math"

// Pearson computes the Pearson correlation coefficient between a pair of rating vectors.
// Zero entries are absent ratings; only positions rated in both vectors are used.
// It returns 0 if the vectors share no rating or either side is constant.
func Pearson(a, b []int) float64 {
	var n, sumA, sumB, sumSqA, sumSqB, sumProd float64
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == 0 || b[i] == 0 {
			continue
		}
		x, y := float64(a[i]), float64(b[i])
		n++
		sumA += x
		sumB += y
		sumSqA += x * x
		sumSqB += y * y
		sumProd += x * y
	}
	if n == 0 {
		return 0
	}
	num := sumProd - sumA*sumB/n
	den := math.Sqrt((sumSqA - sumA*sumA/n) * (sumSqB - sumB*sumB/n))
	if den == 0 || math.IsNaN(den) {
		return 0
	}
	return num / den
}

// Mean returns the mean of non-zero entries, or 0 for an empty vector.
func Mean(a []int) float64 {
	sum, count := 0.0, 0.0
	for _, v := range a {
		if v != 0 {
			sum += float64(v)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / count
}
