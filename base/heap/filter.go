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

package heap

import (
	"container/heap"
)

type _heap[T any] struct {
	elems []T
	less  func(a, b T) bool
}

func (e *_heap[T]) Len() int {
	return len(e.elems)
}

func (e *_heap[T]) Less(i, j int) bool {
	return e.less(e.elems[i], e.elems[j])
}

func (e *_heap[T]) Swap(i, j int) {
	e.elems[i], e.elems[j] = e.elems[j], e.elems[i]
}

func (e *_heap[T]) Push(x interface{}) {
	e.elems = append(e.elems, x.(T))
}

func (e *_heap[T]) Pop() interface{} {
	old := e.elems
	item := old[len(old)-1]
	e.elems = old[0 : len(old)-1]
	return item
}

// TopKFilter keeps the k greatest elements under less. A non-positive k keeps all.
type TopKFilter[T any] struct {
	_heap[T]
	k int
}

// NewTopKFilter creates a top k filter.
func NewTopKFilter[T any](k int, less func(a, b T) bool) *TopKFilter[T] {
	return &TopKFilter[T]{_heap: _heap[T]{less: less}, k: k}
}

// Push pushes the element x onto the heap.
// The complexity is O(log n) where n = h.Count().
func (filter *TopKFilter[T]) Push(item T) {
	heap.Push(&filter._heap, item)
	if filter.k > 0 && filter.Len() > filter.k {
		heap.Pop(&filter._heap)
	}
}

// PopAll pops all items in the filter with decreasing order.
func (filter *TopKFilter[T]) PopAll() []T {
	items := make([]T, filter.Len())
	for i := len(items) - 1; i >= 0; i-- {
		items[i] = heap.Pop(&filter._heap).(T)
	}
	return items
}
