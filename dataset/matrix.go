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

package dataset

import (
	"fmt"

	"github.com/gorse-io/toyrec/base"
	"github.com/juju/errors"
)

const (
	// Missing marks a cell without rating.
	Missing = 0

	MinRating = 1
	MaxRating = 5
)

const (
	KindItem = "item"
	KindUser = "user"
)

// Matrix is a dense rating table. Rows are items and columns users when the kind is
// KindItem, and the other way round when the kind is KindUser.
type Matrix struct {
	kind    string
	rows    *Index
	columns *Index
	values  [][]int
}

// NewMatrix creates a matrix with every cell missing.
func NewMatrix(kind string, rowLabels, columnLabels []string) (*Matrix, error) {
	if kind != KindItem && kind != KindUser {
		return nil, errors.NotValidf("matrix kind %q", kind)
	}
	rows, dup, ok := NewIndexFrom(rowLabels)
	if !ok {
		return nil, errors.NotValidf("duplicated %s %q", kind, dup)
	}
	columns, dup, ok := NewIndexFrom(columnLabels)
	if !ok {
		return nil, errors.NotValidf("duplicated %s %q", otherKind(kind), dup)
	}
	values := make([][]int, len(rowLabels))
	for i := range values {
		values[i] = make([]int, len(columnLabels))
	}
	return &Matrix{kind: kind, rows: rows, columns: columns, values: values}, nil
}

// Labels returns "<prefix>_1" to "<prefix>_n".
func Labels(prefix string, n int) []string {
	labels := make([]string, n)
	for i := range labels {
		labels[i] = fmt.Sprintf("%s_%d", prefix, i+1)
	}
	return labels
}

// Generate creates an item-major matrix of numItems × numUsers random ratings. Each cell is
// missing with probability missingRate, otherwise a uniform rating in [MinRating, MaxRating].
func Generate(rng base.RandomGenerator, numItems, numUsers int, missingRate float64, itemPrefix, userPrefix string) *Matrix {
	m := &Matrix{
		kind:    KindItem,
		rows:    NewIndex(),
		columns: NewIndex(),
		values:  make([][]int, numItems),
	}
	for _, label := range Labels(itemPrefix, numItems) {
		m.rows.Add(label)
	}
	for _, label := range Labels(userPrefix, numUsers) {
		m.columns.Add(label)
	}
	for i := range m.values {
		row := make([]int, numUsers)
		for j := range row {
			if rng.Bernoulli(missingRate) {
				row[j] = Missing
			} else {
				row[j] = rng.UniformInt(MinRating, MaxRating)
			}
		}
		m.values[i] = row
	}
	return m
}

func otherKind(kind string) string {
	if kind == KindItem {
		return KindUser
	}
	return KindItem
}

// Kind is the entity of rows, also the name of the first header column.
func (m *Matrix) Kind() string {
	return m.kind
}

// ColumnKind is the entity of columns.
func (m *Matrix) ColumnKind() string {
	return otherKind(m.kind)
}

func (m *Matrix) NumRows() int {
	return m.rows.Len()
}

func (m *Matrix) NumColumns() int {
	return m.columns.Len()
}

func (m *Matrix) RowLabels() []string {
	return m.rows.Labels()
}

func (m *Matrix) ColumnLabels() []string {
	return m.columns.Labels()
}

func (m *Matrix) RowIndex(label string) (int, bool) {
	return m.rows.Id(label)
}

func (m *Matrix) ColumnIndex(label string) (int, bool) {
	return m.columns.Id(label)
}

func (m *Matrix) Get(i, j int) int {
	return m.values[i][j]
}

func (m *Matrix) Set(i, j, rating int) {
	m.values[i][j] = rating
}

// RowAt returns the i-th row. The slice is shared with the matrix.
func (m *Matrix) RowAt(i int) []int {
	return m.values[i]
}

// Row returns the ratings of a row label. The slice is shared with the matrix.
func (m *Matrix) Row(label string) ([]int, bool) {
	i, ok := m.rows.Id(label)
	if !ok {
		return nil, false
	}
	return m.values[i], true
}

// Column returns a copy of the ratings of a column label.
func (m *Matrix) Column(label string) ([]int, bool) {
	j, ok := m.columns.Id(label)
	if !ok {
		return nil, false
	}
	column := make([]int, m.NumRows())
	for i := range column {
		column[i] = m.values[i][j]
	}
	return column, true
}

// Transpose returns a copy with rows and columns swapped.
func (m *Matrix) Transpose() *Matrix {
	t := &Matrix{
		kind:    otherKind(m.kind),
		rows:    m.columns,
		columns: m.rows,
		values:  make([][]int, m.NumColumns()),
	}
	for j := range t.values {
		row := make([]int, m.NumRows())
		for i := range row {
			row[i] = m.values[i][j]
		}
		t.values[j] = row
	}
	return t
}

// ByItem returns the matrix with items as rows.
func (m *Matrix) ByItem() *Matrix {
	if m.kind == KindItem {
		return m
	}
	return m.Transpose()
}

// ByUser returns the matrix with users as rows.
func (m *Matrix) ByUser() *Matrix {
	if m.kind == KindUser {
		return m
	}
	return m.Transpose()
}

// CountMissing returns the number of cells without rating.
func (m *Matrix) CountMissing() int {
	count := 0
	for _, row := range m.values {
		for _, v := range row {
			if v == Missing {
				count++
			}
		}
	}
	return count
}

// CountEmpty returns the number of rows and columns that hold no rating at all.
func (m *Matrix) CountEmpty() (rows, columns int) {
	rated := make([]bool, m.NumColumns())
	for _, row := range m.values {
		empty := true
		for j, v := range row {
			if v != Missing {
				empty = false
				rated[j] = true
			}
		}
		if empty {
			rows++
		}
	}
	for _, r := range rated {
		if !r {
			columns++
		}
	}
	return
}
