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

package dataset

// Index maps labels to dense positions in insertion order.
type Index struct {
	si map[string]int
	is []string
}

func NewIndex() *Index {
	return &Index{si: map[string]int{}}
}

// NewIndexFrom builds an index from labels. It returns the first duplicated label, if any.
func NewIndexFrom(labels []string) (*Index, string, bool) {
	idx := NewIndex()
	for _, label := range labels {
		if _, added := idx.Add(label); !added {
			return nil, label, false
		}
	}
	return idx, "", true
}

func (d *Index) Len() int {
	return len(d.is)
}

// Add appends a label. It returns the existing position and false if the label is present.
func (d *Index) Add(s string) (int, bool) {
	if y, ok := d.si[s]; ok {
		return y, false
	}
	y := len(d.is)
	d.si[s] = y
	d.is = append(d.is, s)
	return y, true
}

func (d *Index) Id(s string) (int, bool) {
	y, ok := d.si[s]
	return y, ok
}

func (d *Index) String(id int) (string, bool) {
	if id < 0 || id >= len(d.is) {
		return "", false
	}
	return d.is[id], true
}

// Labels returns all labels in order. The slice must not be modified.
func (d *Index) Labels() []string {
	return d.is
}
