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
	"encoding/csv"
	"io"
	"strconv"

	"github.com/juju/errors"
)

// WriteCSV writes the header "<kind>,<column labels...>" followed by one line per row.
// Missing ratings are empty fields.
func (m *Matrix) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	header := make([]string, 0, m.NumColumns()+1)
	header = append(header, m.kind)
	header = append(header, m.ColumnLabels()...)
	if err := writer.Write(header); err != nil {
		return errors.Trace(err)
	}
	record := make([]string, m.NumColumns()+1)
	for i, label := range m.RowLabels() {
		record[0] = label
		for j, v := range m.values[i] {
			if v == Missing {
				record[j+1] = ""
			} else {
				record[j+1] = strconv.Itoa(v)
			}
		}
		if err := writer.Write(record); err != nil {
			return errors.Trace(err)
		}
	}
	writer.Flush()
	return errors.Trace(writer.Error())
}

// ReadCSV parses a matrix written by WriteCSV. The kind is taken from the first header column.
func ReadCSV(r io.Reader) (*Matrix, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true
	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NotValidf("csv without header")
	} else if err != nil {
		return nil, errors.Trace(err)
	}
	kind := header[0]
	if kind != KindItem && kind != KindUser {
		return nil, errors.NotValidf("first header column %q", kind)
	}
	columns, dup, ok := NewIndexFrom(append([]string(nil), header[1:]...))
	if !ok {
		return nil, errors.NotValidf("duplicated header %q", dup)
	}
	m := &Matrix{kind: kind, rows: NewIndex(), columns: columns, values: make([][]int, 0)}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, errors.Trace(err)
		}
		line, _ := reader.FieldPos(0)
		if len(record) != columns.Len()+1 {
			return nil, errors.NotValidf("line %d has %d fields while header has %d", line, len(record), columns.Len()+1)
		}
		if _, added := m.rows.Add(record[0]); !added {
			return nil, errors.NotValidf("duplicated %s %q at line %d", kind, record[0], line)
		}
		row := make([]int, columns.Len())
		for j, field := range record[1:] {
			if field == "" {
				row[j] = Missing
				continue
			}
			rating, err := strconv.Atoi(field)
			if err != nil || rating < MinRating || rating > MaxRating {
				return nil, errors.NotValidf("rating %q at line %d", field, line)
			}
			row[j] = rating
		}
		m.values = append(m.values, row)
	}
	return m, nil
}
