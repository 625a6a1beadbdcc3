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
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/gorse-io/toyrec/base"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
)

func readRecords(t *testing.T, data []byte) [][]string {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	assert.NoError(t, err)
	return records
}

func TestWriteCSV(t *testing.T) {
	m, err := NewMatrix(KindItem, []string{"Item_1", "Item_2"}, []string{"User_1", "User_2", "User_3"})
	assert.NoError(t, err)
	m.Set(0, 0, 5)
	m.Set(0, 2, 3)
	m.Set(1, 1, 1)
	var buf bytes.Buffer
	assert.NoError(t, m.WriteCSV(&buf))
	assert.Equal(t, "item,User_1,User_2,User_3\nItem_1,5,,3\nItem_2,,1,\n", buf.String())

	buf.Reset()
	assert.NoError(t, m.Transpose().WriteCSV(&buf))
	assert.Equal(t, "user,Item_1,Item_2\nUser_1,5,\nUser_2,,1\nUser_3,3,\n", buf.String())
}

func TestWriteCSVShape(t *testing.T) {
	m := Generate(base.NewRandomGenerator(0), 2, 3, 0, "Item", "User")
	var itemBuf, userBuf bytes.Buffer
	assert.NoError(t, m.WriteCSV(&itemBuf))
	assert.NoError(t, m.Transpose().WriteCSV(&userBuf))

	itemRecords := readRecords(t, itemBuf.Bytes())
	userRecords := readRecords(t, userBuf.Bytes())
	assert.Len(t, itemRecords, 3)
	assert.Len(t, userRecords, 4)
	assert.Equal(t, []string{"item", "User_1", "User_2", "User_3"}, itemRecords[0])
	assert.Equal(t, []string{"user", "Item_1", "Item_2"}, userRecords[0])
	for _, record := range itemRecords[1:] {
		assert.Len(t, record, 4)
		for _, field := range record[1:] {
			assert.Contains(t, []string{"1", "2", "3", "4", "5"}, field)
		}
	}
	for _, record := range userRecords[1:] {
		assert.Len(t, record, 3)
		for _, field := range record[1:] {
			assert.Contains(t, []string{"1", "2", "3", "4", "5"}, field)
		}
	}
	// (user 1, item 2) in the user file equals (item 2, user 1) in the item file
	assert.Equal(t, itemRecords[2][1], userRecords[1][2])
	for i := 1; i <= 2; i++ {
		for j := 1; j <= 3; j++ {
			assert.Equal(t, itemRecords[i][j], userRecords[j][i])
		}
	}
}

func TestWriteCSVAllMissing(t *testing.T) {
	m := Generate(base.NewRandomGenerator(0), 4, 6, 1, "Item", "User")
	for _, matrix := range []*Matrix{m, m.Transpose()} {
		var buf bytes.Buffer
		assert.NoError(t, matrix.WriteCSV(&buf))
		for _, record := range readRecords(t, buf.Bytes())[1:] {
			for _, field := range record[1:] {
				assert.Empty(t, field)
			}
		}
	}
}

func TestReadCSV(t *testing.T) {
	m := Generate(base.NewRandomGenerator(3), 13, 21, 0.4, "Item", "User")
	for _, expected := range []*Matrix{m, m.Transpose()} {
		var buf bytes.Buffer
		assert.NoError(t, expected.WriteCSV(&buf))
		actual, err := ReadCSV(&buf)
		assert.NoError(t, err)
		assert.Equal(t, expected.Kind(), actual.Kind())
		assert.Equal(t, expected.RowLabels(), actual.RowLabels())
		assert.Equal(t, expected.ColumnLabels(), actual.ColumnLabels())
		for i := 0; i < expected.NumRows(); i++ {
			assert.Equal(t, expected.RowAt(i), actual.RowAt(i))
		}
	}
}

func TestReadCSVHeaderOnly(t *testing.T) {
	m, err := ReadCSV(strings.NewReader("user,Item_1,Item_2\n"))
	assert.NoError(t, err)
	assert.Equal(t, KindUser, m.Kind())
	assert.Equal(t, 0, m.NumRows())
	assert.Equal(t, 2, m.NumColumns())
}

func TestReadCSVInvalid(t *testing.T) {
	for name, text := range map[string]string{
		"empty":            "",
		"unknown kind":     "movie,User_1\nItem_1,1\n",
		"duplicate header": "item,User_1,User_1\nItem_1,1,2\n",
		"short row":        "item,User_1,User_2\nItem_1,1\n",
		"long row":         "item,User_1\nItem_1,1,2\n",
		"duplicate row":    "item,User_1\nItem_1,1\nItem_1,2\n",
		"not a number":     "item,User_1\nItem_1,good\n",
		"out of range":     "item,User_1\nItem_1,6\n",
	} {
		_, err := ReadCSV(strings.NewReader(text))
		assert.True(t, errors.Is(err, errors.NotValid), "%s: %v", name, err)
	}
}
