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

package blob

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPOSIX(t *testing.T) {
	// create client
	client := NewPOSIX(filepath.Join(t.TempDir(), "blob"))

	// list before the directory exists
	names, err := client.List()
	assert.NoError(t, err)
	assert.Empty(t, names)

	// write a temp file
	w, done, err := client.Create("test")
	assert.NoError(t, err)
	_, err = w.Write([]byte("hello world"))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	<-done

	// read the file
	r, err := client.Open("test")
	assert.NoError(t, err)
	content, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, "hello world", string(content))
	assert.NoError(t, r.Close())

	// overwrite truncates
	w, done, err = client.Create("test")
	assert.NoError(t, err)
	_, err = w.Write([]byte("bye"))
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	<-done
	content, err = os.ReadFile(filepath.Join(client.Dir(), "test"))
	assert.NoError(t, err)
	assert.Equal(t, "bye", string(content))

	// nested names
	w, _, err = client.Create("cache/nested.csv")
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	names, err = client.List()
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"test", "cache/nested.csv"}, names)

	exist, err := Exists(client, "cache/nested.csv")
	assert.NoError(t, err)
	assert.True(t, exist)

	// remove
	assert.NoError(t, client.Remove("test"))
	exist, err = Exists(client, "test")
	assert.NoError(t, err)
	assert.False(t, exist)
	_, err = client.Open("test")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPOSIXCreateFailure(t *testing.T) {
	// a regular file blocks the output directory
	parent := filepath.Join(t.TempDir(), "file")
	assert.NoError(t, os.WriteFile(parent, []byte("x"), 0644))
	client := NewPOSIX(parent)
	_, _, err := client.Create("test")
	assert.Error(t, err)
}
