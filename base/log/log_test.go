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

package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestSetLogger(t *testing.T) {
	defer CloseLogger()
	temp := t.TempDir()
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flagSet)
	err := flagSet.Parse([]string{"--log-path", filepath.Join(temp, "toyrec.log")})
	assert.NoError(t, err)

	// production logger writes json lines to the rotating file
	SetLogger(flagSet, false)
	Logger().Info("hello")
	data, err := os.ReadFile(filepath.Join(temp, "toyrec.log"))
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)

	// debug logger writes console lines
	SetLogger(flagSet, true)
	Logger().Debug("world")
	data, err = os.ReadFile(filepath.Join(temp, "toyrec.log"))
	assert.NoError(t, err)
	assert.Contains(t, string(data), "world")
}

func TestSetLoggerWithoutFile(t *testing.T) {
	defer CloseLogger()
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flagSet)
	SetLogger(flagSet, false)
	assert.NotNil(t, Logger())
	assert.False(t, Logger().Core().Enabled(zapcore.DebugLevel))
	assert.True(t, Logger().Core().Enabled(zapcore.InfoLevel))
}

func TestSetLoggerStderr(t *testing.T) {
	defer CloseLogger()
	temp, err := os.CreateTemp(t.TempDir(), "stderr")
	assert.NoError(t, err)
	defer temp.Close()
	stderr := os.Stderr
	os.Stderr = temp
	defer func() { os.Stderr = stderr }()

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(flagSet)
	SetLogger(flagSet, false)
	Logger().Info("generate ratings")
	data, err := os.ReadFile(temp.Name())
	assert.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"generate ratings"`)
}
