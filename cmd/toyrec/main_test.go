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

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorse-io/toyrec/base/log"
	"github.com/gorse-io/toyrec/dataset"
	"github.com/juju/errors"
	"github.com/stretchr/testify/suite"
)

type CommandTestSuite struct {
	suite.Suite
	dir        string
	configPath string
}

func (suite *CommandTestSuite) SetupTest() {
	suite.dir = suite.T().TempDir()
	suite.configPath = filepath.Join(suite.dir, "config.toml")
	err := os.WriteFile(suite.configPath, []byte(fmt.Sprintf(`
[dataset]
num_items = 20
num_users = 30
missing_rate = 0.3

[storage]
type = "posix"
output_dir = %q

[recommend]
jobs = 2
top_n = 5
`, suite.dir)), 0644)
	suite.NoError(err)
}

func (suite *CommandTestSuite) TearDownTest() {
	log.CloseLogger()
}

func (suite *CommandTestSuite) execute(args ...string) (string, string, error) {
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "-c", suite.configPath))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func (suite *CommandTestSuite) TestGenerate() {
	out, stages, err := suite.execute("generate", "--no-progress")
	suite.NoError(err)
	suite.Contains(stages, "generate ratings")
	suite.Contains(stages, "write user-based file")
	suite.Contains(out, "data_item_based.csv")

	f, err := os.Open(filepath.Join(suite.dir, "data_item_based.csv"))
	suite.NoError(err)
	defer f.Close()
	items, err := dataset.ReadCSV(f)
	suite.NoError(err)
	suite.Equal(20, items.NumRows())
	suite.Equal(30, items.NumColumns())
	suite.FileExists(filepath.Join(suite.dir, "data_user_based.csv"))
}

func (suite *CommandTestSuite) TestRecommend() {
	_, _, err := suite.execute("generate", "--no-progress")
	suite.NoError(err)

	out, stages, err := suite.execute("recommend", "item-based", "User_1", "-n", "3")
	suite.NoError(err)
	suite.Contains(out, "Item_")
	suite.Contains(stages, "fit item similarities")
	suite.Contains(stages, "save item similarities")
	suite.FileExists(filepath.Join(suite.dir, "cache", "item_similarities.csv"))
	// the second run reads the similarity cache
	again, stages, err := suite.execute("recommend", "item-based", "User_1", "-n", "3")
	suite.NoError(err)
	suite.Equal(out, again)
	suite.Contains(stages, "load item similarities")
	suite.NotContains(stages, "fit item similarities")

	out, _, err = suite.execute("recommend", "user-based", "User_2")
	suite.NoError(err)
	suite.Contains(out, "Item_")
}

func (suite *CommandTestSuite) TestRecommendUnknownUser() {
	_, _, err := suite.execute("generate", "--no-progress")
	suite.NoError(err)
	for _, method := range []string{"item-based", "user-based"} {
		out, _, err := suite.execute("recommend", method, "User_100")
		suite.True(errors.Is(err, errors.NotFound), "%s: %v", method, err)
		suite.Empty(out)
	}
}

func (suite *CommandTestSuite) TestPopular() {
	_, _, err := suite.execute("popular")
	suite.Error(err)

	_, _, err = suite.execute("generate", "--no-progress")
	suite.NoError(err)
	out, _, err := suite.execute("popular", "-n", "2")
	suite.NoError(err)
	suite.Contains(out, "Item_")
}

func (suite *CommandTestSuite) TestVersion() {
	out, _, err := suite.execute("version")
	suite.NoError(err)
	suite.Contains(out, "Version:")
}

func TestCommandTestSuite(t *testing.T) {
	suite.Run(t, new(CommandTestSuite))
}
