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
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	"github.com/gorse-io/toyrec/base"
	"github.com/gorse-io/toyrec/base/log"
	"github.com/gorse-io/toyrec/base/progress"
	"github.com/gorse-io/toyrec/cmd/version"
	"github.com/gorse-io/toyrec/config"
	"github.com/gorse-io/toyrec/dataset"
	"github.com/gorse-io/toyrec/generator"
	"github.com/gorse-io/toyrec/recommend"
	"github.com/gorse-io/toyrec/storage/blob"
	"github.com/juju/errors"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:          "toyrec",
		Short:        "Toy rating datasets and neighborhood recommenders.",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug, _ := cmd.Flags().GetBool("debug")
			log.SetLogger(cmd.Flags(), debug)
		},
	}
	log.AddFlags(rootCommand.PersistentFlags())
	rootCommand.PersistentFlags().Bool("debug", false, "use debug log mode")
	rootCommand.PersistentFlags().StringP("config", "c", "", "configuration file path")

	generateCommand := &cobra.Command{
		Use:   "generate",
		Short: "Generate the item-based and the user-based rating files.",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}
	generateCommand.Flags().Bool("no-progress", false, "hide progress bars")

	recommendCommand := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend items to a user.",
	}
	recommendCommand.PersistentFlags().IntP("top", "n", 0, "number of recommended items (default recommend.top_n)")
	recommendCommand.AddCommand(&cobra.Command{
		Use:   "item-based <user>",
		Short: "Recommend items similar to those the user rated.",
		Args:  cobra.ExactArgs(1),
		RunE:  runItemBased,
	})
	recommendCommand.AddCommand(&cobra.Command{
		Use:   "user-based <user>",
		Short: "Recommend items rated by users similar to the user.",
		Args:  cobra.ExactArgs(1),
		RunE:  runUserBased,
	})

	popularCommand := &cobra.Command{
		Use:   "popular",
		Short: "List items with the highest mean rating.",
		Args:  cobra.NoArgs,
		RunE:  runPopular,
	}
	popularCommand.Flags().IntP("top", "n", 0, "number of listed items (default recommend.top_n)")

	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Show the version of toyrec.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.BuildInfo())
		},
	}

	rootCommand.AddCommand(generateCommand, recommendCommand, popularCommand, versionCommand)
	return rootCommand
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		log.Logger().Fatal("failed to execute", zap.Error(err))
	}
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	log.Logger().Info("load config", zap.String("config", configPath))
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return errors.Trace(err)
	}
	store, err := blob.Open(cfg.Storage)
	if err != nil {
		return errors.Trace(err)
	}
	g := generator.New(cfg, store, base.NewTimeSeededGenerator())
	noProgress, _ := cmd.Flags().GetBool("no-progress")
	g.ShowProgress = !noProgress
	result, err := g.Run(cmd.Context())
	if err != nil {
		return errors.Trace(err)
	}

	if err = printStages(cmd.ErrOrStderr(), result.Progress); err != nil {
		return errors.Trace(err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", result.ItemBasedFile, result.UserBasedFile)
	return nil
}

// printStages writes a stage summary. It goes to stderr so that stdout holds results only.
func printStages(w io.Writer, stages []progress.Progress) error {
	table := tablewriter.NewWriter(w)
	table.Header("Stage", "Status", "Elapsed")
	for _, p := range stages {
		if err := table.Append([]string{p.Name, string(p.Status), p.Elapsed().String()}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}

func readMatrix(store blob.Store, name string) (*dataset.Matrix, error) {
	f, err := store.Open(name)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()
	m, err := dataset.ReadCSV(f)
	if err != nil {
		return nil, errors.Annotatef(err, "read %s", name)
	}
	return m, nil
}

// topN returns the -n flag, or the configured default if it is not set.
func topN(cmd *cobra.Command, cfg *config.Config) int {
	n, _ := cmd.Flags().GetInt("top")
	if n <= 0 {
		return cfg.Recommend.TopN
	}
	return n
}

func runItemBased(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return errors.Trace(err)
	}
	store, err := blob.Open(cfg.Storage)
	if err != nil {
		return errors.Trace(err)
	}
	m, err := readMatrix(store, cfg.Dataset.ItemBasedFile)
	if err != nil {
		return errors.Trace(err)
	}
	r := recommend.NewItemBased(m)
	err = r.LoadSimilarities(cmd.Context(), store, cfg.Recommend.SimilarityCache, cfg.Recommend.Jobs)
	if printErr := printStages(cmd.ErrOrStderr(), r.Tracer().List()); printErr != nil && err == nil {
		err = printErr
	}
	if err != nil {
		return errors.Trace(err)
	}
	n := topN(cmd, cfg)
	scores, err := r.Recommend(args[0], n)
	if err != nil {
		return errors.Trace(err)
	}
	return printRecommendation(cmd.OutOrStdout(), args[0], scores, m, n)
}

func runUserBased(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return errors.Trace(err)
	}
	store, err := blob.Open(cfg.Storage)
	if err != nil {
		return errors.Trace(err)
	}
	m, err := readMatrix(store, cfg.Dataset.UserBasedFile)
	if err != nil {
		return errors.Trace(err)
	}
	n := topN(cmd, cfg)
	scores, err := recommend.NewUserBased(m).Recommend(args[0], n)
	if err != nil {
		return errors.Trace(err)
	}
	return printRecommendation(cmd.OutOrStdout(), args[0], scores, m, n)
}

func runPopular(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return errors.Trace(err)
	}
	store, err := blob.Open(cfg.Storage)
	if err != nil {
		return errors.Trace(err)
	}
	m, err := readMatrix(store, cfg.Dataset.ItemBasedFile)
	if err != nil {
		return errors.Trace(err)
	}
	return printScores(cmd.OutOrStdout(), recommend.Popular(m, topN(cmd, cfg)))
}

// printRecommendation prints personalized scores, or popular items if there are none.
func printRecommendation(w io.Writer, user string, scores []recommend.Score, m *dataset.Matrix, n int) error {
	if len(scores) == 0 {
		log.Logger().Info("no personalized recommendation, fall back to popular items", zap.String("user", user))
		fmt.Fprintf(w, "No recommendations for %s. Popular items:\n", user)
		scores = recommend.Popular(m, n)
	}
	return printScores(w, scores)
}

func printScores(w io.Writer, scores []recommend.Score) error {
	table := tablewriter.NewWriter(w)
	table.Header("Item", "Score")
	for _, score := range scores {
		if err := table.Append([]string{score.Id, strconv.FormatFloat(score.Score, 'f', 4, 64)}); err != nil {
			return errors.Trace(err)
		}
	}
	return errors.Trace(table.Render())
}
