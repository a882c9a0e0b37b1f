// Copyright 2024 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
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
	"flag"
	"fmt"
	"os"

	"depforest/conll"
	"depforest/dtree"
	"depforest/frames"
	"depforest/pattern"
	"depforest/results"
	"depforest/worker"

	"github.com/bytedance/sonic"
	"github.com/gonuts/commander"
	"github.com/rs/zerolog/log"
)

func loadVocabularyOrAll(framesDir string) (dtree.Vocabulary, string, error) {
	if framesDir == "" {
		return dtree.AcceptAll, frames.AcceptAllFingerprint, nil
	}
	vocab, err := frames.LoadVocabulary(framesDir)
	if err != nil {
		return nil, "", err
	}
	return vocab, framesDir, nil
}

func readInputFile(args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected a path to a CoNLL-2008 file")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

func writeJSON(value any) error {
	data, err := sonic.ConfigStd.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(os.Stdout, string(data))
	return err
}

func convertCmd() *commander.Command {
	var framesDir, format, input string
	var numWorkers int
	cmd := &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			data, err := readInputFile(args)
			if err != nil {
				return err
			}
			vocab, vocabName, err := loadVocabularyOrAll(framesDir)
			if err != nil {
				return err
			}
			proc := worker.NewProcessor(worker.NewPool(numWorkers))
			ans, err := proc.Forest(
				context.Background(),
				worker.ForestArgs{Data: data, Input: input, Format: format, Vocabulary: vocabName},
				vocab,
			)
			if err != nil {
				return err
			}
			for _, sent := range ans.Sentences {
				if sent.Failed() {
					log.Warn().Int("sentence", sent.Index).Str("error", sent.Error).Msg("skipping sentence")
					continue
				}
				if sent.Report != nil && len(sent.Report.Dropped) > 0 {
					log.Info().
						Int("sentence", sent.Index).
						Strs("dropped", sent.Report.Dropped).
						Msg("predicates not found in the vocabulary")
				}
			}
			if ans.Format != results.FormatTable {
				return writeJSON(ans)
			}
			tables := make([]dtree.Table, 0, len(ans.Sentences))
			for _, sent := range ans.Sentences {
				if !sent.Failed() {
					tables = append(tables, sent.Table)
				}
			}
			return conll.WriteTables(os.Stdout, tables)
		},
		UsageLine: "convert [-frames DIR] [-input conll08|table] [-format table|columns|words] FILE",
		Short:     "build dependency trees from a CoNLL-2008 file and export them",
		Long: `
build dependency trees from a CoNLL-2008 file, attach semantic roles
of predicates found in the frame files and export the trees

	$ depforest convert -frames ./propbank-frames -format table ./data.conll08

previously exported tables can be read back (e.g. to get other formats)

	$ depforest convert -input table -format columns ./data.table
`,
		Flag: *flag.NewFlagSet("convert", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&framesDir, "frames", "", "directory with frame files (empty = accept all predicates)")
	cmd.Flag.StringVar(&input, "input", results.InputCoNLL08, "input format (conll08, table)")
	cmd.Flag.StringVar(&format, "format", results.FormatTable, "output format (table, columns, words)")
	cmd.Flag.IntVar(&numWorkers, "workers", 0, "number of parallel tree builders (0 = number of CPUs)")
	return cmd
}

func matchCmd() *commander.Command {
	var framesDir, query, input string
	var numWorkers int
	cmd := &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			if query == "" {
				return fmt.Errorf("missing pattern (-q)")
			}
			data, err := readInputFile(args)
			if err != nil {
				return err
			}
			vocab, vocabName, err := loadVocabularyOrAll(framesDir)
			if err != nil {
				return err
			}
			proc := worker.NewProcessor(worker.NewPool(numWorkers))
			ans, err := proc.Match(
				context.Background(),
				worker.MatchArgs{Data: data, Input: input, Pattern: query, Vocabulary: vocabName},
				vocab,
			)
			if err != nil {
				return err
			}
			return writeJSON(ans)
		},
		UsageLine: "match -q PATTERN [-frames DIR] [-input conll08|table] FILE",
		Short:     "search for tree nodes satisfying a pattern",
		Long: `
search for tree nodes satisfying a pattern in a CoNLL-2008 file

	$ depforest match -q '( * nsubj * | root | * advmod * )' ./data.conll08
`,
		Flag: *flag.NewFlagSet("match", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&query, "q", "", "tree pattern")
	cmd.Flag.StringVar(&input, "input", results.InputCoNLL08, "input format (conll08, table)")
	cmd.Flag.StringVar(&framesDir, "frames", "", "directory with frame files (empty = accept all predicates)")
	cmd.Flag.IntVar(&numWorkers, "workers", 0, "number of parallel tree builders (0 = number of CPUs)")
	return cmd
}

func patternCmd() *commander.Command {
	return &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected a single pattern expression")
			}
			patt, err := pattern.Compile(args[0])
			if err != nil {
				return err
			}
			fmt.Println(patt.String())
			return nil
		},
		UsageLine: "pattern EXPR",
		Short:     "validate a tree pattern and print its canonical form",
		Flag:      *flag.NewFlagSet("pattern", flag.ExitOnError),
	}
}

func partitionCmd() *commander.Command {
	var primaryDir, secondaryDir string
	cmd := &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected a path to a CoNLL-2008 file")
			}
			if primaryDir == "" || secondaryDir == "" {
				return fmt.Errorf("both -primary and -secondary frame directories must be specified")
			}
			sents, err := conll.ReadFile(args[0])
			if err != nil {
				return err
			}
			primary, err := frames.LoadVocabulary(primaryDir)
			if err != nil {
				return err
			}
			secondary, err := frames.LoadVocabulary(secondaryDir)
			if err != nil {
				return err
			}
			preds := make([]string, 0, len(sents))
			for _, sent := range sents {
				for _, row := range sent {
					if row.IsPredicate() {
						preds = append(preds, row.Pred)
					}
				}
			}
			ans := frames.Partition(preds, primary, secondary)
			log.Info().
				Int("primary", len(ans.Primary)).
				Int("secondary", len(ans.Secondary)).
				Int("excluded", ans.NumExcluded()).
				Msg("predicates partitioned")
			return writeJSON(ans)
		},
		UsageLine: "partition -primary DIR -secondary DIR FILE",
		Short:     "split predicates of a CoNLL-2008 file between two frame inventories",
		Long: `
split predicate senses of a CoNLL-2008 file between two frame inventories
(e.g. PropBank and NomBank); senses found in none or both of them are reported

	$ depforest partition -primary ./propbank -secondary ./nombank ./data.conll08
`,
		Flag: *flag.NewFlagSet("partition", flag.ExitOnError),
	}
	cmd.Flag.StringVar(&primaryDir, "primary", "", "directory with primary frame files")
	cmd.Flag.StringVar(&secondaryDir, "secondary", "", "directory with secondary frame files")
	return cmd
}
