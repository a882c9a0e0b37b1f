// Copyright 2024 Institute of the Czech National Corpus,
//                Faculty of Arts, Charles University
//   This file is part of DEPFOREST.
//
//  DEPFOREST is free software: you can redistribute it and/or modify
//  it under the terms of the GNU General Public License as published by
//  the Free Software Foundation, either version 3 of the License, or
//  (at your option) any later version.
//
//  DEPFOREST is distributed in the hope that it will be useful,
//  but WITHOUT ANY WARRANTY; without even the implied warranty of
//  MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//  GNU General Public License for more details.
//
//  You should have received a copy of the GNU General Public License
//  along with DEPFOREST.  If not, see <https://www.gnu.org/licenses/>.

// Package conll reads the CoNLL-2008 (closed track) column format
// and reads/writes the compact table format produced by tree export.
package conll

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"depforest/dtree"
)

const (
	FieldSeparator = "\t"
	EmptyValue     = "_"

	// CoNLL-2008 columns
	colID     = 0
	colForm   = 1
	colPPOS   = 7
	colHead   = 8
	colDeprel = 9
	colPred   = 10
	colArgs   = 11

	// exported table columns
	tabID     = 0
	tabForm   = 1
	tabPOS    = 2
	tabHead   = 3
	tabDeprel = 4
	tabPred   = 5
	tabArgs   = 6

	maxLineSize = 1024 * 1024
)

// ParseError describes a problem found at a specific line
// of the input.
type ParseError struct {
	Line int
	Msg  string
}

func (err *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", err.Line, err.Msg)
}

func ParseString(value string) string {
	if value == EmptyValue {
		return ""
	}
	return value
}

func FormatString(value string) string {
	if value == "" {
		return EmptyValue
	}
	return value
}

func parseCells(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	ans := make([]string, len(values))
	for i, v := range values {
		ans[i] = ParseString(v)
	}
	return ans
}

// scanBlocks reads blank line separated blocks of tab separated
// records and calls `fn` for each block. Each record is passed
// along with its line number.
func scanBlocks(r io.Reader, fn func(records [][]string, lines []int) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	var records [][]string
	var lines []int
	var lineNum int
	flush := func() error {
		if len(records) == 0 {
			return nil
		}
		err := fn(records, lines)
		records = nil
		lines = nil
		return err
	}
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if strings.TrimSpace(line) == "" {
			if err := flush(); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		records = append(records, strings.Split(line, FieldSeparator))
		lines = append(lines, lineNum)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	return flush()
}

func parseID(value string, expected int, line int) error {
	id, err := strconv.Atoi(value)
	if err != nil {
		return &ParseError{Line: line, Msg: fmt.Sprintf("invalid ID `%s`", value)}
	}
	if id != expected {
		return &ParseError{Line: line, Msg: fmt.Sprintf("unexpected ID %d (expected %d)", id, expected)}
	}
	return nil
}

func parseHead(value string, line int) (int, error) {
	if value == EmptyValue {
		return 0, &ParseError{Line: line, Msg: "missing HEAD"}
	}
	head, err := strconv.Atoi(value)
	if err != nil {
		return 0, &ParseError{Line: line, Msg: fmt.Sprintf("invalid HEAD `%s`", value)}
	}
	return head, nil
}

// ReadSentences reads sentences in the CoNLL-2008 format. Only
// the columns needed to build a tree are used: ID, FORM, PPOS,
// HEAD, DEPREL, PRED and the ARG columns.
func ReadSentences(r io.Reader) ([]dtree.Sentence, error) {
	ans := make([]dtree.Sentence, 0, 100)
	err := scanBlocks(r, func(records [][]string, lines []int) error {
		sent := make(dtree.Sentence, len(records))
		for i, rec := range records {
			if len(rec) < colArgs {
				return &ParseError{
					Line: lines[i],
					Msg:  fmt.Sprintf("expected at least %d columns, found %d", colArgs, len(rec)),
				}
			}
			if err := parseID(rec[colID], i+1, lines[i]); err != nil {
				return err
			}
			head, err := parseHead(rec[colHead], lines[i])
			if err != nil {
				return err
			}
			sent[i] = dtree.Row{
				Form: ParseString(rec[colForm]),
				POS:  ParseString(rec[colPPOS]),
				Head: head,
				Rel:  ParseString(rec[colDeprel]),
				Pred: ParseString(rec[colPred]),
				Args: parseCells(rec[colArgs:]),
			}
		}
		ans = append(ans, sent)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ans, nil
}

func ReadFile(path string) ([]dtree.Sentence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CoNLL file: %w", err)
	}
	defer f.Close()
	ans, err := ReadSentences(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read CoNLL file %s: %w", path, err)
	}
	return ans, nil
}

// ReadTables reads trees written by WriteTables
func ReadTables(r io.Reader) ([]dtree.Table, error) {
	ans := make([]dtree.Table, 0, 100)
	err := scanBlocks(r, func(records [][]string, lines []int) error {
		tab := make(dtree.Table, len(records))
		for i, rec := range records {
			if len(rec) < tabArgs {
				return &ParseError{
					Line: lines[i],
					Msg:  fmt.Sprintf("expected at least %d columns, found %d", tabArgs, len(rec)),
				}
			}
			if err := parseID(rec[tabID], i+1, lines[i]); err != nil {
				return err
			}
			head, err := parseHead(rec[tabHead], lines[i])
			if err != nil {
				return err
			}
			tab[i] = dtree.TableRow{
				ID:   i + 1,
				Form: ParseString(rec[tabForm]),
				POS:  ParseString(rec[tabPOS]),
				Head: head,
				Rel:  ParseString(rec[tabDeprel]),
				Pred: ParseString(rec[tabPred]),
				Args: parseCells(rec[tabArgs:]),
			}
		}
		ans = append(ans, tab)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ans, nil
}

func formatRow(row dtree.TableRow) string {
	fields := make([]string, 0, tabArgs+len(row.Args))
	fields = append(
		fields,
		strconv.Itoa(row.ID),
		FormatString(row.Form),
		FormatString(row.POS),
		strconv.Itoa(row.Head),
		FormatString(row.Rel),
		FormatString(row.Pred),
	)
	for _, arg := range row.Args {
		fields = append(fields, FormatString(arg))
	}
	return strings.Join(fields, FieldSeparator)
}

// WriteTables writes exported trees, one row per line, each
// table followed by an empty line.
func WriteTables(w io.Writer, tables []dtree.Table) error {
	bw := bufio.NewWriter(w)
	for _, tab := range tables {
		for _, row := range tab {
			if _, err := bw.WriteString(formatRow(row) + "\n"); err != nil {
				return fmt.Errorf("failed to write table: %w", err)
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("failed to write table: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}
