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

package frames

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/rs/zerolog/log"
)

// Role is a numbered semantic role of a frame
type Role struct {
	N     string `xml:"n,attr" json:"n"`
	F     string `xml:"f,attr" json:"f,omitempty"`
	Descr string `xml:"descr,attr" json:"descr"`
}

// Frame is a single roleset (predicate sense) of a frame file
type Frame struct {
	ID    string `json:"id"`
	Lemma string `json:"lemma"`
	Name  string `json:"name"`
	Roles []Role `json:"roles"`
}

type xmlRoleset struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Roles []Role `xml:"roles>role"`
}

type xmlPredicate struct {
	Lemma    string       `xml:"lemma,attr"`
	Rolesets []xmlRoleset `xml:"roleset"`
}

type xmlFrameset struct {
	XMLName    xml.Name       `xml:"frameset"`
	Predicates []xmlPredicate `xml:"predicate"`
}

// ReadFrames parses a PropBank/NomBank style frameset document
func ReadFrames(r io.Reader) ([]Frame, error) {
	var doc xmlFrameset
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse frameset: %w", err)
	}
	ans := make([]Frame, 0, len(doc.Predicates))
	for _, pred := range doc.Predicates {
		for _, rs := range pred.Rolesets {
			if rs.ID == "" {
				continue
			}
			ans = append(ans, Frame{
				ID:    rs.ID,
				Lemma: pred.Lemma,
				Name:  rs.Name,
				Roles: rs.Roles,
			})
		}
	}
	return ans, nil
}

func LoadFrameFile(path string) ([]Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load frame file %s: %w", path, err)
	}
	defer f.Close()
	ans, err := ReadFrames(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load frame file %s: %w", path, err)
	}
	return ans, nil
}

// LoadFrameDir loads all the *.xml frame files found in a directory
// (files are processed in alphabetical order).
func LoadFrameDir(dirPath string) ([]Frame, error) {
	isDir, err := fs.IsDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load frames from %s: %w", dirPath, err)
	}
	if !isDir {
		return nil, fmt.Errorf("failed to load frames: %s is not a directory", dirPath)
	}
	files, err := filepath.Glob(filepath.Join(dirPath, "*.xml"))
	if err != nil {
		return nil, fmt.Errorf("failed to load frames from %s: %w", dirPath, err)
	}
	sort.Strings(files)
	ans := make([]Frame, 0, len(files)*2)
	for _, file := range files {
		items, err := LoadFrameFile(file)
		if err != nil {
			return nil, err
		}
		ans = append(ans, items...)
	}
	log.Info().
		Str("dir", dirPath).
		Int("numFiles", len(files)).
		Int("numFrames", len(ans)).
		Msg("loaded frame files")
	return ans, nil
}

// VocabularyFromFrames creates a vocabulary of roleset IDs
func VocabularyFromFrames(frames []Frame) *Vocabulary {
	names := make([]string, len(frames))
	for i, f := range frames {
		names[i] = f.ID
	}
	return NewVocabulary(names)
}

// LoadVocabulary is a shortcut for LoadFrameDir + VocabularyFromFrames
func LoadVocabulary(dirPath string) (*Vocabulary, error) {
	items, err := LoadFrameDir(dirPath)
	if err != nil {
		return nil, err
	}
	return VocabularyFromFrames(items), nil
}
