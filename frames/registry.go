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
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

const (
	// AcceptAllFingerprint identifies a "vocabulary"
	// which accepts any predicate
	AcceptAllFingerprint = "*"
)

// ErrUnknownVocabulary is returned for vocabulary names
// not present in the registry configuration
type ErrUnknownVocabulary struct {
	Name string
}

func (err ErrUnknownVocabulary) Error() string {
	return fmt.Sprintf("unknown vocabulary `%s`", err.Name)
}

type registryEntry struct {
	vocab  *Vocabulary
	frames map[string]Frame
}

// Registry provides named frame vocabularies. Vocabularies are
// loaded lazily on first access and kept in memory. The registry
// is safe for concurrent use.
type Registry struct {
	dirs map[string]string
	data map[string]*registryEntry
	lock sync.Mutex
}

// Names returns sorted names of all the configured vocabularies
func (r *Registry) Names() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	ans := make([]string, 0, len(r.dirs))
	for name := range r.dirs {
		ans = append(ans, name)
	}
	sort.Strings(ans)
	return ans
}

func (r *Registry) get(name string) (*registryEntry, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	entry, ok := r.data[name]
	if ok {
		return entry, nil
	}
	dir, ok := r.dirs[name]
	if !ok {
		return nil, ErrUnknownVocabulary{Name: name}
	}
	items, err := LoadFrameDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary %s: %w", name, err)
	}
	entry = &registryEntry{
		vocab:  VocabularyFromFrames(items),
		frames: make(map[string]Frame, len(items)),
	}
	for _, f := range items {
		entry.frames[f.ID] = f
	}
	r.data[name] = entry
	log.Info().
		Str("name", name).
		Int("size", entry.vocab.Len()).
		Msg("frame vocabulary loaded")
	return entry, nil
}

// Get returns a named vocabulary
func (r *Registry) Get(name string) (*Vocabulary, error) {
	entry, err := r.get(name)
	if err != nil {
		return nil, err
	}
	return entry.vocab, nil
}

// Frame returns a frame (roleset) description of a predicate sense
func (r *Registry) Frame(vocabName, senseID string) (Frame, bool, error) {
	entry, err := r.get(vocabName)
	if err != nil {
		return Frame{}, false, err
	}
	f, ok := entry.frames[senseID]
	return f, ok, nil
}

// Set registers an already loaded vocabulary under the provided
// name. It replaces any previous vocabulary of the same name.
func (r *Registry) Set(name string, vocab *Vocabulary) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.dirs[name] = ""
	r.data[name] = &registryEntry{vocab: vocab, frames: make(map[string]Frame)}
}

// NewRegistry creates a registry of vocabularies where
// `dirs` maps vocabulary names to directories with frame files.
func NewRegistry(dirs map[string]string) *Registry {
	ans := &Registry{
		dirs: make(map[string]string, len(dirs)),
		data: make(map[string]*registryEntry),
	}
	for k, v := range dirs {
		ans.dirs[k] = v
	}
	return ans
}
