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

package rdb

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	cacheKeyPrefix = "depforestCache"
)

// CacheKey creates a key identifying a job result. The vocabulary
// fingerprint must be included as the same input produces
// different trees with a different frame vocabulary.
func CacheKey(fn string, args []byte, vocabFingerprint string) string {
	h := sha1.New()
	h.Write([]byte(fn))
	h.Write([]byte{0})
	h.Write(args)
	h.Write([]byte{0})
	h.Write([]byte(vocabFingerprint))
	return fmt.Sprintf("%s:%s", cacheKeyPrefix, hex.EncodeToString(h.Sum(nil)))
}

func (a *Adapter) CacheEnabled() bool {
	return a.conf.ResultCacheTTLSecs > 0
}

// GetCachedResult returns a previously stored result. In case the
// cache is disabled, (nil, false, nil) is returned.
func (a *Adapter) GetCachedResult(key string) (*WorkerResult, bool, error) {
	if !a.CacheEnabled() {
		return nil, false, nil
	}
	cmd := a.c.Get(a.ctx, key)
	if cmd.Err() == redis.Nil {
		return nil, false, nil

	} else if cmd.Err() != nil {
		return nil, false, fmt.Errorf("failed to read cached result: %w", cmd.Err())
	}
	ans, err := DecodeWorkerResult(cmd.Val())
	if err != nil {
		return nil, false, err
	}
	log.Debug().Str("key", key).Msg("result cache hit")
	return ans, true, nil
}

// StoreCachedResult stores a result for the configured TTL.
// Results containing errors are never cached.
func (a *Adapter) StoreCachedResult(key string, value *WorkerResult) error {
	if !a.CacheEnabled() || value.Err() != nil {
		return nil
	}
	data, err := value.ToJSON()
	if err != nil {
		return err
	}
	if err := a.c.Set(a.ctx, key, data, a.conf.ResultCacheTTL()).Err(); err != nil {
		return fmt.Errorf("failed to cache result: %w", err)
	}
	return nil
}
