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
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	dfltHost                   = "localhost"
	dfltPort                   = 6379
	dfltQueryAnswerTimeoutSecs = 60
)

type Conf struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	DB       int    `json:"db" yaml:"db"`
	Password string `json:"password" yaml:"password"`

	QueueKey            string `json:"queueKey" yaml:"queueKey"`
	ChannelQuery        string `json:"channelQuery" yaml:"channelQuery"`
	ChannelResultPrefix string `json:"channelResultPrefix" yaml:"channelResultPrefix"`
	ChannelJobLog       string `json:"channelJobLog" yaml:"channelJobLog"`

	// QueryAnswerTimeoutSecs specifies how long the API server
	// waits for a worker to answer a query
	QueryAnswerTimeoutSecs int `json:"queryAnswerTimeoutSecs" yaml:"queryAnswerTimeoutSecs"`

	// ResultCacheTTLSecs enables caching of worker results
	// (zero disables the cache)
	ResultCacheTTLSecs int `json:"resultCacheTTLSecs" yaml:"resultCacheTTLSecs"`
}

func (conf *Conf) ServerInfo() string {
	return fmt.Sprintf("%s:%d", conf.Host, conf.Port)
}

func (conf *Conf) QueryAnswerTimeout() time.Duration {
	return time.Duration(conf.QueryAnswerTimeoutSecs) * time.Second
}

func (conf *Conf) ResultCacheTTL() time.Duration {
	return time.Duration(conf.ResultCacheTTLSecs) * time.Second
}

func (conf *Conf) ValidateAndDefaults() error {
	if conf.Host == "" {
		conf.Host = dfltHost
		log.Warn().Str("host", conf.Host).Msg("Redis host not specified, using default")
	}
	if conf.Port == 0 {
		conf.Port = dfltPort
		log.Warn().Int("port", conf.Port).Msg("Redis port not specified, using default")
	}
	if conf.Port < 0 || conf.DB < 0 {
		return fmt.Errorf("invalid Redis port or db")
	}
	if conf.QueueKey == "" {
		conf.QueueKey = DefaultQueueKey
	}
	if conf.ChannelQuery == "" {
		conf.ChannelQuery = DefaultQueryChannel
		log.Warn().
			Str("channel", conf.ChannelQuery).
			Msg("Redis channel for queries not specified, using default")
	}
	if conf.ChannelResultPrefix == "" {
		conf.ChannelResultPrefix = DefaultResultChannelPrefix
		log.Warn().
			Str("channel", conf.ChannelResultPrefix).
			Msg("Redis channel for results not specified, using default")
	}
	if conf.ChannelJobLog == "" {
		conf.ChannelJobLog = DefaultJobLogChannel
	}
	if conf.QueryAnswerTimeoutSecs == 0 {
		conf.QueryAnswerTimeoutSecs = dfltQueryAnswerTimeoutSecs
		log.Warn().
			Int("value", conf.QueryAnswerTimeoutSecs).
			Msg("queryAnswerTimeoutSecs not specified, using default")
	}
	if conf.ResultCacheTTLSecs < 0 {
		return fmt.Errorf("resultCacheTTLSecs must be a non-negative number")
	}
	return nil
}
