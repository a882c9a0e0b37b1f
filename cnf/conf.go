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

package cnf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"depforest/monitoring"
	"depforest/rdb"

	"github.com/czcorpus/cnc-gokit/fs"
	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

const (
	dfltServerReadTimeoutSecs  = 30
	dfltServerWriteTimeoutSecs = 30
	dfltListenPort             = 8090
	dfltTimeZone               = "Europe/Prague"
	dfltAuthHeaderName         = "X-Api-Key"
)

// Conf is a global configuration of the app
type Conf struct {
	ListenAddress          string           `json:"listenAddress" yaml:"listenAddress"`
	PublicURL              string           `json:"publicUrl" yaml:"publicUrl"`
	ListenPort             int              `json:"listenPort" yaml:"listenPort"`
	ServerReadTimeoutSecs  int              `json:"serverReadTimeoutSecs" yaml:"serverReadTimeoutSecs"`
	ServerWriteTimeoutSecs int              `json:"serverWriteTimeoutSecs" yaml:"serverWriteTimeoutSecs"`
	CorsAllowedOrigins     []string         `json:"corsAllowedOrigins" yaml:"corsAllowedOrigins"`
	Redis                  *rdb.Conf        `json:"redis" yaml:"redis"`
	LogFile                string           `json:"logFile" yaml:"logFile"`
	LogLevel               logging.LogLevel `json:"logLevel" yaml:"logLevel"`
	TimeZone               string           `json:"timeZone" yaml:"timeZone"`
	AuthHeaderName         string           `json:"authHeaderName" yaml:"authHeaderName"`
	AuthTokens             []string         `json:"authTokens" yaml:"authTokens"`

	// Vocabularies maps vocabulary names to directories
	// with frame files
	Vocabularies map[string]string `json:"vocabularies" yaml:"vocabularies"`

	// DefaultVocabulary is used when a request does not
	// specify any. Empty value means "accept all predicates".
	DefaultVocabulary string `json:"defaultVocabulary" yaml:"defaultVocabulary"`

	NumParserWorkers int `json:"numParserWorkers" yaml:"numParserWorkers"`

	Monitoring *monitoring.Conf `json:"monitoring" yaml:"monitoring"`

	srcPath string
}

func (conf *Conf) IsDebugMode() bool {
	return conf.LogLevel == "debug"
}

func (conf *Conf) TimezoneLocation() *time.Location {
	// we can ignore the error here as we always call ValidateAndDefaults()
	// first (which also tries to load the location and report possible
	// error)
	loc, _ := time.LoadLocation(conf.TimeZone)
	return loc
}

// GetSourcePath returns an absolute path of a file
// the config was loaded from.
func (conf *Conf) GetSourcePath() string {
	if filepath.IsAbs(conf.srcPath) {
		return conf.srcPath
	}
	var cwd string
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "[failed to get working dir]"
	}
	return filepath.Join(cwd, conf.srcPath)
}

// LoadConfig loads a configuration file. Files with the `.yaml`
// or `.yml` suffix are read as YAML, anything else as JSON.
func LoadConfig(path string) (*Conf, error) {
	if path == "" {
		return nil, fmt.Errorf("cannot load config - path not specified")
	}
	rawData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	var conf Conf
	conf.srcPath = path
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(rawData, &conf)
	default:
		err = json.Unmarshal(rawData, &conf)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	return &conf, nil
}

func ValidateAndDefaults(conf *Conf) error {
	if conf.ListenPort == 0 {
		conf.ListenPort = dfltListenPort
		log.Warn().Msgf("listenPort not specified, using default: %d", dfltListenPort)
	}
	if conf.ServerReadTimeoutSecs == 0 {
		conf.ServerReadTimeoutSecs = dfltServerReadTimeoutSecs
		log.Warn().Msgf(
			"serverReadTimeoutSecs not specified, using default: %d",
			dfltServerReadTimeoutSecs,
		)
	}
	if conf.ServerWriteTimeoutSecs == 0 {
		conf.ServerWriteTimeoutSecs = dfltServerWriteTimeoutSecs
		log.Warn().Msgf(
			"serverWriteTimeoutSecs not specified, using default: %d",
			dfltServerWriteTimeoutSecs,
		)
	}
	if conf.PublicURL == "" {
		conf.PublicURL = fmt.Sprintf("http://%s:%d", conf.ListenAddress, conf.ListenPort)
		log.Warn().Str("address", conf.PublicURL).Msg("publicUrl not set, using listenAddress")
	}
	if len(conf.AuthTokens) > 0 && conf.AuthHeaderName == "" {
		conf.AuthHeaderName = dfltAuthHeaderName
		log.Warn().
			Str("header", dfltAuthHeaderName).
			Msg("authHeaderName not specified, using default")
	}
	if conf.Redis == nil {
		conf.Redis = &rdb.Conf{}
		log.Warn().Msg("redis not configured, using defaults")
	}
	if err := conf.Redis.ValidateAndDefaults(); err != nil {
		return fmt.Errorf("invalid redis configuration: %w", err)
	}
	for name, dir := range conf.Vocabularies {
		isDir, err := fs.IsDir(dir)
		if err != nil {
			return fmt.Errorf("failed to check vocabulary `%s`: %w", name, err)
		}
		if !isDir {
			return fmt.Errorf("vocabulary `%s` path %s is not a directory", name, dir)
		}
	}
	if conf.DefaultVocabulary != "" {
		if _, ok := conf.Vocabularies[conf.DefaultVocabulary]; !ok {
			return fmt.Errorf("unknown default vocabulary `%s`", conf.DefaultVocabulary)
		}
	}
	if conf.NumParserWorkers < 0 {
		return fmt.Errorf("numParserWorkers must be a non-negative number")
	}
	if conf.TimeZone == "" {
		conf.TimeZone = dfltTimeZone
		log.Warn().
			Str("timeZone", dfltTimeZone).
			Msg("time zone not specified, using default")
	}
	if _, err := time.LoadLocation(conf.TimeZone); err != nil {
		return fmt.Errorf("invalid time zone: %w", err)
	}
	return nil
}
