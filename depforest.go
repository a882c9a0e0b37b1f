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
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"depforest/cnf"
	"depforest/handlers"

	"github.com/czcorpus/cnc-gokit/collections"
	"github.com/czcorpus/cnc-gokit/logging"
	"github.com/gin-gonic/gin"
	"github.com/gonuts/commander"
	"github.com/rs/zerolog/log"
)

const (
	redisConnectionTestTimeout = 120 * time.Second
)

var (
	version   string
	buildDate string
	gitCommit string
)

type service interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
}

func getEnv(name string) string {
	for _, p := range os.Environ() {
		items := strings.SplitN(p, "=", 2)
		if len(items) == 2 && items[0] == name {
			return items[1]
		}
	}
	return ""
}

func getRequestOrigin(ctx *gin.Context) string {
	currOrigin, ok := ctx.Request.Header["Origin"]
	if ok {
		return currOrigin[0]
	}
	return ""
}

func additionalLogEvents() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		logging.AddLogEvent(ctx, "userAgent", ctx.Request.UserAgent())
		logging.AddLogEvent(ctx, "vocabulary", ctx.Query("vocab"))
		ctx.Next()
	}
}

func CORSMiddleware(conf *cnf.Conf) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var allowedOrigin string
		currOrigin := getRequestOrigin(ctx)
		for _, origin := range conf.CorsAllowedOrigins {
			if currOrigin == origin {
				allowedOrigin = origin
				break
			}
		}
		if allowedOrigin != "" {
			ctx.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			ctx.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			ctx.Writer.Header().Set(
				"Access-Control-Allow-Headers",
				"Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control, X-Requested-With",
			)
			ctx.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		}

		if ctx.Request.Method == "OPTIONS" {
			ctx.AbortWithStatus(http.StatusNoContent)
			return
		}
		ctx.Next()
	}
}

func AuthRequired(conf *cnf.Conf) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if len(conf.AuthHeaderName) > 0 &&
			!collections.SliceContains(conf.AuthTokens, ctx.GetHeader(conf.AuthHeaderName)) {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx.Next()
	}
}

func cleanVersionInfo(v string) string {
	return strings.TrimLeft(strings.Trim(v, "'"), "v")
}

func getVersionInfo() handlers.VersionInfo {
	return handlers.VersionInfo{
		Version:   cleanVersionInfo(version),
		BuildDate: cleanVersionInfo(buildDate),
		GitCommit: cleanVersionInfo(gitCommit),
	}
}

// loadConfig loads and validates the configuration and sets up logging.
// For workers, the log file (if any) is derived from the main log file.
func loadConfig(path string, forWorker bool) (*cnf.Conf, error) {
	conf, err := cnf.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if forWorker {
		var wPath string
		if conf.LogFile != "" {
			wPath = filepath.Join(filepath.Dir(conf.LogFile), "worker.log")
		}
		logging.SetupLogging(wPath, conf.LogLevel)
		log.Logger = log.Logger.With().Str("worker", getWorkerID()).Logger()

	} else {
		logging.SetupLogging(conf.LogFile, conf.LogLevel)
	}
	if err := cnf.ValidateAndDefaults(conf); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return conf, nil
}

func serverCmd() *commander.Command {
	return &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected a path to a configuration file")
			}
			conf, err := loadConfig(args[0], false)
			if err != nil {
				return err
			}
			log.Info().Msg("Starting DEPFOREST API server")
			return runApiServer(conf)
		},
		UsageLine: "server <config.json|config.yaml>",
		Short:     "run the HTTP API server",
		Flag:      *flag.NewFlagSet("server", flag.ExitOnError),
	}
}

func workerCmd() *commander.Command {
	return &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected a path to a configuration file")
			}
			conf, err := loadConfig(args[0], true)
			if err != nil {
				return err
			}
			log.Info().Msg("Starting DEPFOREST worker")
			return runWorker(conf)
		},
		UsageLine: "worker <config.json|config.yaml>",
		Short:     "run a job worker",
		Flag:      *flag.NewFlagSet("worker", flag.ExitOnError),
	}
}

func testConfigCmd() *commander.Command {
	return &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("expected a path to a configuration file")
			}
			if _, err := loadConfig(args[0], false); err != nil {
				return err
			}
			log.Info().Msg("config OK")
			return nil
		},
		UsageLine: "test <config.json|config.yaml>",
		Short:     "validate a configuration file",
		Flag:      *flag.NewFlagSet("test", flag.ExitOnError),
	}
}

func versionCmd() *commander.Command {
	return &commander.Command{
		Run: func(cmd *commander.Command, args []string) error {
			ver := getVersionInfo()
			fmt.Printf(
				"depforest %s\nbuild date: %s\nlast commit: %s\n",
				ver.Version, ver.BuildDate, ver.GitCommit,
			)
			return nil
		},
		UsageLine: "version",
		Short:     "show version information",
		Flag:      *flag.NewFlagSet("version", flag.ExitOnError),
	}
}

var cmd = &commander.Command{
	UsageLine: filepath.Base(os.Args[0]) + " convert|match|pattern|partition|server|worker|test|version",
	Short:     "DEPFOREST - dependency forest builder and tree pattern matcher",
}

func init() {
	cmd.Subcommands = []*commander.Command{
		convertCmd(),
		matchCmd(),
		patternCmd(),
		partitionCmd(),
		serverCmd(),
		workerCmd(),
		testConfigCmd(),
		versionCmd(),
	}
}

func main() {
	if err := cmd.Dispatch(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "**error**: %v\n", err)
		os.Exit(1)
	}
}
