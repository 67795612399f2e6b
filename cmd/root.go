// Copyright 2022
// SPDX-License-Identifier: Apache-2.0
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

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wealthpath/wp-api/common"
)

func init() {
	// Cache
	viper.BindEnv("cache.ttl", "WP_CACHE_TTL")
	rootCmd.PersistentFlags().Duration("cache-ttl", 6*time.Hour, "History cache time-to-live")
	viper.BindPFlag("cache.ttl", rootCmd.PersistentFlags().Lookup("cache-ttl"))

	viper.BindEnv("cache.local_size", "WP_CACHE_SIZE")
	rootCmd.PersistentFlags().Int("cache-size", 128, "Maximum number of cached histories")
	viper.BindPFlag("cache.local_size", rootCmd.PersistentFlags().Lookup("cache-size"))

	// Fetch pacing
	viper.BindEnv("fetch.pacing", "WP_FETCH_PACING")
	rootCmd.PersistentFlags().Duration("fetch-pacing", 300*time.Millisecond, "Delay between upstream lookups")
	viper.BindPFlag("fetch.pacing", rootCmd.PersistentFlags().Lookup("fetch-pacing"))

	// Logging configuration
	viper.BindEnv("log.level", "WP_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "WP_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "WP_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stdout", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	viper.BindEnv("log.pretty", "WP_LOG_PRETTY")
	rootCmd.PersistentFlags().Bool("log-pretty", false, "Use the console writer for log output")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Tracing
	viper.BindEnv("otlp.endpoint", "OTLP_ENDPOINT")
	rootCmd.PersistentFlags().String("otlp-endpoint", "", "OTLP trace collector endpoint, blank disables tracing")
	viper.BindPFlag("otlp.endpoint", rootCmd.PersistentFlags().Lookup("otlp-endpoint"))
}

var rootCmd = &cobra.Command{
	Use:     "wpapi",
	Version: common.CurrentVersion.String(),
	Short:   "WealthPath projects portfolio balances from historical market data",
	Long: `WealthPath combines historical annual returns and dividend yields for a
weighted set of assets and projects an account balance forward under a
configurable withdrawal and dividend-reinvestment policy.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
