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
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wealthpath/wp-api/common"
	"github.com/wealthpath/wp-api/data"
	"github.com/wealthpath/wp-api/middleware"
	"github.com/wealthpath/wp-api/observability/opentelemetry"
	"github.com/wealthpath/wp-api/portfolio"
	"github.com/wealthpath/wp-api/router"
)

func init() {
	viper.BindEnv("server.port", "PORT")
	serveCmd.Flags().IntP("port", "p", 3000, "Port to run application server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the wp-api server",
	Long:  `Run HTTP server that implements the WealthPath projection API`,
	Run: func(cmd *cobra.Command, args []string) {
		common.SetupLogging()
		log.Info().Msg("initialized logging")

		if viper.GetString("otlp.endpoint") != "" {
			shutdown, err := opentelemetry.Setup()
			if err != nil {
				log.Fatal().Err(err).Msg("could not setup tracing")
			}
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Error().Err(err).Msg("could not shutdown tracing")
				}
			}()
		}

		manager := data.NewManager()
		combiner := portfolio.NewCombiner(manager)
		log.Info().Msg("initialized data framework")

		// Create new Fiber instance
		app := fiber.New()

		// shutdown cleanly on interrupt
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		go func() {
			sig := <-c // block until signal is read
			fmt.Printf("Received signal: '%s'; shutting down...\n", sig.String())
			if err := app.Shutdown(); err != nil {
				log.Fatal().Err(err).Msg("could not shutdown server")
			}
		}()

		// Configure CORS
		corsConfig := cors.Config{
			AllowHeaders: "*",
			AllowMethods: "GET,POST,HEAD",
		}
		app.Use(cors.New(corsConfig))

		// Setup logging middleware
		app.Use(middleware.NewLogger())

		// Setup routes
		router.SetupRoutes(app, combiner)

		// sweep stale histories so the cache doesn't pin memory
		tz, _ := time.LoadLocation("America/New_York") // New York is the reference time
		scheduler := gocron.NewScheduler(tz)
		scheduler.Every(1).Hours().Do(func() {
			manager.Cache().PurgeExpired()
		})
		scheduler.StartAsync()

		// Start server on http://${host}:${port}
		if err := app.Listen(":" + viper.GetString("server.port")); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	},
}
