/*
Copyright 2024 Reversa Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/reversa-app/reversa"
	"github.com/reversa-app/reversa/config"
	"github.com/reversa-app/reversa/database"
	"github.com/reversa-app/reversa/internal/notification"
)

// Reversa wraps the root cobra command of the CLI.
type Reversa struct {
	cmd *cobra.Command
}

// reversaInstance holds the engine and its configuration for subcommands.
type reversaInstance struct {
	reversa *reversa.Reversa
	cnf     *config.Configuration
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and wires the engine before any
// subcommand executes.
func preRun(app *reversaInstance, configFile *string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(*configFile)
		if err != nil {
			log.Fatal("error loading config", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		engine, err := setupReversa(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.reversa = engine
		app.cnf = cnf

		return nil
	}
}

func setupReversa(cfg *config.Configuration) (*reversa.Reversa, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %w", err)
	}

	engine, err := reversa.NewReversa(db)
	if err != nil {
		return nil, fmt.Errorf("error creating reversa: %w", err)
	}
	return engine, nil
}

// NewCLI builds the command tree.
func NewCLI() *Reversa {
	var configFile string
	app := &reversaInstance{}

	var rootCmd = &cobra.Command{
		Use:   "reversa",
		Short: "Return cost reconciliation engine",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "./reversa.json", "Configuration file for reversa")
	rootCmd.PersistentPreRunE = preRun(app, &configFile)

	rootCmd.AddCommand(serverCommands(app))
	rootCmd.AddCommand(migrateCommands(app))
	rootCmd.AddCommand(importCommands(app))

	return &Reversa{cmd: rootCmd}
}

func (w Reversa) executeCLI() {
	if err := w.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()
	cli := NewCLI()
	cli.executeCLI()
}
