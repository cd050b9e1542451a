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
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/reversa-app/reversa/model"
)

// importCommands ingests a marketplace export file from the command line.
func importCommands(app *reversaInstance) *cobra.Command {
	var dryRun bool
	var autoCreate bool
	var batchKey string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "import a marketplace transaction export",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				log.Fatalf("failed to read %s: %v", args[0], err)
			}

			summary, err := app.reversa.ImportReturns(cmd.Context(), string(raw), model.ImportOptions{
				DryRun:     dryRun,
				AutoCreate: autoCreate,
				BatchKey:   batchKey,
				FileName:   filepath.Base(args[0]),
				Actor:      "cli",
			})
			if err != nil {
				log.Fatalf("import failed: %v", err)
			}

			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				log.Fatal(err)
			}
			fmt.Println(string(out))
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry", false, "preview only, commit nothing")
	cmd.Flags().BoolVar(&autoCreate, "autocreate", false, "create stub records for unmatched order ids")
	cmd.Flags().StringVar(&batchKey, "batch-key", "", "whole-batch idempotency key")

	return cmd
}
