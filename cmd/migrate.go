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

	"github.com/spf13/cobra"

	"github.com/reversa-app/reversa/database"
)

// migrateCommands ensures the schema exists. The engine's tables are
// created idempotently, so running this repeatedly is safe.
func migrateCommands(app *reversaInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "create or update the reversa schema",
		Run: func(cmd *cobra.Command, args []string) {
			db, err := database.ConnectDB(app.cnf.DataSource.Dns)
			if err != nil {
				log.Fatalf("migration failed: %v", err)
			}
			defer db.Close()
			fmt.Println("schema is up to date")
		},
	}

	return cmd
}
