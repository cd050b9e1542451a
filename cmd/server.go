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
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/reversa-app/reversa/api"
)

// serverCommands starts the HTTP surface of the engine.
func serverCommands(app *reversaInstance) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "start reversa server",
		Run: func(cmd *cobra.Command, args []string) {
			router := api.NewAPI(app.reversa).Router()

			server := &http.Server{
				Addr:              ":" + app.cnf.Server.Port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			log.Printf("Starting server on %s\n", app.cnf.Server.Port)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		},
	}

	return cmd
}
