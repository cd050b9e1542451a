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

package reversa

import (
	"github.com/reversa-app/reversa/database"
)

// Reversa is the return cost reconciliation engine. All persistent state
// lives behind the injected datasource; the engine keeps no cross-request
// cache of return-record state.
type Reversa struct {
	datasource database.IDataSource
}

// NewReversa builds an engine instance on top of the given datasource.
func NewReversa(ds database.IDataSource) (*Reversa, error) {
	return &Reversa{datasource: ds}, nil
}
