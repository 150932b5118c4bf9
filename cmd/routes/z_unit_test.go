// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/orgdesk/route"
)

func TestRenderDefaultTable(t *testing.T) {
	table, err := route.Default()
	require.NoError(t, err)
	out := render("built-in routes", table)

	assert.Contains(t, out, "built-in routes (6)")
	assert.Contains(t, out, "Organisation.addUser")
	assert.Contains(t, out, "orgId:string")
	assert.Contains(t, out, "/auth/register")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := load("does/not/exist.yaml")
	assert.Error(t, err)
}
