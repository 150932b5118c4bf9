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

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/orgdesk/config"
	"github.com/zintix-labs/orgdesk/model"
)

func TestOpenMemory(t *testing.T) {
	h, err := Open(context.Background(), &config.Config{Store: config.StoreMemory}, nil)
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, config.StoreMemory, h.Kind)
	assert.Nil(t, h.Ping)

	id, err := model.NewUsers(h).Register(context.Background(), model.NewUser{
		FirstName: "Mem", LastName: "Store", Email: "mem@example.com", Password: "x",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestOpenUnknown(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Store: "redis"}, nil)
	assert.Error(t, err)
}

func TestOpenPostgresBadDSN(t *testing.T) {
	cfg := &config.Config{Store: config.StorePostgres, DB: config.DB{Host: "127.0.0.1", Port: "1", Database: "none"}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Open(ctx, cfg, nil)
	assert.Error(t, err)
}
