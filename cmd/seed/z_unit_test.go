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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/orgdesk/config"
	"github.com/zintix-labs/orgdesk/errs"
	"github.com/zintix-labs/orgdesk/model"
	"github.com/zintix-labs/orgdesk/store/memstore"
)

func TestSeedCreatesUsersWithOrgs(t *testing.T) {
	st := memstore.NewDefault()
	opt := options{N: 25, Workers: 4, Domain: "example.com", Quiet: true}

	res, err := seed(context.Background(), st, opt, "hashed")
	require.NoError(t, err)
	assert.Equal(t, int64(25), res.Created)
	assert.Equal(t, 25, st.Len(model.TableUsers))
	assert.Equal(t, 25, st.Len(model.TableOrganisations))

	u, err := model.NewUsers(st).ByEmail(context.Background(), "demo00007@example.com")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Demo00007", u.FirstName)
}

func TestSeedSkipsExisting(t *testing.T) {
	st := memstore.NewDefault()
	opt := options{N: 5, Workers: 2, Domain: "example.com", Quiet: true}
	_, err := seed(context.Background(), st, opt, "hashed")
	require.NoError(t, err)

	opt.N = 8
	res, err := seed(context.Background(), st, opt, "hashed")
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Created)
	assert.Equal(t, int64(5), res.Skipped)
	assert.Equal(t, 8, st.Len(model.TableUsers))
}

func TestSeedRejectsBadOptions(t *testing.T) {
	_, err := seed(context.Background(), memstore.NewDefault(), options{N: 0, Workers: 1}, "x")
	assert.Error(t, err)
}

func TestSeedRequiresPostgres(t *testing.T) {
	err := checkTarget(&config.Config{Store: config.StoreMemory})
	require.Error(t, err)
	assert.Equal(t, errs.Warn, errs.Level(err))
	assert.NoError(t, checkTarget(&config.Config{Store: config.StorePostgres}))

	t.Setenv("STORE", config.StoreMemory)
	t.Setenv("JWT_SECRET", "s")
	assert.Error(t, run("does-not-exist.env", options{N: 1, Workers: 1, Quiet: true}))
}
