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

package model

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/orgdesk/crud"
	"github.com/zintix-labs/orgdesk/store/memstore"
)

var _ Store = (*memstore.Store)(nil)

func TestUsersLifecycle(t *testing.T) {
	ctx := context.Background()
	st := memstore.NewDefault()
	users := NewUsers(st)

	id, err := users.Register(ctx, NewUser{FirstName: "Ada", LastName: "L", Email: "ada@x.io", Password: "h"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	u, err := users.ByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, "h", u.Password)

	u, err = users.ByEmail(ctx, "ada@x.io")
	require.NoError(t, err)
	assert.Equal(t, id, u.UserID)

	u, err = users.ByEmail(ctx, "nobody@x.io")
	require.NoError(t, err)
	assert.Nil(t, u)

	_, err = users.Register(ctx, NewUser{FirstName: "B", Email: "ada@x.io"})
	assert.True(t, crud.IsConflict(err))
}

func TestOrganisationsMembership(t *testing.T) {
	ctx := context.Background()
	st := memstore.NewDefault()
	users := NewUsers(st)
	orgs := NewOrganisations(st)

	owner, err := users.Register(ctx, NewUser{FirstName: "O", Email: "o@x.io"})
	require.NoError(t, err)
	member, err := users.Register(ctx, NewUser{FirstName: "M", Email: "m@x.io"})
	require.NoError(t, err)

	orgID, err := orgs.Register(ctx, "O's Organisation", "", owner)
	require.NoError(t, err)

	created, err := orgs.CreatedBy(ctx, owner)
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, orgID, created[0].OrgID)

	ok, err := orgs.IsCreator(ctx, owner, orgID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = orgs.IsCreator(ctx, member, orgID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, orgs.AddUser(ctx, orgID, member))
	assert.True(t, crud.IsConflict(orgs.AddUser(ctx, orgID, member)))

	in, err := users.BelongsTo(ctx, member, orgID)
	require.NoError(t, err)
	assert.True(t, in)
	in, err = users.BelongsTo(ctx, owner, orgID)
	require.NoError(t, err)
	assert.False(t, in)

	ms, err := orgs.Members(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, []string{member}, ms)

	ids, err := orgs.OrgIDsOf(ctx, member)
	require.NoError(t, err)
	assert.Equal(t, []string{orgID}, ids)

	none, err := orgs.OrgIDsOf(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, none)

	org, err := orgs.ByID(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, org)
}

func TestUserJSONHidesPassword(t *testing.T) {
	bs, err := json.Marshal(User{UserID: "1", Password: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(bs), "secret")
	assert.Contains(t, string(bs), `"userId":"1"`)
}
