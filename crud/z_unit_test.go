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

package crud

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder 記錄收到的語句，回傳預設結果。
type recorder struct {
	stmts []Statement
	rows  Rows
	res   Result
	err   error
}

func (r *recorder) Exec(_ context.Context, st Statement) (Result, error) {
	r.stmts = append(r.stmts, st)
	return r.res, r.err
}

func (r *recorder) Query(_ context.Context, st Statement) (Rows, error) {
	r.stmts = append(r.stmts, st)
	return r.rows, r.err
}

func (r *recorder) last() Statement { return r.stmts[len(r.stmts)-1] }

type pgLikeErr struct{ code string }

func (e pgLikeErr) Error() string    { return "ERROR: duplicate key (SQLSTATE " + e.code + ")" }
func (e pgLikeErr) SQLState() string { return e.code }

func TestCreateRendersInsert(t *testing.T) {
	ex := &recorder{res: Result{RowsAffected: 1, Returned: "u-1"}}
	ok, key, err := Create(context.Background(), ex, "users",
		Values{V("first_name", "Ada"), V("email", "ada@x.io")}, "user_id")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "u-1", key)

	st := ex.last()
	assert.Equal(t, "INSERT INTO users (first_name, email) VALUES (:first_name, :email) RETURNING user_id", st.SQL())

	sql, args := st.Positional()
	assert.Equal(t, "INSERT INTO users (first_name, email) VALUES ($1, $2) RETURNING user_id", sql)
	assert.Equal(t, []any{"Ada", "ada@x.io"}, args)
}

func TestCreateWithoutReturning(t *testing.T) {
	ex := &recorder{res: Result{RowsAffected: 1}}
	ok, key, err := Create(context.Background(), ex, "user_organisation",
		Cols(map[string]any{"user_id": "u", "org_id": "o"}), "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Nil(t, key)
	assert.Equal(t, "INSERT INTO user_organisation (org_id, user_id) VALUES (:org_id, :user_id)", ex.last().SQL())
}

func TestReadRendersSelect(t *testing.T) {
	cases := []struct {
		q    Query
		want string
	}{
		{Query{Table: "users"}, "SELECT * FROM users"},
		{Query{Table: "users", Fields: []string{"user_id", "email"}}, "SELECT user_id, email FROM users"},
		{Query{Table: "users", Where: AllOf(V("a", 1), V("b", 2))}, "SELECT * FROM users WHERE a = :a AND b = :b"},
		{Query{Table: "users", Where: AnyOf(V("a", 1), V("b", 2))}, "SELECT * FROM users WHERE a = :a OR b = :b"},
	}
	for _, tc := range cases {
		ex := &recorder{}
		_, err := Read(context.Background(), ex, tc.q)
		require.NoError(t, err)
		assert.Equal(t, tc.want, ex.last().SQL())
	}
}

func TestReadAbsentIsNil(t *testing.T) {
	ex := &recorder{rows: Rows{}}
	rows, err := Read(context.Background(), ex, Query{Table: "users", Where: AllOf(V("email", "x"))})
	require.NoError(t, err)
	assert.Nil(t, rows)

	row, err := ReadOne(context.Background(), ex, Query{Table: "users"})
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestReadFirstOrAll(t *testing.T) {
	ex := &recorder{rows: Rows{{"id": 1}, {"id": 2}, {"id": 3}}}

	rows, err := Read(context.Background(), ex, Query{Table: "t"})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0]["id"])

	rows, err = Read(context.Background(), ex, Query{Table: "t", All: true})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestUpdateSeparatesSetAndWhereBinds(t *testing.T) {
	ex := &recorder{}
	ok, err := Update(context.Background(), ex, "users",
		Values{V("email", "new@x.io")}, AllOf(V("email", "old@x.io")))
	require.NoError(t, err)
	assert.True(t, ok)

	st := ex.last()
	sql, args := st.Named(Colon)
	assert.Equal(t, "UPDATE users SET email = :email WHERE email = :where_email", sql)
	assert.Equal(t, map[string]any{"email": "new@x.io", "where_email": "old@x.io"}, args)

	sql, named := st.Named(At)
	assert.Equal(t, "UPDATE users SET email = @email WHERE email = @where_email", sql)
	assert.Len(t, named, 2)

	sql, pos := st.Positional()
	assert.Equal(t, "UPDATE users SET email = $1 WHERE email = $2", sql)
	assert.Equal(t, []any{"new@x.io", "old@x.io"}, pos)
}

func TestDeleteRenders(t *testing.T) {
	ex := &recorder{}
	_, err := Delete(context.Background(), ex, "user_organisation", AnyOf(V("user_id", "u"), V("org_id", "o")))
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM user_organisation WHERE user_id = :user_id OR org_id = :org_id", ex.last().SQL())
}

func TestUnboundedWritesNeedExplicitFlag(t *testing.T) {
	ex := &recorder{}
	_, err := Update(context.Background(), ex, "users", Values{V("phone", "")}, Where{})
	assert.ErrorIs(t, err, ErrUnbounded)
	_, err = Delete(context.Background(), ex, "users", Where{})
	assert.ErrorIs(t, err, ErrUnbounded)
	assert.Empty(t, ex.stmts)

	_, err = Update(context.Background(), ex, "users", Values{V("phone", "")}, Everything())
	require.NoError(t, err)
	assert.Equal(t, "UPDATE users SET phone = :phone", ex.last().SQL())

	_, err = Delete(context.Background(), ex, "users", Everything())
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM users", ex.last().SQL())
}

func TestCollidingBindNamesRejected(t *testing.T) {
	ex := &recorder{}
	_, err := Update(context.Background(), ex, "users",
		Values{V("where_a", "x")}, AllOf(V("a", "y")))
	assert.ErrorIs(t, err, ErrDupBind)

	_, err = Read(context.Background(), ex, Query{Table: "users",
		Where: AnyOf(V("s.a", 1), V("s_a", 2))})
	assert.ErrorIs(t, err, ErrDupBind)

	_, _, err = Create(context.Background(), ex, "users", Values{V("s.a", 1), V("s_a", 2)}, "")
	assert.ErrorIs(t, err, ErrDupBind)
	assert.Empty(t, ex.stmts)

	// 同名欄位出現在 SET 與 WHERE 仍然合法
	_, err = Update(context.Background(), ex, "users", Values{V("a", "x")}, AllOf(V("a", "y")))
	require.NoError(t, err)
}

func TestIdentifierValidation(t *testing.T) {
	ex := &recorder{}
	_, _, err := Create(context.Background(), ex, "users; DROP TABLE users", Values{V("a", 1)}, "")
	assert.ErrorIs(t, err, ErrIdentifier)

	_, _, err = Create(context.Background(), ex, "users", Values{V("a = 1 --", 1)}, "")
	assert.ErrorIs(t, err, ErrIdentifier)

	_, err = Read(context.Background(), ex, Query{Table: "users", Fields: []string{"*"}})
	assert.ErrorIs(t, err, ErrIdentifier)

	_, _, err = Create(context.Background(), ex, "users", nil, "")
	assert.ErrorIs(t, err, ErrNoValues)

	_, _, err = Create(context.Background(), ex, "users", Values{V("a", 1), V("a", 2)}, "")
	assert.ErrorIs(t, err, ErrDupColumn)
	assert.Empty(t, ex.stmts)

	assert.True(t, ValidIdent("public.users"))
	assert.False(t, ValidIdent("a.b.c"))
	assert.False(t, ValidIdent("1abc"))
}

func TestValuesNeverReachSQLText(t *testing.T) {
	ex := &recorder{}
	evil := "x'); DROP TABLE users; --"
	_, _, err := Create(context.Background(), ex, "users", Values{V("email", evil)}, "")
	require.NoError(t, err)
	sql, args := ex.last().Positional()
	assert.NotContains(t, sql, "DROP")
	assert.Equal(t, []any{evil}, args)
}

func TestDataAccessErrorCarriesSQL(t *testing.T) {
	ex := &recorder{err: pgLikeErr{code: UniqueViolation}}
	_, _, err := Create(context.Background(), ex, "users", Values{V("email", "a@b.c")}, "user_id")
	require.Error(t, err)

	var dae *DataAccessError
	require.True(t, errors.As(err, &dae))
	assert.Equal(t, OpCreate, dae.Op)
	assert.Contains(t, dae.SQL, "INSERT INTO users")
	assert.Contains(t, err.Error(), "SQLSTATE")
	assert.True(t, IsConflict(err))

	ex.err = pgLikeErr{code: "42P01"}
	_, err = Read(context.Background(), ex, Query{Table: "users"})
	assert.False(t, IsConflict(err))
	assert.False(t, IsConflict(fmt.Errorf("plain")))
}

func TestRowString(t *testing.T) {
	id := uuid.New()
	r := Row{"a": [16]byte(id), "b": []byte("bytes"), "c": int64(7), "d": nil}
	assert.Equal(t, id.String(), r.String("a"))
	assert.Equal(t, "bytes", r.String("b"))
	assert.Equal(t, "7", r.String("c"))
	assert.Equal(t, "", r.String("d"))
	assert.Equal(t, "", r.String("missing"))
	assert.Equal(t, []string{"7"}, Rows{r}.Strings("c"))
}
