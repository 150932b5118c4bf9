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
)

// Query 是 Read 的參數。All=false 時最多只回傳第一筆。
type Query struct {
	Table  string
	Fields []string
	Where  Where
	All    bool
}

// Create 插入一筆資料。
// returning 非空時回傳該欄位的值（例如自動產生的主鍵），否則 key 為 nil。
func Create(ctx context.Context, ex Executor, table string, values Values, returning string) (ok bool, key any, err error) {
	st := Statement{Op: OpCreate, Table: table, Values: values, Returning: returning}
	if err := st.Validate(); err != nil {
		return false, nil, err
	}
	res, err := ex.Exec(ctx, st)
	if err != nil {
		return false, nil, wrap(st, err)
	}
	return true, res.Returned, nil
}

// Read 查詢資料。沒有任何資料時回傳 nil（不是空切片），
// 讓呼叫端能分辨「查無資料」與「查到了」。
func Read(ctx context.Context, ex Executor, q Query) (Rows, error) {
	st := Statement{Op: OpRead, Table: q.Table, Fields: q.Fields, Where: q.Where}
	if err := st.Validate(); err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, st)
	if err != nil {
		return nil, wrap(st, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if !q.All {
		return rows[:1], nil
	}
	return rows, nil
}

// ReadOne 取第一筆；查無資料回傳 nil Row。
func ReadOne(ctx context.Context, ex Executor, q Query) (Row, error) {
	q.All = false
	rows, err := Read(ctx, ex, q)
	if err != nil || rows == nil {
		return nil, err
	}
	return rows[0], nil
}

// Update 以 set 更新符合 where 的資料。
// where 為空時必須設定 AllRows（見 Everything），否則回傳 ErrUnbounded。
func Update(ctx context.Context, ex Executor, table string, set Values, where Where) (bool, error) {
	st := Statement{Op: OpUpdate, Table: table, Values: set, Where: where}
	if err := st.Validate(); err != nil {
		return false, err
	}
	if _, err := ex.Exec(ctx, st); err != nil {
		return false, wrap(st, err)
	}
	return true, nil
}

// Delete 刪除符合 where 的資料；空條件的規則同 Update。
func Delete(ctx context.Context, ex Executor, table string, where Where) (bool, error) {
	st := Statement{Op: OpDelete, Table: table, Where: where}
	if err := st.Validate(); err != nil {
		return false, err
	}
	if _, err := ex.Exec(ctx, st); err != nil {
		return false, wrap(st, err)
	}
	return true, nil
}

// DataAccessError 包住執行失敗的語句文字與底層 driver 錯誤。
type DataAccessError struct {
	Op    Op
	SQL   string
	Cause error
}

func (e *DataAccessError) Error() string {
	return "data access " + e.Op.String() + " failed: " + e.SQL + ": " + e.Cause.Error()
}

func (e *DataAccessError) Unwrap() error { return e.Cause }

func wrap(st Statement, err error) error {
	var dae *DataAccessError
	if errors.As(err, &dae) {
		return err
	}
	return &DataAccessError{Op: st.Op, SQL: st.SQL(), Cause: err}
}

// UniqueViolation 是 PostgreSQL 的 unique_violation SQLSTATE。
const UniqueViolation = "23505"

type sqlStater interface {
	SQLState() string
}

// IsConflict 回報錯誤鏈上是否有 unique violation。
// 只依賴 SQLState() 介面（pgconn.PgError 與記憶體實作都提供），不綁定特定 driver。
func IsConflict(err error) bool {
	var s sqlStater
	return errors.As(err, &s) && s.SQLState() == UniqueViolation
}
