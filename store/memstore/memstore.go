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

// Package memstore 是記憶體版的 crud.Executor，直接解讀 Statement 結構（不解析 SQL）。
//
// 用於開發模式（-store memory）與測試。支援：
//   - 主鍵自動產生（uuid）
//   - unique 限制（違反時回傳 SQLSTATE 23505）
//   - InTx：在副本上執行，成功才整份換回
package memstore

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/zintix-labs/orgdesk/crud"
)

// Error 模擬 driver 錯誤，帶 SQLSTATE。
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string    { return e.Message + " (SQLSTATE " + e.Code + ")" }
func (e *Error) SQLState() string { return e.Code }

const undefinedTable = "42P01"

// Table 描述一張表的限制。
type Table struct {
	Name    string
	Key     string     // 空值代表沒有自動主鍵
	Uniques [][]string // 每組欄位的值組合必須唯一
}

type table struct {
	def  Table
	rows []crud.Row
}

type Store struct {
	txMu sync.Mutex   // 寫入與交易互斥
	mu   sync.RWMutex // 保護 tables
	tabs map[string]*table
}

// New 建立空的 Store 並定義 tables。
func New(defs ...Table) *Store {
	s := &Store{tabs: make(map[string]*table, len(defs))}
	for _, d := range defs {
		s.tabs[d.Name] = &table{def: d}
	}
	return s
}

// NewDefault 建立 users / organisations / user_organisation 三張表。
func NewDefault() *Store {
	return New(
		Table{Name: "users", Key: "user_id", Uniques: [][]string{{"user_id"}, {"email"}}},
		Table{Name: "organisations", Key: "org_id", Uniques: [][]string{{"org_id"}}},
		Table{Name: "user_organisation", Uniques: [][]string{{"user_id", "org_id"}}},
	)
}

func (s *Store) Exec(_ context.Context, st crud.Statement) (crud.Result, error) {
	if err := st.Validate(); err != nil {
		return crud.Result{}, err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.table(st.Table)
	if err != nil {
		return crud.Result{}, err
	}
	switch st.Op {
	case crud.OpCreate:
		return t.insert(st)
	case crud.OpUpdate:
		return t.update(st)
	case crud.OpDelete:
		return t.delete(st), nil
	default:
		return crud.Result{}, &Error{Code: "42601", Message: "exec does not accept " + st.Op.String()}
	}
}

func (s *Store) Query(_ context.Context, st crud.Statement) (crud.Rows, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.table(st.Table)
	if err != nil {
		return nil, err
	}
	var out crud.Rows
	for _, r := range t.rows {
		if !matches(r, st.Where) {
			continue
		}
		out = append(out, project(r, st.Fields))
	}
	return out, nil
}

// InTx 在資料副本上執行 fn，fn 成功才換回；期間其他寫入會等待。
func (s *Store) InTx(ctx context.Context, fn func(ex crud.Executor) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	child := &Store{tabs: cloneTables(s.tabs)}
	s.mu.RUnlock()

	if err := fn(child); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.tabs = child.tabs
	s.mu.Unlock()
	return nil
}

// Len 回傳表中的資料筆數（測試與 seed 用）。
func (s *Store) Len(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tabs[name]; ok {
		return len(t.rows)
	}
	return 0
}

func (s *Store) Close() {}

func (s *Store) table(name string) (*table, error) {
	t, ok := s.tabs[name]
	if !ok {
		return nil, &Error{Code: undefinedTable, Message: `relation "` + name + `" does not exist`}
	}
	return t, nil
}

func (t *table) insert(st crud.Statement) (crud.Result, error) {
	row := make(crud.Row, len(st.Values)+1)
	for _, v := range st.Values {
		row[v.Column] = v.Arg
	}
	if t.def.Key != "" {
		if _, ok := row[t.def.Key]; !ok {
			row[t.def.Key] = uuid.NewString()
		}
	}
	if err := t.checkUnique(row, -1); err != nil {
		return crud.Result{}, err
	}
	t.rows = append(t.rows, row)

	res := crud.Result{RowsAffected: 1}
	if st.Returning != "" {
		res.Returned = row[st.Returning]
	}
	return res, nil
}

func (t *table) update(st crud.Statement) (crud.Result, error) {
	var n int64
	next := slices.Clone(t.rows)
	for i, r := range next {
		if !matches(r, st.Where) {
			continue
		}
		nr := maps.Clone(r)
		for _, v := range st.Values {
			nr[v.Column] = v.Arg
		}
		next[i] = nr
		n++
	}
	// 全部套用後再檢查 unique，避免部分更新
	old := t.rows
	t.rows = next
	for i := range next {
		if err := t.checkUnique(next[i], i); err != nil {
			t.rows = old
			return crud.Result{}, err
		}
	}
	return crud.Result{RowsAffected: n}, nil
}

func (t *table) delete(st crud.Statement) crud.Result {
	kept := t.rows[:0:0]
	var n int64
	for _, r := range t.rows {
		if matches(r, st.Where) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	t.rows = kept
	return crud.Result{RowsAffected: n}
}

// checkUnique 檢查 row 與其他列（略過 skip）是否違反 unique 限制。
func (t *table) checkUnique(row crud.Row, skip int) error {
	for _, cols := range t.def.Uniques {
		key, ok := uniqueKey(row, cols)
		if !ok {
			continue
		}
		for i, other := range t.rows {
			if i == skip {
				continue
			}
			if k, ok := uniqueKey(other, cols); ok && k == key {
				return &Error{
					Code:    crud.UniqueViolation,
					Message: "duplicate key value violates unique constraint " + t.def.Name + "_" + strings.Join(cols, "_") + "_key",
				}
			}
		}
	}
	return nil
}

// uniqueKey 回傳欄位值組合；任一欄位為 NULL 時不參與 unique 比較（與 SQL 相同）。
func uniqueKey(r crud.Row, cols []string) (string, bool) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		v, ok := r[c]
		if !ok || v == nil {
			return "", false
		}
		parts[i] = crud.AsString(v)
	}
	return strings.Join(parts, "\x00"), true
}

func matches(r crud.Row, w crud.Where) bool {
	if w.IsEmpty() {
		return true
	}
	for _, c := range w.Conds {
		eq := crud.AsString(r[c.Column]) == crud.AsString(c.Arg)
		if w.Any && eq {
			return true
		}
		if !w.Any && !eq {
			return false
		}
	}
	return !w.Any
}

func project(r crud.Row, fields []string) crud.Row {
	if len(fields) == 0 {
		return maps.Clone(r)
	}
	out := make(crud.Row, len(fields))
	for _, f := range fields {
		out[f] = r[f]
	}
	return out
}

func cloneTables(src map[string]*table) map[string]*table {
	out := make(map[string]*table, len(src))
	for name, t := range src {
		rows := make([]crud.Row, len(t.rows))
		for i, r := range t.rows {
			rows[i] = maps.Clone(r)
		}
		out[name] = &table{def: t.def, rows: rows}
	}
	return out
}
