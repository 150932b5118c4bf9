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

// Package crud 是通用的參數化 CRUD 語句產生器。
//
// 每個操作先組成一個 Statement（Create/Read/Update/Delete 四選一），
// 再交給 Executor 執行。值一律以 placeholder 綁定；表名、欄位名只做白名單格式檢查，
// 必須是程式內固定的識別字，不可來自請求輸入。
package crud

import (
	"context"
	"maps"
	"regexp"
	"slices"

	"github.com/zintix-labs/orgdesk/errs"
)

// Op 是語句種類。
type Op uint8

const (
	OpCreate Op = iota + 1
	OpRead
	OpUpdate
	OpDelete
)

var opNames = map[Op]string{
	OpCreate: "create",
	OpRead:   "read",
	OpUpdate: "update",
	OpDelete: "delete",
}

func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}
	return "unknown"
}

// Value 是一個「欄位 = 值」配對。
type Value struct {
	Column string
	Arg    any
}

// Values 保留呼叫端給的順序；產生的 SQL 欄位順序與之一致。
type Values []Value

// Cols 把 map 轉成 Values，欄位依字典序排列（map 沒有順序，SQL 文字需要穩定）。
func Cols(m map[string]any) Values {
	out := make(Values, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, Value{Column: k, Arg: m[k]})
	}
	return out
}

// V 是單一 Value 的簡寫。
func V(col string, arg any) Value { return Value{Column: col, Arg: arg} }

func (vs Values) Columns() []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Column
	}
	return out
}

// Where 是等值條件的組合。
//
// Any=false 以 AND 串接（全部成立），Any=true 以 OR 串接（任一成立）。
// Conds 為空時：Read 不加 WHERE；Update/Delete 必須明確設定 AllRows，否則回傳 ErrUnbounded。
type Where struct {
	Conds   Values
	Any     bool
	AllRows bool
}

// AllOf 建立 AND 條件。
func AllOf(conds ...Value) Where { return Where{Conds: conds} }

// AnyOf 建立 OR 條件。
func AnyOf(conds ...Value) Where { return Where{Conds: conds, Any: true} }

// Everything 明確表示「不加條件、作用於整張表」。
func Everything() Where { return Where{AllRows: true} }

func (w Where) IsEmpty() bool { return len(w.Conds) == 0 }

func (w Where) combinator() string {
	if w.Any {
		return " OR "
	}
	return " AND "
}

// Statement 是一次資料存取的完整描述；只存活在單次呼叫內。
type Statement struct {
	Op        Op
	Table     string
	Fields    []string // Read 才使用；空值代表 *
	Values    Values   // Create 的欄位值 / Update 的 SET
	Where     Where    // Read/Update/Delete
	Returning string   // Create 才使用；空值代表不回傳
}

// Row 是一筆結果，以欄位名索引。
type Row map[string]any

// Rows 是多筆結果。nil 表示「沒有任何資料」。
type Rows []Row

// Result 是 Exec 的結果。Returned 只有在 Statement.Returning 非空時有值。
type Result struct {
	RowsAffected int64
	Returned     any
}

// Executor 是資料庫能力的抽象：Exec 用於寫入，Query 用於讀取。
//
// 實作端可以把 Statement 轉成 SQL（見 Positional / Named），
// 也可以直接解讀 Statement 的結構（例如記憶體實作）。
type Executor interface {
	Exec(ctx context.Context, st Statement) (Result, error)
	Query(ctx context.Context, st Statement) (Rows, error)
}

var (
	ErrIdentifier = errs.NewFatal("invalid sql identifier")
	ErrNoValues   = errs.NewFatal("statement has no values")
	ErrDupColumn  = errs.NewFatal("duplicate column in statement")
	ErrDupBind    = errs.NewFatal("duplicate bind name in statement")
	ErrUnbounded  = errs.NewFatal("update/delete without conditions requires Where.AllRows")
	ErrOp         = errs.NewFatal("unknown statement op")
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdent 回報 s 是否為合法的識別字（name 或 schema.name）。
func ValidIdent(s string) bool { return identRe.MatchString(s) }

// Validate 檢查語句在結構上是否可執行；所有 Executor 實作應在執行前呼叫。
func (st Statement) Validate() error {
	if err := st.validateShape(); err != nil {
		return err
	}
	return st.checkBinds()
}

// checkBinds 確保 placeholder 名稱不重複；不同欄位可能得到同一個名稱
// （s.a 與 s_a、SET where_a 與 WHERE a），Named 會因此吃掉其中一個值。
func (st Statement) checkBinds() error {
	_, binds := st.Render(Colon)
	seen := make(map[string]struct{}, len(binds))
	for _, b := range binds {
		if _, dup := seen[b.Name]; dup {
			return errs.WrapWithExtra(ErrDupBind, "bind", b.Name)
		}
		seen[b.Name] = struct{}{}
	}
	return nil
}

func (st Statement) validateShape() error {
	if !ValidIdent(st.Table) {
		return errs.WrapWithExtra(ErrIdentifier, "table", st.Table)
	}
	switch st.Op {
	case OpCreate:
		if err := checkValues(st.Values); err != nil {
			return err
		}
		if st.Returning != "" && !ValidIdent(st.Returning) {
			return errs.WrapWithExtra(ErrIdentifier, "returning", st.Returning)
		}
		return nil
	case OpRead:
		for _, f := range st.Fields {
			if !ValidIdent(f) {
				return errs.WrapWithExtra(ErrIdentifier, "field", f)
			}
		}
		return checkConds(st.Where)
	case OpUpdate:
		if err := checkValues(st.Values); err != nil {
			return err
		}
		return checkBounded(st.Where)
	case OpDelete:
		return checkBounded(st.Where)
	default:
		return errs.WrapWithExtra(ErrOp, "validate", st.Op.String())
	}
}

func checkValues(vs Values) error {
	if len(vs) == 0 {
		return ErrNoValues
	}
	return checkColumns(vs)
}

func checkColumns(vs Values) error {
	seen := make(map[string]struct{}, len(vs))
	for _, v := range vs {
		if !ValidIdent(v.Column) {
			return errs.WrapWithExtra(ErrIdentifier, "column", v.Column)
		}
		if _, dup := seen[v.Column]; dup {
			return errs.WrapWithExtra(ErrDupColumn, "column", v.Column)
		}
		seen[v.Column] = struct{}{}
	}
	return nil
}

func checkConds(w Where) error {
	return checkColumns(w.Conds)
}

func checkBounded(w Where) error {
	if w.IsEmpty() && !w.AllRows {
		return ErrUnbounded
	}
	return checkConds(w)
}
