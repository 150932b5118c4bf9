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
	"strconv"
	"strings"
)

// Style 決定 placeholder 的寫法。
type Style uint8

const (
	Colon  Style = iota // :name
	At                  // @name（pgx.NamedArgs）
	Dollar              // $1, $2 ...（PostgreSQL 原生）
)

// Bind 是一個 placeholder 與其綁定值；順序即 placeholder 在 SQL 中出現的順序。
type Bind struct {
	Name string
	Arg  any
}

// whereBindPrefix 讓 UPDATE 的 WHERE 綁定名不與 SET 欄位撞名（SET a = :a WHERE a = :where_a）。
const whereBindPrefix = "where_"

// Render 把 Statement 轉成 SQL 文字與綁定清單。
// 呼叫前應先 Validate；Render 本身不檢查識別字。
func (st Statement) Render(style Style) (string, []Bind) {
	r := renderer{style: style}
	var sb strings.Builder

	switch st.Op {
	case OpCreate:
		sb.WriteString("INSERT INTO ")
		sb.WriteString(st.Table)
		sb.WriteString(" (")
		sb.WriteString(strings.Join(st.Values.Columns(), ", "))
		sb.WriteString(") VALUES (")
		for i, v := range st.Values {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(r.bind(v.Column, v.Arg))
		}
		sb.WriteString(")")
		if st.Returning != "" {
			sb.WriteString(" RETURNING ")
			sb.WriteString(st.Returning)
		}

	case OpRead:
		sb.WriteString("SELECT ")
		if len(st.Fields) == 0 {
			sb.WriteString("*")
		} else {
			sb.WriteString(strings.Join(st.Fields, ", "))
		}
		sb.WriteString(" FROM ")
		sb.WriteString(st.Table)
		r.where(&sb, st.Where, "")

	case OpUpdate:
		sb.WriteString("UPDATE ")
		sb.WriteString(st.Table)
		sb.WriteString(" SET ")
		for i, v := range st.Values {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(v.Column)
			sb.WriteString(" = ")
			sb.WriteString(r.bind(v.Column, v.Arg))
		}
		r.where(&sb, st.Where, whereBindPrefix)

	case OpDelete:
		sb.WriteString("DELETE FROM ")
		sb.WriteString(st.Table)
		r.where(&sb, st.Where, "")
	}
	return sb.String(), r.binds
}

// SQL 回傳 :name 形式的 SQL，用於 log 與錯誤訊息。
func (st Statement) SQL() string {
	s, _ := st.Render(Colon)
	return s
}

// Named 回傳 SQL 與「名稱 -> 值」的綁定表（Colon 或 At 風格）。
func (st Statement) Named(style Style) (string, map[string]any) {
	s, binds := st.Render(style)
	args := make(map[string]any, len(binds))
	for _, b := range binds {
		args[b.Name] = b.Arg
	}
	return s, args
}

// Positional 回傳 $n 形式的 SQL 與依序排列的參數。
func (st Statement) Positional() (string, []any) {
	s, binds := st.Render(Dollar)
	args := make([]any, len(binds))
	for i, b := range binds {
		args[i] = b.Arg
	}
	return s, args
}

type renderer struct {
	style Style
	binds []Bind
}

func (r *renderer) bind(name string, arg any) string {
	n := bindName(name)
	r.binds = append(r.binds, Bind{Name: n, Arg: arg})
	switch r.style {
	case Dollar:
		return "$" + strconv.Itoa(len(r.binds))
	case At:
		return "@" + n
	default:
		return ":" + n
	}
}

func (r *renderer) where(sb *strings.Builder, w Where, prefix string) {
	if w.IsEmpty() {
		return
	}
	sb.WriteString(" WHERE ")
	for i, c := range w.Conds {
		if i > 0 {
			sb.WriteString(w.combinator())
		}
		sb.WriteString(c.Column)
		sb.WriteString(" = ")
		sb.WriteString(r.bind(prefix+c.Column, c.Arg))
	}
}

// bindName 把 schema.col 的 '.' 換掉，placeholder 名稱只能是單一識別字。
func bindName(col string) string {
	return strings.ReplaceAll(col, ".", "_")
}
