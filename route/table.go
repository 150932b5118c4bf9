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

// Package route 負責把宣告式路由表編譯成 matcher，並依宣告順序做 first-match-wins 比對。
//
// Table 在啟動時建立一次，之後只讀；多個請求 goroutine 可同時呼叫 Match，不需要鎖。
package route

import (
	"strings"

	"github.com/zintix-labs/orgdesk/errs"
)

// Route 是一筆宣告與其編譯結果。
type Route struct {
	Declaration
	*Compiled
}

// Match 是一次比對的結果，只存活在單一請求內。
type Match struct {
	Route  *Route
	Index  int // Route 在表中的序號
	Params map[string]string
	Args   []string // 依 Order 排序，直接餵給 handler
}

// Table 是編譯好的路由表。順序即優先序：先宣告者先比對。
type Table struct {
	routes []Route
	codec  *Codec
}

// NewTable 依宣告順序編譯整張表；任一筆失敗即回傳錯誤（啟動應中止）。
func NewTable(c *Codec, decls ...Declaration) (*Table, error) {
	if c == nil {
		c = DefaultCodec()
	}
	t := &Table{
		routes: make([]Route, 0, len(decls)),
		codec:  c,
	}
	seen := make(map[string]struct{}, len(decls))
	for _, d := range decls {
		d.Template = normalize(d.Template)
		d.Controller = strings.TrimSpace(d.Controller)
		d.Action = strings.TrimSpace(d.Action)
		if d.Controller == "" || d.Action == "" {
			return nil, errs.WrapWithExtra(ErrCompile, "controller and action required", d.Template)
		}
		if _, dup := seen[d.Template]; dup {
			return nil, errs.WrapWithExtra(ErrCompile, "duplicate route template", d.Template)
		}
		seen[d.Template] = struct{}{}

		cp, err := Compile(d, c)
		if err != nil {
			return nil, err
		}
		t.routes = append(t.routes, Route{Declaration: d, Compiled: cp})
	}
	return t, nil
}

// Match 以請求路徑比對路由表，回傳第一筆匹配。
func (t *Table) Match(path string) (Match, bool) {
	subject := Subject(path)
	for i := range t.routes {
		rt := &t.routes[i]
		if !rt.Matcher.MatchString(subject) {
			continue
		}
		args, params := rt.Extract(subject)
		return Match{Route: rt, Index: i, Params: params, Args: args}, true
	}
	return Match{}, false
}

// Routes 回傳路由的複本（依宣告順序）。
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	copy(out, t.routes)
	return out
}

func (t *Table) Len() int { return len(t.routes) }

// Shadow 表示 Route 的代表路徑會先被 By 吃掉。
type Shadow struct {
	Route  Route
	By     Route
	Sample string
}

// Shadowed 找出被前面路由遮蔽的宣告。
//
// 每筆路由以 Codec 的 sample 值填入參數產生一條代表路徑，
// 若更早宣告的路由能匹配這條路徑，就回報一筆 Shadow。
// 這是檢查用的近似：沒被回報不代表任何路徑都輪得到它。
func (t *Table) Shadowed() []Shadow {
	var out []Shadow
	for j := range t.routes {
		sample := t.sampleOf(&t.routes[j])
		for i := 0; i < j; i++ {
			if t.routes[i].Matcher.MatchString(sample) {
				out = append(out, Shadow{Route: t.routes[j], By: t.routes[i], Sample: "/" + sample})
				break
			}
		}
	}
	return out
}

func (t *Table) sampleOf(rt *Route) string {
	segs := strings.Split(rt.Template, "/")
	for _, b := range rt.Order {
		segs[b.Index] = t.codec.sample(rt.Params[b.Name])
	}
	return strings.Join(segs, "/")
}
