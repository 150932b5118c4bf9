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

package route

import (
	"regexp"
	"strings"

	"github.com/zintix-labs/orgdesk/errs"
)

var (
	ErrCompile          = errs.NewFatal("route compile failed")
	ErrMissingParamType = errs.NewFatal("route param has no declared type")
	ErrUnknownParamType = errs.NewFatal("unknown route param type")
)

const paramMarker = ':'

// Declaration 是路由表中的一筆宣告（啟動時載入，之後唯讀）。
type Declaration struct {
	Template   string               `yaml:"-" json:"-"`
	Controller string               `yaml:"controller" json:"controller"`
	Action     string               `yaml:"action" json:"action"`
	Params     map[string]ParamType `yaml:"params" json:"params"`
	Auth       bool                 `yaml:"authentication" json:"authentication"`
}

// Binding 記錄「第 Index 段」對應的參數名稱。
type Binding struct {
	Index int
	Name  string
}

// Compiled 是編譯後的 matcher：整段錨定的正則 + 依出現順序排列的參數綁定。
//
// 參數抽取依段落位置（Index）而不是 capture group，
// 因此 len(Order) 恆等於樣板中 ':' 開頭的段數。
type Compiled struct {
	Matcher *regexp.Regexp
	Order   []Binding
}

// Compile 把路由樣板編譯成 Compiled。
//
//   - ":name" 段：以 Codec 取得型別片段，缺少型別宣告回傳 ErrMissingParamType。
//   - 其他段：以 regexp.QuoteMeta 轉義後原樣嵌入（樣板字面值永遠不會被當成正則語法）。
//   - 樣板開頭的 '/' 會被忽略，與請求路徑去掉開頭 '/' 的規則一致。
func Compile(d Declaration, c *Codec) (*Compiled, error) {
	if c == nil {
		c = DefaultCodec()
	}
	tpl := normalize(d.Template)
	segs := strings.Split(tpl, "/")
	parts := make([]string, len(segs))
	order := make([]Binding, 0, len(d.Params))
	seen := make(map[string]struct{}, len(d.Params))

	for i, seg := range segs {
		if len(seg) == 0 || seg[0] != paramMarker {
			parts[i] = regexp.QuoteMeta(seg)
			continue
		}
		name := seg[1:]
		if name == "" {
			return nil, errs.WrapWithExtra(ErrCompile, "empty param name", d.Template)
		}
		if _, dup := seen[name]; dup {
			return nil, errs.WrapWithExtra(ErrCompile, "duplicate param name", d.Template+": "+name)
		}
		seen[name] = struct{}{}

		typ, ok := d.Params[name]
		if !ok {
			return nil, errs.WrapWithExtra(ErrMissingParamType, "compile route", d.Template+": "+name)
		}
		frag, err := c.Pattern(typ)
		if err != nil {
			return nil, errs.WrapWithExtra(err, "compile route", d.Template+": "+name)
		}
		parts[i] = "(?:" + frag + ")"
		order = append(order, Binding{Index: i, Name: name})
	}

	re, err := regexp.Compile("^" + strings.Join(parts, "/") + "$")
	if err != nil {
		return nil, errs.WrapWithExtra(ErrCompile, "regexp", d.Template+": "+err.Error())
	}
	return &Compiled{Matcher: re, Order: order}, nil
}

// Extract 依 Order 從已匹配的 subject 取出參數（位置對應，非 capture group）。
// args 依 Order 排序，params 以名稱索引。
func (c *Compiled) Extract(subject string) (args []string, params map[string]string) {
	segs := strings.Split(subject, "/")
	args = make([]string, 0, len(c.Order))
	params = make(map[string]string, len(c.Order))
	for _, b := range c.Order {
		v := ""
		if b.Index < len(segs) {
			v = segs[b.Index]
		}
		args = append(args, v)
		params[b.Name] = v
	}
	return args, params
}

// Subject 把請求路徑轉成比對用的 subject（去掉開頭的 '/'）。
func Subject(path string) string {
	return strings.TrimPrefix(path, "/")
}

func normalize(tpl string) string {
	return strings.TrimPrefix(strings.TrimSpace(tpl), "/")
}
