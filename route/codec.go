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
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/zintix-labs/orgdesk/errs"
)

// ParamType 是路由參數宣告的型別名稱（例如 "number"、"string"）。
type ParamType string

const (
	Number ParamType = "number"
	String ParamType = "string"
)

// Codec 把參數型別轉成正則片段。
//
// 片段會被嵌進 ^...$ 之間，因此不得含有錨點或 '/'，也不得是「什麼都吃」的 .*：
// 過寬的片段會讓前面宣告的路由吃掉後面的路由（first-match-wins）。
type Codec struct {
	patterns map[ParamType]string
	samples  map[ParamType]string // 每個型別一個合法值，用於 Shadowed 檢查
}

// DefaultCodec 回傳內建的型別表（number / string）。
func DefaultCodec() *Codec {
	return &Codec{
		patterns: map[ParamType]string{
			Number: `\d+`,
			String: `[a-zA-Z0-9\-_]+`,
		},
		samples: map[ParamType]string{
			Number: "1",
			String: "a",
		},
	}
}

// With 回傳多一個型別的新 Codec；原 Codec 不變（共享的預設表不可被改寫）。
// sample 必須是 pattern 可以完整匹配、且不含 '/' 的值。
func (c *Codec) With(t ParamType, pattern string, sample string) (*Codec, error) {
	if t == "" {
		return nil, errs.NewFatal("param type name required")
	}
	re, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, errs.WrapWithExtra(ErrCompile, "invalid param pattern", string(t)+": "+err.Error())
	}
	if re.MatchString("/") || re.MatchString("") {
		return nil, errs.WrapWithExtra(ErrCompile, "param pattern too wide", string(t))
	}
	if strings.Contains(sample, "/") || !re.MatchString(sample) {
		return nil, errs.WrapWithExtra(ErrCompile, "param sample does not match pattern", string(t)+": "+sample)
	}
	cp := &Codec{
		patterns: maps.Clone(c.patterns),
		samples:  maps.Clone(c.samples),
	}
	cp.patterns[t] = pattern
	cp.samples[t] = sample
	return cp, nil
}

// Pattern 取得型別對應的正則片段；未註冊的型別回傳 ErrUnknownParamType。
func (c *Codec) Pattern(t ParamType) (string, error) {
	p, ok := c.patterns[t]
	if !ok {
		return "", errs.WrapWithExtra(ErrUnknownParamType, "route param type", string(t))
	}
	return p, nil
}

func (c *Codec) sample(t ParamType) string {
	return c.samples[t]
}

// Types 以字典序列出已註冊的型別。
func (c *Codec) Types() []ParamType {
	return slices.Sorted(maps.Keys(c.patterns))
}
