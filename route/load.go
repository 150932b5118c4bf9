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
	"bytes"
	"embed"
	"encoding/json"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/orgdesk/errs"
	"gopkg.in/yaml.v3"
)

// DefaultFile 是內嵌預設路由表的檔名。
const DefaultFile = "routes.yaml"

// FS 內嵌預設路由表，部署時不依賴工作目錄。
//
//go:embed routes.yaml
var FS embed.FS

// Default 編譯內嵌的預設路由表。
func Default() (*Table, error) {
	return LoadFile(FS, DefaultFile, nil)
}

// LoadFile 依副檔名（.yaml/.yml/.json）讀取並編譯路由表。
func LoadFile(fsys fs.FS, name string, c *Codec) (*Table, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errs.WrapWithExtra(err, "read route map", name)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return LoadJSON(data, c)
	case ".yaml", ".yml":
		return LoadYAML(data, c)
	default:
		return nil, errs.NewWithExtra(errs.Fatal, "unsupported route map format", name)
	}
}

// LoadYAML 解析 YAML 路由表。
//
// 頂層必須是 mapping（template -> 宣告）；以 yaml.Node 逐對讀取以保留宣告順序。
// 每筆宣告採嚴格模式：多寫/拼錯欄位就報錯。
func LoadYAML(data []byte, c *Codec) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshal route map yaml")
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errs.NewFatal("empty route map")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errs.NewFatal("route map must be a mapping of template -> route")
	}

	decls := make([]Declaration, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		tpl := root.Content[i].Value
		d, err := decodeStrict(root.Content[i+1])
		if err != nil {
			return nil, errs.WrapWithExtra(err, "decode route", tpl)
		}
		d.Template = tpl
		decls = append(decls, d)
	}
	return NewTable(c, decls...)
}

// LoadJSON 解析 JSON 路由表；以 token 串流讀取頂層物件以保留 key 順序。
func LoadJSON(data []byte, c *Codec) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, errs.Wrap(err, "failed to read route map json")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errs.NewFatal("route map must be a json object")
	}

	var decls []Declaration
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, errs.Wrap(err, "failed to read route template")
		}
		tpl, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, errs.WrapWithExtra(err, "decode route", tpl)
		}
		inner := json.NewDecoder(bytes.NewReader(raw))
		inner.DisallowUnknownFields()
		var d Declaration
		if err := inner.Decode(&d); err != nil {
			return nil, errs.WrapWithExtra(err, "decode route", tpl)
		}
		d.Template = tpl
		decls = append(decls, d)
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, errs.Wrap(err, "failed to close route map json")
	}
	return NewTable(c, decls...)
}

func decodeStrict(n *yaml.Node) (Declaration, error) {
	var d Declaration
	// Node -> YAML bytes -> 嚴格 decoder（Node.Decode 沒有 KnownFields）
	bs, err := yaml.Marshal(n)
	if err != nil {
		return d, errs.Wrap(err, "marshal route node")
	}
	dec := yaml.NewDecoder(bytes.NewReader(bs))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return d, errs.Wrap(err, "strict decode route")
	}
	return d, nil
}
