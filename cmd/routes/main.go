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

// routes 印出編譯後的路由表，並列出被前面路由遮蔽的宣告。
//
//	go run ./cmd/routes [-routes path/to/routes.yaml] [-strict]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zintix-labs/orgdesk/route"
	"github.com/zintix-labs/orgdesk/textfmt"
)

func main() {
	path := flag.String("routes", "", "route map file (.yaml/.json); empty = built-in table")
	strict := flag.Bool("strict", false, "exit 1 when any route is shadowed")
	flag.Parse()

	table, err := load(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	title := "built-in routes"
	if *path != "" {
		title = *path
	}
	fmt.Print(render(title, table))

	shadows := table.Shadowed()
	for _, s := range shadows {
		fmt.Printf("WARN %s is shadowed by %s (sample %s)\n", s.Route.Template, s.By.Template, s.Sample)
	}
	if *strict && len(shadows) > 0 {
		os.Exit(1)
	}
}

func load(path string) (*route.Table, error) {
	if path == "" {
		return route.Default()
	}
	return route.LoadFile(os.DirFS(filepath.Dir(path)), filepath.Base(path), nil)
}

func render(title string, t *route.Table) string {
	header := []string{"#", "template", "handler", "params", "auth", "pattern"}
	rows := make([][]string, 0, t.Len())
	for i, rt := range t.Routes() {
		params := make([]string, 0, len(rt.Order))
		for _, b := range rt.Order {
			params = append(params, b.Name+":"+string(rt.Params[b.Name]))
		}
		auth := ""
		if rt.Auth {
			auth = "yes"
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			"/" + rt.Template,
			rt.Controller + "." + rt.Action,
			strings.Join(params, ", "),
			auth,
			rt.Matcher.String(),
		})
	}
	return textfmt.Table(title+" ("+textfmt.Count(t.Len())+")", header, rows)
}
