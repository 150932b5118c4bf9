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

package main

import (
	"fmt"
	"os"
)

// 用法：go run ./scripts <task>
//
//	test      精簡輸出（只印 ok/FAIL）
//	test-all  完整輸出 + coverage
//	test-pg   帶 ORGDESK_TEST_DSN 跑 pgstore 整合測試
//	routes    印出內建路由表
//	dev       以 memory store 啟動 server
func main() {
	if len(os.Args) < 2 {
		PrintYellow("Usage: go run ./scripts [test|test-all|test-pg|routes|dev]")
		os.Exit(1)
	}
	if err := selectTask(os.Args[1], os.Args[2:]); err != nil {
		PrintRed(err.Error())
		os.Exit(1)
	}
}

func selectTask(task string, rest []string) error {
	switch task {
	case "test":
		return runTest()
	case "test-all":
		return runTestAll()
	case "test-pg":
		return runTestPG()
	case "routes":
		return goRun(append([]string{"./cmd/routes"}, rest...)...)
	case "dev":
		return goRun(append([]string{"./cmd/svr", "-store", "memory", "-log-mode", "dev"}, rest...)...)
	default:
		return fmt.Errorf("unknown task: %s", task)
	}
}
