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
	"fmt"
	"time"

	"github.com/google/uuid"
)

// String 把欄位轉成字串。
// pgx 會把 uuid 欄位掃成 [16]byte，這裡統一轉回標準文字格式。
func (r Row) String(col string) string {
	return AsString(r[col])
}

// AsString 把 driver 回傳的單一值轉成字串；nil 轉成 ""。
func AsString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case uuid.UUID:
		return x.String()
	case time.Time:
		return x.Format(time.RFC3339)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// Strings 取出每一列的同一欄位。
func (rs Rows) Strings(col string) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.String(col))
	}
	return out
}
