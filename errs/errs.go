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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，讓邊界層（HTTP / CLI）知道該如何回應
type ErrLevel uint8

const (
	None     ErrLevel = iota
	Fatal             // 系統/不可恢復
	Warn              // 請求/參數問題
	Log               // 僅記錄
	Missing           // 資源不存在
	Denied            // 未登入或無權限
	Conflict          // 唯一性衝突
	Invalid           // 欄位驗證失敗
)

var errLvMap = map[ErrLevel]string{
	None:     "",
	Fatal:    "fatal",
	Warn:     "warn",
	Log:      "log",
	Missing:  "missing",
	Denied:   "denied",
	Conflict: "conflict",
	Invalid:  "invalid",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// E 是統一的錯誤型別。
// Message 為主訊息；Extra 為呼叫端追加的上下文（例如樣板、欄位名）；
// Cause 串接下層錯誤（wrap）；ErrLv 決定邊界層的處理方式。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// New 依錯誤等級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E { return New(Fatal, msg) }

func NewWarn(msg string) *E { return New(Warn, msg) }

func NewLog(msg string) *E { return New(Log, msg) }

func NewMissing(msg string) *E { return New(Missing, msg) }

func NewDenied(msg string) *E { return New(Denied, msg) }

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 以訊息包裝底層錯誤。
//
// ErrLevel 規則：
//   - cause 鏈上有 *E：沿用最近一層的 ErrLv。
//   - 否則（標準庫、pgx 等第三方錯誤）一律視為 Fatal。
//
// 若已確定是可預期的情境（例如查無資料），請直接 New 並指定 ErrLv，不要 Wrap。
func Wrap(cause error, msg string) *E {
	r := New(levelOf(cause), msg)
	r.Cause = cause
	return r
}

// WrapWithExtra 與 Wrap 相同，另外附加上下文。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := NewWithExtra(levelOf(cause), msg, extra)
	r.Cause = cause
	return r
}

// Level 回傳錯誤鏈上最近一層 *E 的等級；沒有 *E 時回傳 None。
func Level(err error) ErrLevel {
	var e *E
	if errors.As(err, &e) {
		return e.ErrLv
	}
	return None
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}

func levelOf(cause error) ErrLevel {
	if lv := Level(cause); lv != None {
		return lv
	}
	return Fatal
}
