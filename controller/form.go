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

package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/zintix-labs/orgdesk/errs"
	"golang.org/x/text/unicode/norm"
)

// MaxBodyBytes 是 JSON body 的上限。
const MaxBodyBytes = 1 << 20

var (
	errEmptyForm   = errs.NewWarn("no form data submitted")
	errBodyTooBig  = errs.NewWarn("request body too large")
	errInvalidForm = errs.NewWarn("malformed json body")
)

// decodeForm 讀取 JSON body 到 dst。
// 空 body、null、{} 都回傳 errEmptyForm。
func decodeForm(r *http.Request, dst any) error {
	if r.Body == nil {
		return errEmptyForm
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return errs.Wrap(errInvalidForm, err.Error())
	}
	if len(data) > MaxBodyBytes {
		return errBodyTooBig
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return errEmptyForm
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return errs.Wrap(errInvalidForm, err.Error())
	}
	if len(probe) == 0 {
		return errEmptyForm
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return errs.Wrap(errInvalidForm, err.Error())
	}
	return nil
}

// sanitise 去頭尾空白、統一成 NFC、移除控制字元。
func sanitise(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

func sanitiseEmail(s string) string {
	return strings.ToLower(sanitise(s))
}

// fieldError 是 422 回應中單一欄位的錯誤。
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type validator struct {
	errors []fieldError
}

func (v *validator) add(field, msg string) {
	v.errors = append(v.errors, fieldError{Field: field, Message: msg})
}

func (v *validator) required(field, value, name string) bool {
	if value == "" {
		v.add(field, name+" cannot be empty")
		return false
	}
	return true
}

func (v *validator) email(field, value string) {
	if value == "" {
		v.add(field, "Email cannot be empty.")
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.add(field, "Invalid email format")
	}
}

// password 的上限來自 bcrypt（72 bytes）。
func (v *validator) password(field, value string) {
	switch {
	case value == "":
		v.add(field, "Password cannot be empty")
	case len(value) > 72:
		v.add(field, "Password must be at most 72 bytes")
	}
}

func (v *validator) ok() bool { return len(v.errors) == 0 }

// validID 回報 s 是否為合法的 uuid（路徑參數在進資料庫前先擋掉）。
func validID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
