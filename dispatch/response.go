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

package dispatch

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html"
)

// Response 是 handler 的回傳值：狀態碼 + header + 已編碼的 body。
// 由 Dispatcher 寫回 http.ResponseWriter。
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// DefaultHeader 回傳每個回應都帶的 header（content type、cache、CORS）。
func DefaultHeader(contentType string) http.Header {
	h := make(http.Header, 5)
	h.Set("Content-Type", contentType)
	h.Set("Cache-Control", "no-cache")
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-With")
	return h
}

// Raw 以現成 body 建立回應。
func Raw(status int, contentType string, body []byte) *Response {
	return &Response{Status: status, Header: DefaultHeader(contentType), Body: body}
}

// JSON 把 v 編成 JSON 回應。編碼失敗時退回 500（v 由程式決定，不會來自使用者）。
func JSON(status int, v any) *Response {
	bs, err := json.Marshal(v)
	if err != nil {
		return InternalServerError()
	}
	return Raw(status, ContentTypeJSON, bs)
}

// SetHeader 追加 header 並回傳自己，方便鏈式呼叫。
func (r *Response) SetHeader(name, value string) *Response {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(name, value)
	return r
}

// AddCookie 以 Set-Cookie header 附加 cookie。
func (r *Response) AddCookie(c *http.Cookie) *Response {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if v := c.String(); v != "" {
		r.Header.Add("Set-Cookie", v)
	}
	return r
}

// WriteTo 寫回 ResponseWriter。
func (r *Response) WriteTo(w http.ResponseWriter) {
	for k, vs := range r.Header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if len(r.Body) > 0 {
		_, _ = w.Write(r.Body)
	}
}

// -----------------------------------------------------------------------------
//  常用錯誤回應
// -----------------------------------------------------------------------------

func errorBody(msg string) map[string]string { return map[string]string{"error": msg} }

func NotFound() *Response { return JSON(http.StatusNotFound, errorBody("Not Found")) }

func InternalServerError() *Response {
	return Raw(http.StatusInternalServerError, ContentTypeJSON, []byte(`{"error":"Internal Server Error"}`))
}

func BadRequest() *Response { return JSON(http.StatusBadRequest, errorBody("Bad request")) }

func Unauthorised() *Response { return JSON(http.StatusUnauthorized, errorBody("unauthorised")) }

// NotLoggedIn 是 authentication 路由在驗證失敗時的固定回應。
func NotLoggedIn() *Response {
	return JSON(http.StatusUnauthorized, errorBody("User is not logged in"))
}

func Forbidden() *Response { return JSON(http.StatusForbidden, errorBody("Forbidden")) }

func MethodNotAllowed() *Response {
	return JSON(http.StatusMethodNotAllowed, errorBody("Method not Allowed"))
}

func ValidationError() *Response {
	return JSON(http.StatusUnprocessableEntity, errorBody("Invalid data"))
}

// NoContent 是 OPTIONS preflight 的空回應。
func NoContent() *Response {
	return &Response{Status: http.StatusNoContent, Header: DefaultHeader(ContentTypeJSON)}
}

// -----------------------------------------------------------------------------
//  統一的 JSON 包裝
// -----------------------------------------------------------------------------

// Envelope 是業務回應的統一格式：
//
//	{"status": "...", "message": "...", "error": {"code": "...", "details": ...}}
type Envelope struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Error   *ErrorDetail `json:"error,omitempty"`
	Data    any          `json:"data,omitempty"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Details any    `json:"details"`
}

var spaceRun = regexp.MustCompile(`\s+`)

// ErrorCode 把描述轉成 code：空白改底線後轉大寫（"validation error" -> "VALIDATION_ERROR"）。
func ErrorCode(s string) string {
	return strings.ToUpper(spaceRun.ReplaceAllString(s, "_"))
}

// Fail 組出 status=error 的 Envelope。
func Fail(message, code string, details any) Envelope {
	return Envelope{
		Status:  "error",
		Message: message,
		Error:   &ErrorDetail{Code: ErrorCode(code), Details: details},
	}
}

// Success 組出 status=success 的 Envelope。
func Success(message string, data any) Envelope {
	return Envelope{Status: "success", Message: message, Data: data}
}
