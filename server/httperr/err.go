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

// Package httperr 是 HTTP 邊界層的錯誤映射；核心 errs 不依賴 net/http。
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/orgdesk/errs"
)

// StatusCode 將錯誤映射成 HTTP status code。
//
//   - ctx timeout/cancel → 504/408
//   - errs.Warn          → 400
//   - errs.Denied        → 401
//   - errs.Missing       → 404
//   - errs.Conflict      → 409
//   - errs.Invalid       → 422
//   - 其他               → 500
func StatusCode(err error) int {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	var e *errs.E
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.ErrLv {
	case errs.Warn:
		return http.StatusBadRequest
	case errs.Denied:
		return http.StatusUnauthorized
	case errs.Missing:
		return http.StatusNotFound
	case errs.Conflict:
		return http.StatusConflict
	case errs.Invalid:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// JSON 寫回 {"error": <status text>}；不把 err 內容送給客戶端。
func JSON(w http.ResponseWriter, err error) int {
	if err == nil {
		return 0
	}
	status := StatusCode(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(status)})
	return status
}

// Log 依映射後的嚴重度記錄：5xx → Error，408/409/429 → Warn，其他略過。
func Log(log *slog.Logger, msg string, err error) {
	if err == nil || log == nil {
		return
	}
	switch status := StatusCode(err); {
	case status >= 500:
		log.Error(msg, slog.Int("status", status), slog.Any("err", err))
	case status == http.StatusRequestTimeout || status == http.StatusConflict || status == http.StatusTooManyRequests:
		log.Warn(msg, slog.Int("status", status), slog.Any("err", err))
	}
}
