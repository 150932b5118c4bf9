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

package middleware

import (
	"net/http"

	chimid "github.com/go-chi/chi/v5/middleware"
)

// RequestID 沿用 chi 的 request id（X-Request-Id header 優先）。
func RequestID(next http.Handler) http.Handler {
	return chimid.RequestID(next)
}

// RequestIDOf 取出 RequestID 放進 context 的 id；沒有時回傳空字串。
func RequestIDOf(r *http.Request) string {
	return chimid.GetReqID(r.Context())
}
