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

package svrcfg

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/orgdesk/errs"
	"github.com/zintix-labs/orgdesk/server/logger"
)

const DefaultAddr = ":5808"

// SvrCfg 是 server.Run 需要的全部依賴；路徑、環境變數等策略由呼叫端決定。
type SvrCfg struct {
	Log  *slog.Logger
	Addr string

	// Handler 處理 /healthz 以外的所有請求（通常是 *dispatch.Dispatcher）。
	Handler http.Handler

	// Ping 供 /healthz 檢查下游（例如資料庫），可為 nil。
	Ping func(ctx context.Context) error

	// OnClose 在 server 關閉後依序呼叫（關閉連線池、flush log 等）。
	OnClose []func()
}

func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log = logger.NewDefaultLogger(logger.ModeSilence)
	}
	if sc.Addr == "" {
		sc.Addr = DefaultAddr
	}
	if sc.Handler == nil {
		return errs.NewFatal("handler is required")
	}
	return nil
}
