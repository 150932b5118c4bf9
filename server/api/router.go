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

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/zintix-labs/orgdesk/dispatch"
	"github.com/zintix-labs/orgdesk/errs"
	"github.com/zintix-labs/orgdesk/server/httperr"
	"github.com/zintix-labs/orgdesk/server/netsvr"
	"github.com/zintix-labs/orgdesk/server/netsvr/middleware"
	"github.com/zintix-labs/orgdesk/server/svrcfg"
)

const pingTimeout = 2 * time.Second

// RegisterRoutes 註冊 middleware、/healthz，其餘路徑全部交給 sCfg.Handler。
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) {
	registerMiddleware(svr, sCfg.Log)
	svr.Get("/healthz", healthz(sCfg.Log, sCfg.Ping))
	svr.Handle("/*", sCfg.Handler)
}

func registerMiddleware(svr netsvr.NetRouter, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

// healthz 回 200 {"status":"ok"}；ping 失敗時依錯誤映射回 5xx。
func healthz(log *slog.Logger, ping func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
			defer cancel()
			if err := ping(ctx); err != nil {
				err = errs.Wrap(err, "healthz: ping")
				httperr.Log(log, "healthz", err)
				httperr.JSON(w, err)
				return
			}
		}
		dispatch.JSON(http.StatusOK, map[string]string{"status": "ok"}).WriteTo(w)
	}
}
