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

// Package server 把 SvrCfg 組裝成可運行的 HTTP 服務。
//
// server 不綁定任何檔案路徑或環境變數策略；依賴全部透過 svrcfg.SvrCfg 注入。
// 需要自訂組裝時，可以直接使用 Build 或 api.RegisterRoutes。
package server

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/zintix-labs/orgdesk/errs"
	"github.com/zintix-labs/orgdesk/server/api"
	"github.com/zintix-labs/orgdesk/server/app"
	"github.com/zintix-labs/orgdesk/server/netsvr"
	"github.com/zintix-labs/orgdesk/server/svrcfg"
)

// Build 驗證 sCfg、建立 chi server 並註冊路由，但不啟動。
func Build(sCfg *svrcfg.SvrCfg) (*netsvr.ChiAdapter, error) {
	if sCfg == nil {
		return nil, errs.NewFatal("svrcfg is required")
	}
	if err := sCfg.Valid(); err != nil {
		return nil, err
	}
	svr := netsvr.NewChiServer(sCfg.Addr)
	if !svr.Ready() {
		return nil, errs.NewWithExtra(errs.Fatal, "server is not ready", sCfg.Addr)
	}
	api.RegisterRoutes(svr, sCfg)
	return svr, nil
}

// Run 組裝並阻塞運行，直到 SIGINT/SIGTERM 或 server 出錯。
func Run(sCfg *svrcfg.SvrCfg) error {
	return RunContext(context.Background(), sCfg)
}

// RunContext 與 Run 相同，ctx 結束時也會優雅關閉。
// Build 失敗時仍會執行 OnClose，呼叫端交進來的資源一律在這裡收尾。
func RunContext(ctx context.Context, sCfg *svrcfg.SvrCfg) error {
	svr, err := Build(sCfg)
	if err != nil {
		if sCfg != nil {
			for _, fn := range sCfg.OnClose {
				if fn != nil {
					fn()
				}
			}
		}
		return err
	}
	a := app.NewWith(sCfg.Log, svr, app.Closer(sCfg.OnClose...))
	sCfg.Log.Info("[orgdesk] listening", slog.String("addr", svr.Address()))

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := a.RunContext(runCtx); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}
