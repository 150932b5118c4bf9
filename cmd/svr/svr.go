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
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/zintix-labs/orgdesk/auth"
	"github.com/zintix-labs/orgdesk/config"
	"github.com/zintix-labs/orgdesk/controller"
	"github.com/zintix-labs/orgdesk/dispatch"
	"github.com/zintix-labs/orgdesk/route"
	"github.com/zintix-labs/orgdesk/server"
	"github.com/zintix-labs/orgdesk/server/logger"
	"github.com/zintix-labs/orgdesk/server/svrcfg"
	"github.com/zintix-labs/orgdesk/store"
)

type flags struct {
	EnvFile string
	Addr    string
	LogMode string
	Routes  string
	Store   string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	f := new(flags)
	flag.StringVar(&f.EnvFile, "env", ".env", "dotenv file (optional)")
	flag.StringVar(&f.Addr, "addr", "", "listen address, overrides APP_ADDR")
	flag.StringVar(&f.LogMode, "log-mode", "", "log mode: dev|prod|silence, overrides LOG_MODE")
	flag.StringVar(&f.Routes, "routes", "", "route map file (.yaml/.json), overrides ROUTE_MAP")
	flag.StringVar(&f.Store, "store", "", "store: postgres|memory, overrides STORE")
	flag.Parse()

	// 旗標寫回環境變數；godotenv 不覆蓋既有值，所以旗標 > 環境變數 > .env
	for k, v := range f.env() {
		if v != "" {
			if err := os.Setenv(k, v); err != nil {
				return err
			}
		}
	}
	cfg, err := config.Load(f.EnvFile)
	if err != nil {
		return err
	}

	mode, err := logger.ParseMode(cfg.LogMode)
	if err != nil {
		return err
	}
	log, ah := logger.NewAsync(4096, mode)

	ctx := context.Background()
	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		ah.Close()
		return err
	}

	d, err := assemble(cfg, st, log)
	if err != nil {
		st.Close()
		ah.Close()
		return err
	}

	log.Info("[orgdesk] starting", slog.String("store", st.Kind), slog.String("log_mode", mode.String()))
	return server.Run(&svrcfg.SvrCfg{
		Log:     log,
		Addr:    cfg.Addr,
		Handler: d,
		Ping:    st.Ping,
		OnClose: []func(){st.Close, ah.Close},
	})
}

func (f *flags) env() map[string]string {
	return map[string]string{
		"APP_ADDR":  f.Addr,
		"LOG_MODE":  f.LogMode,
		"ROUTE_MAP": f.Routes,
		"STORE":     f.Store,
	}
}

// assemble 建立 sessions、controller registry、路由表與 dispatcher。
func assemble(cfg *config.Config, st *store.Handle, log *slog.Logger) (*dispatch.Dispatcher, error) {
	sessions, err := auth.NewSessions(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return nil, err
	}
	reg := dispatch.NewRegistry()
	if err := controller.Register(reg, controller.Deps{
		Store:    st,
		Sessions: sessions,
		Log:      log,
	}); err != nil {
		return nil, err
	}

	table, err := loadTable(cfg.RouteMap)
	if err != nil {
		return nil, err
	}
	for _, s := range table.Shadowed() {
		log.Warn("route shadowed",
			slog.String("route", s.Route.Template),
			slog.String("by", s.By.Template),
			slog.String("sample", s.Sample),
		)
	}
	return dispatch.New(table, reg, sessions, log)
}

func loadTable(path string) (*route.Table, error) {
	if path == "" {
		return route.Default()
	}
	return route.LoadFile(os.DirFS(filepath.Dir(path)), filepath.Base(path), nil)
}
