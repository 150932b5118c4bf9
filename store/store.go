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

// Package store 依設定開啟資料層（postgres 或 in-memory），供各個執行檔共用。
package store

import (
	"context"
	"log/slog"

	"github.com/zintix-labs/orgdesk/config"
	"github.com/zintix-labs/orgdesk/errs"
	"github.com/zintix-labs/orgdesk/model"
	"github.com/zintix-labs/orgdesk/store/memstore"
	"github.com/zintix-labs/orgdesk/store/pgstore"
)

// Handle 是開好的資料層與它的生命週期函式。
type Handle struct {
	model.Store
	Kind  string
	Ping  func(ctx context.Context) error // memory 時為 nil
	Close func()
}

// Open 依 cfg.Store 開啟資料層；postgres 會連線並套用 schema。
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Handle, error) {
	switch cfg.Store {
	case config.StoreMemory:
		m := memstore.NewDefault()
		return &Handle{Store: m, Kind: cfg.Store, Close: m.Close}, nil
	case config.StorePostgres:
		pg, err := pgstore.Connect(ctx, cfg.DSN(), log)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return &Handle{Store: pg, Kind: cfg.Store, Ping: pg.Ping, Close: pg.Close}, nil
	default:
		return nil, errs.NewWithExtra(errs.Fatal, "unknown store", cfg.Store)
	}
}
