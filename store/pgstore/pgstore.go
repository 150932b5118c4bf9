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

// Package pgstore 以 pgx 實作 crud.Executor。
//
// Statement 以 @name 形式渲染並透過 pgx.NamedArgs 綁定；
// 同一個 Store 可以包 pgxpool.Pool，也可以包一個 pgx.Tx（InTx 內部使用）。
package pgstore

import (
	"context"
	_ "embed"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zintix-labs/orgdesk/crud"
	"github.com/zintix-labs/orgdesk/errs"
)

// Querier 是 pgxpool.Pool 與 pgx.Tx 共同的能力。
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

//go:embed schema.sql
var schema string

type Store struct {
	db   Querier
	pool *pgxpool.Pool // 只有最外層（Connect 建立）持有
	log  *slog.Logger
}

// New 包一個現成的 Querier。
func New(db Querier, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Store{db: db, log: log}
}

// Connect 建立連線池並確認可連線。
func Connect(ctx context.Context, dsn string, log *slog.Logger) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errs.Wrap(err, "parse postgres dsn")
	}
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errs.Wrap(err, "open postgres pool")
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, errs.Wrap(err, "ping postgres")
	}
	s := New(pool, log)
	s.pool = pool
	return s, nil
}

// Migrate 建立 users / organisations / user_organisation（已存在則略過）。
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return errs.Wrap(err, "apply schema")
	}
	return nil
}

// Exec 執行 Create/Update/Delete。Create 帶 Returning 時以 QueryRow 取回該欄位。
func (s *Store) Exec(ctx context.Context, st crud.Statement) (crud.Result, error) {
	if err := st.Validate(); err != nil {
		return crud.Result{}, err
	}
	sql, args := st.Named(crud.At)
	s.log.Debug("sql exec", slog.String("sql", sql))

	if st.Op == crud.OpCreate && st.Returning != "" {
		var v any
		if err := s.db.QueryRow(ctx, sql, pgx.NamedArgs(args)).Scan(&v); err != nil {
			return crud.Result{}, err
		}
		return crud.Result{RowsAffected: 1, Returned: v}, nil
	}
	tag, err := s.db.Exec(ctx, sql, pgx.NamedArgs(args))
	if err != nil {
		return crud.Result{}, err
	}
	return crud.Result{RowsAffected: tag.RowsAffected()}, nil
}

// Query 執行 Read，每一列轉成 crud.Row。
func (s *Store) Query(ctx context.Context, st crud.Statement) (crud.Rows, error) {
	if err := st.Validate(); err != nil {
		return nil, err
	}
	sql, args := st.Named(crud.At)
	s.log.Debug("sql query", slog.String("sql", sql))

	rows, err := s.db.Query(ctx, sql, pgx.NamedArgs(args))
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	out := make(crud.Rows, len(maps))
	for i, m := range maps {
		out[i] = crud.Row(m)
	}
	return out, nil
}

// InTx 在交易內執行 fn；fn 回傳錯誤則 rollback。
// 在交易內再次呼叫 InTx 會變成 savepoint。
func (s *Store) InTx(ctx context.Context, fn func(ex crud.Executor) error) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return fn(&Store{db: tx, log: s.log})
	})
}

// Ping 用於健康檢查。
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	return s.pool.Ping(ctx)
}

// Close 釋放連線池；非 Connect 建立的 Store 不做事。
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
