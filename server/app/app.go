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

// Package app 提供應用程式生命週期管理（App），統一啟動與關閉多個 Component。
package app

import (
	"context"
	"log/slog"
	"time"
)

const shutdownTimeout = 5 * time.Second

// App 啟動所有 Component，並在收到 OS 信號、ctx 結束或任一 Component 返回時協調優雅關閉。
type App struct {
	comps []Component
	log   *slog.Logger
}

func New(log *slog.Logger) *App {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &App{log: log}
}

// NewWith 是 New 的語法糖，建立時直接註冊多個 Component。
func NewWith(log *slog.Logger, comps ...Component) *App {
	a := New(log)
	for _, c := range comps {
		a.Register(c)
	}
	return a
}

// Register 依序註冊；關閉時也依註冊順序呼叫 Shutdown。
func (a *App) Register(c Component) {
	a.comps = append(a.comps, c)
}

// RunContext 阻塞直到 ctx 結束或任一 Component 返回。
//   - ctx 結束（通常是 SIGINT/SIGTERM）：優雅關閉並回傳 nil。
//   - Component 返回：優雅關閉並回傳該錯誤（可能為 nil）。
func (a *App) RunContext(ctx context.Context) error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	select {
	case <-ctx.Done():
		a.gracefulShutdown(shutdownTimeout)
		return nil
	case err := <-errCh:
		a.gracefulShutdown(shutdownTimeout)
		return err
	}
}

func (a *App) gracefulShutdown(td time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), td)
	defer cancel()
	for _, c := range a.comps {
		if err := c.Shutdown(ctx); err != nil {
			a.log.Warn("shutdown", slog.Any("err", err))
		}
	}
}
