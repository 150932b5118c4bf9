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

// Package logger 組裝 slog：依 LogMode 建立 handler，並提供非阻塞的 AsyncHandler。
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/orgdesk/errs"
)

type LogMode uint8

const (
	ModeDev     LogMode = iota // text, stderr, debug
	ModeProd                   // json, stdout, info
	ModeSilence                // 全部丟掉
)

func (m LogMode) String() string {
	switch m {
	case ModeDev:
		return "dev"
	case ModeProd:
		return "prod"
	case ModeSilence:
		return "silence"
	default:
		return "unknown"
	}
}

// ParseMode 接受 dev/prod/silence（不分大小寫，也接受 ModeDev 這類寫法）。
func ParseMode(s string) (LogMode, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "mode") {
	case "", "dev":
		return ModeDev, nil
	case "prod":
		return ModeProd, nil
	case "silence", "silent":
		return ModeSilence, nil
	default:
		return ModeDev, errs.NewWithExtra(errs.Warn, "unknown log mode", s)
	}
}

// NewDefaultLogger 依 LogMode 建立同步 logger。
func NewDefaultLogger(mode LogMode) *slog.Logger {
	return slog.New(buildHandler(mode, nil))
}

// NewLogger 包裝呼叫端自行組裝的 Handler；nil 時用 ModeDev。
func NewLogger(h slog.Handler) *slog.Logger {
	if h == nil {
		h = buildHandler(ModeDev, nil)
	}
	return slog.New(h)
}

// NewAsync 依 LogMode 建立 handler 再包成 AsyncHandler。
// 回傳的 *AsyncHandler 需要在結束前 Close，才能把 buffer 寫完。
func NewAsync(buf int, mode LogMode) (*slog.Logger, *AsyncHandler) {
	ah := NewAsyncHandler(buildHandler(mode, nil), buf)
	return slog.New(ah), ah
}

// AsyncHandler 把任意 slog.Handler 變成非阻塞：
//   - Handle 只做 enqueue，背景 goroutine 逐筆寫出。
//   - queue 滿或已 Close 時丟棄並計數（Dropped）。
//
// slog.Logger 會忽略 Handle 的 error；I/O error 要在 next 內處理。
type AsyncHandler struct {
	next slog.Handler
	q    *queue
}

type queue struct {
	ch      chan entry
	closed  chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

type entry struct {
	ctx context.Context
	rec slog.Record
	h   slog.Handler
}

// NewAsyncHandler 以 buf 為 queue 長度包裝 next；buf <= 0 時用 1024。
func NewAsyncHandler(next slog.Handler, buf int) *AsyncHandler {
	if next == nil {
		next = buildHandler(ModeDev, nil)
	}
	if buf <= 0 {
		buf = 1024
	}
	q := &queue{
		ch:     make(chan entry, buf),
		closed: make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run()
	return &AsyncHandler{next: next, q: q}
}

func (h *AsyncHandler) Ready() bool {
	return h != nil && h.q != nil
}

func (h *AsyncHandler) Dropped() uint64 {
	if !h.Ready() {
		return 0
	}
	return h.q.dropped.Load()
}

// Close 停止接收並把 queue 內剩餘的紀錄寫完；可重複呼叫。
func (h *AsyncHandler) Close() {
	if !h.Ready() {
		return
	}
	h.q.once.Do(func() { close(h.q.closed) })
	h.q.wg.Wait()
}

func (q *queue) run() {
	defer q.wg.Done()
	for {
		select {
		case e := <-q.ch:
			_ = e.h.Handle(e.ctx, e.rec)
		case <-q.closed:
			for {
				select {
				case e := <-q.ch:
					_ = e.h.Handle(e.ctx, e.rec)
				default:
					return
				}
			}
		}
	}
}

func (h *AsyncHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *AsyncHandler) Handle(ctx context.Context, r slog.Record) error {
	if !h.Ready() {
		return nil
	}
	select {
	case <-h.q.closed:
		h.q.dropped.Add(1)
		return nil
	default:
	}

	// Record 內含可變引用，跨 goroutine 前先 Clone
	e := entry{ctx: context.WithoutCancel(ctx), rec: r.Clone(), h: h.next}
	select {
	case h.q.ch <- e:
	default:
		h.q.dropped.Add(1)
	}
	return nil
}

func (h *AsyncHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &AsyncHandler{next: h.next.WithAttrs(attrs), q: h.q}
}

func (h *AsyncHandler) WithGroup(name string) slog.Handler {
	return &AsyncHandler{next: h.next.WithGroup(name), q: h.q}
}

// buildHandler 的 w 為 nil 時依 mode 選 stderr/stdout。
func buildHandler(mode LogMode, w io.Writer) slog.Handler {
	switch mode {
	case ModeProd:
		if w == nil {
			w = os.Stdout
		}
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	case ModeSilence:
		return slog.DiscardHandler
	default:
		if w == nil {
			w = os.Stderr
		}
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
}
