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

// Package dispatch 把請求送到路由表解析出的 handler。
//
// 流程：OPTIONS 直接 204 → 以路由表 first-match 比對 → 依位置取參數
// → authentication 路由先問 Verifier → 呼叫 handler → 寫回 Response。
// handler 回傳錯誤或 panic 都在這一層收斂成 500，細節只進 log。
package dispatch

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/zintix-labs/orgdesk/errs"
	"github.com/zintix-labs/orgdesk/route"
)

var (
	ErrNoRoute      = errs.NewMissing("no route matched")
	ErrAuthRequired = errs.NewDenied("authentication required")
	ErrHandlerFault = errs.NewFatal("handler fault")
)

// Verifier 判斷請求是否帶有有效的登入狀態。
type Verifier interface {
	IsAuthenticated(r *http.Request) bool
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(r *http.Request) bool

func (f VerifierFunc) IsAuthenticated(r *http.Request) bool { return f(r) }

// Dispatcher 在建立後唯讀，可被多個請求 goroutine 同時使用。
type Dispatcher struct {
	table    *route.Table
	handlers []Handler // 與 table.Routes() 同序
	verifier Verifier
	log      *slog.Logger
}

// New 建立 Dispatcher，並在啟動期檢查每一筆路由：
// handler 必須已註冊，且 Arity 必須等於路由參數數量。
func New(table *route.Table, reg *Registry, v Verifier, log *slog.Logger) (*Dispatcher, error) {
	if table == nil {
		return nil, errs.NewFatal("route table is required")
	}
	if reg == nil {
		return nil, errs.NewFatal("handler registry is required")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	routes := table.Routes()
	hs := make([]Handler, len(routes))
	for i, rt := range routes {
		h, ok := reg.Lookup(rt.Controller, rt.Action)
		if !ok {
			return nil, errs.NewWithExtra(errs.Fatal, "unresolved handler", fmt.Sprintf("%s -> %s.%s", rt.Template, rt.Controller, rt.Action))
		}
		if h.Arity() != len(rt.Order) {
			return nil, errs.NewWithExtra(errs.Fatal, "handler arity mismatch",
				fmt.Sprintf("%s -> %s.%s: route has %d params, handler takes %d", rt.Template, rt.Controller, rt.Action, len(rt.Order), h.Arity()))
		}
		if rt.Auth && v == nil {
			return nil, errs.NewWithExtra(errs.Fatal, "verifier is required", rt.Template)
		}
		hs[i] = h
	}
	return &Dispatcher{table: table, handlers: hs, verifier: v, log: log}, nil
}

// Dispatch 處理一個請求並回傳 Response，永不回傳 nil。
func (d *Dispatcher) Dispatch(r *http.Request) (resp *Response) {
	if r.Method == http.MethodOptions {
		return NoContent()
	}

	m, ok := d.table.Match(r.URL.Path)
	if !ok {
		d.log.Debug("dispatch", slog.String("path", r.URL.Path), slog.Any("err", ErrNoRoute))
		return NotFound()
	}

	// verifier 與 handler 的 panic 都收斂成 500
	defer func() {
		if p := recover(); p != nil {
			d.fault(r, m.Route, errs.WrapWithExtra(ErrHandlerFault, "panic", fmt.Sprint(p)), debug.Stack())
			resp = InternalServerError()
		}
	}()

	if m.Route.Auth && !d.verifier.IsAuthenticated(r) {
		d.log.Debug("dispatch", slog.String("path", r.URL.Path), slog.Any("err", ErrAuthRequired))
		return NotLoggedIn()
	}

	h := d.handlers[m.Index]
	out, err := h.Invoke(r, m.Args)
	if err != nil {
		d.fault(r, m.Route, fmt.Errorf("%w: %s.%s: %w", ErrHandlerFault, m.Route.Controller, m.Route.Action, err), nil)
		return InternalServerError()
	}
	if out == nil {
		d.fault(r, m.Route, errs.WrapWithExtra(ErrHandlerFault, "nil response", m.Route.Controller+"."+m.Route.Action), nil)
		return InternalServerError()
	}
	return out
}

// ServeHTTP 讓 Dispatcher 可以直接掛在任何 net/http router 上。
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.Dispatch(r).WriteTo(w)
}

func (d *Dispatcher) fault(r *http.Request, rt *route.Route, err error, stack []byte) {
	attrs := []slog.Attr{
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("route", rt.Template),
		slog.Any("err", err),
	}
	if id := chimid.GetReqID(r.Context()); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}
	if stack != nil {
		attrs = append(attrs, slog.String("stack", string(stack)))
	}
	d.log.LogAttrs(r.Context(), slog.LevelError, "dispatch fault", attrs...)
}
