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

package dispatch

import (
	"cmp"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/zintix-labs/orgdesk/errs"
)

// Handler is the unit a route resolves to.
//
// Arity is the number of positional string arguments Invoke expects; the
// dispatcher checks it against the route's parameter count at construction.
type Handler interface {
	Arity() int
	Invoke(r *http.Request, args []string) (*Response, error)
}

// Func0 is a handler with no path parameters.
type Func0 func(r *http.Request) (*Response, error)

func (f Func0) Arity() int { return 0 }

func (f Func0) Invoke(r *http.Request, _ []string) (*Response, error) { return f(r) }

// Func1 receives one path parameter.
type Func1 func(r *http.Request, a string) (*Response, error)

func (f Func1) Arity() int { return 1 }

func (f Func1) Invoke(r *http.Request, args []string) (*Response, error) { return f(r, args[0]) }

// Func2 receives two path parameters in template order.
type Func2 func(r *http.Request, a, b string) (*Response, error)

func (f Func2) Arity() int { return 2 }

func (f Func2) Invoke(r *http.Request, args []string) (*Response, error) {
	return f(r, args[0], args[1])
}

// Key identifies a handler by controller and action name.
type Key struct {
	Controller string
	Action     string
}

func (k Key) String() string { return k.Controller + "." + k.Action }

// Registry maps (controller, action) to handlers. Duplicate registration is an error.
type Registry struct {
	handlers map[Key]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Key]Handler, 16)}
}

func (r *Registry) Register(controller, action string, h Handler) error {
	if h == nil {
		return errs.NewFatal(fmt.Sprintf("nil handler: %s.%s", controller, action))
	}
	k := Key{Controller: controller, Action: action}
	if _, ok := r.handlers[k]; ok {
		return errs.NewFatal(fmt.Sprintf("duplicate handler: %s", k))
	}
	r.handlers[k] = h
	return nil
}

// MustRegister 同 Register，但重複註冊直接 panic（只在啟動期的組裝程式使用）。
func (r *Registry) MustRegister(controller, action string, h Handler) {
	if err := r.Register(controller, action, h); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(controller, action string) (Handler, bool) {
	h, ok := r.handlers[Key{Controller: controller, Action: action}]
	return h, ok
}

// Keys 以字典序列出所有已註冊的 handler。
func (r *Registry) Keys() []Key {
	out := make([]Key, 0, len(r.handlers))
	for k := range r.handlers {
		out = append(out, k)
	}
	slices.SortFunc(out, func(a, b Key) int {
		return cmp.Or(strings.Compare(a.Controller, b.Controller), strings.Compare(a.Action, b.Action))
	})
	return out
}
