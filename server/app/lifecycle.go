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

package app

import (
	"context"
	"sync"
)

// Component 抽象任何「可啟動 / 可關閉」的長生命週期元件。
//   - Run() 阻塞直到元件停止（正常或錯誤）。
//   - Shutdown(ctx) 要求優雅關閉，實作需尊重 ctx deadline/cancel。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}

// Closer 把一組關閉函式包成 Component：Run 等到 Shutdown 才返回，Shutdown 依序呼叫 fns。
// 註冊在 server 之後，確保連線池在 HTTP 停止接收請求後才關閉。
func Closer(fns ...func()) Component {
	return &closer{fns: fns, done: make(chan struct{})}
}

type closer struct {
	fns  []func()
	done chan struct{}
	once sync.Once
}

func (c *closer) Run() error {
	<-c.done
	return nil
}

func (c *closer) Shutdown(ctx context.Context) error {
	c.once.Do(func() {
		for _, fn := range c.fns {
			if fn != nil {
				fn()
			}
		}
		close(c.done)
	})
	return ctx.Err()
}
