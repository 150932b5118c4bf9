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

// seed 建立 N 位示範使用者（各自帶預設組織），用於本機開發與壓測。
//
//	go run ./cmd/seed -n 1000 -store memory
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/orgdesk/auth"
	"github.com/zintix-labs/orgdesk/config"
	"github.com/zintix-labs/orgdesk/crud"
	"github.com/zintix-labs/orgdesk/errs"
	"github.com/zintix-labs/orgdesk/model"
	"github.com/zintix-labs/orgdesk/server/logger"
	"github.com/zintix-labs/orgdesk/store"
	"github.com/zintix-labs/orgdesk/textfmt"
)

type options struct {
	N        int
	Workers  int
	Domain   string
	Password string
	Quiet    bool
}

func main() {
	envFile := flag.String("env", ".env", "dotenv file (optional)")
	opt := options{}
	flag.IntVar(&opt.N, "n", 100, "number of users")
	flag.IntVar(&opt.Workers, "workers", 4, "concurrent inserts")
	flag.StringVar(&opt.Domain, "domain", "demo.orgdesk.local", "email domain")
	flag.StringVar(&opt.Password, "password", "password", "password for every demo user")
	flag.BoolVar(&opt.Quiet, "quiet", false, "hide the progress bar")
	flag.Parse()

	if err := run(*envFile, opt); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(envFile string, opt options) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if err := checkTarget(cfg); err != nil {
		return err
	}
	ctx := context.Background()
	st, err := store.Open(ctx, cfg, logger.NewDefaultLogger(logger.ModeSilence))
	if err != nil {
		return err
	}
	defer st.Close()

	hashed, err := auth.HashPassword(opt.Password)
	if err != nil {
		return err
	}
	start := time.Now()
	res, err := seed(ctx, st, opt, hashed)
	if err != nil {
		return err
	}
	p := textfmt.Printer()
	p.Printf("created %d users, skipped %d existing, in %.2fs\n", res.Created, res.Skipped, time.Since(start).Seconds())
	return nil
}

// checkTarget 拒絕記憶體 store：行程結束資料就消失，seed 沒有意義。
func checkTarget(cfg *config.Config) error {
	if cfg.Store != config.StorePostgres {
		return errs.NewWithExtra(errs.Warn, "seed: requires STORE=postgres", cfg.Store)
	}
	return nil
}

type result struct {
	Created int64
	Skipped int64
}

// seed 以 opt.Workers 個 goroutine 建立使用者；email 已存在的略過不算錯誤。
func seed(ctx context.Context, st model.Store, opt options, hashed string) (result, error) {
	if opt.N < 1 || opt.Workers < 1 {
		return result{}, errs.NewWarn("seed: n and workers must be > 0")
	}
	bar := pb.StartNew(opt.N)
	if opt.Quiet {
		bar.SetWriter(io.Discard)
	}
	defer bar.Finish()

	jobs := make(chan int, opt.Workers)
	var (
		wg       sync.WaitGroup
		created  atomic.Int64
		skipped  atomic.Int64
		firstErr error
		errOnce  sync.Once
	)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg.Add(opt.Workers)
	for range opt.Workers {
		go func() {
			defer wg.Done()
			for i := range jobs {
				err := one(ctx, st, i, opt.Domain, hashed)
				switch {
				case err == nil:
					created.Add(1)
				case crud.IsConflict(err):
					skipped.Add(1)
				default:
					errOnce.Do(func() { firstErr = err; cancel() })
				}
				bar.Increment()
			}
		}()
	}

feed:
	for i := range opt.N {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	return result{Created: created.Load(), Skipped: skipped.Load()}, firstErr
}

// one 與註冊流程相同：使用者與預設組織在同一個交易內建立。
func one(ctx context.Context, st model.Store, i int, domain, hashed string) error {
	first := fmt.Sprintf("Demo%05d", i)
	return st.InTx(ctx, func(ex crud.Executor) error {
		id, err := model.NewUsers(ex).Register(ctx, model.NewUser{
			FirstName: first,
			LastName:  "User",
			Email:     fmt.Sprintf("demo%05d@%s", i, domain),
			Password:  hashed,
		})
		if err != nil {
			return err
		}
		_, err = model.NewOrganisations(ex).Register(ctx, first+"'s Organisation", "", id)
		return err
	})
}
