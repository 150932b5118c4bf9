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

// Package config 從 .env 與環境變數組出執行設定。
//
// 既有的環境變數優先於 .env 內容（godotenv 不覆蓋已存在的值）。
package config

import (
	"errors"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/zintix-labs/orgdesk/auth"
	"github.com/zintix-labs/orgdesk/errs"
)

// Store 種類
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

const defaultAddr = ":5808"

type DB struct {
	Connection string // DB_CONNECTION，目前只接受 pgsql/postgres
	Host       string
	Port       string
	Database   string
	Username   string
	Password   string
}

type Config struct {
	DB        DB
	JWTSecret string
	JWTTTL    time.Duration
	Addr      string
	LogMode   string
	RouteMap  string // 空字串 = 內建路由表
	Store     string
}

// Load 讀取 envFile（可為空或不存在）後再讀環境變數。
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(err, "config: load "+envFile)
		}
	}
	return FromEnv(os.Getenv)
}

// FromEnv 以 getenv 組出設定並驗證。
func FromEnv(getenv func(string) string) (*Config, error) {
	c := &Config{
		DB: DB{
			Connection: or(getenv("DB_CONNECTION"), "pgsql"),
			Host:       or(getenv("DB_HOST"), "localhost"),
			Port:       or(getenv("DB_PORT"), "5432"),
			Database:   getenv("DB_DATABASE"),
			Username:   getenv("DB_USERNAME"),
			Password:   getenv("DB_PASSWORD"),
		},
		JWTSecret: getenv("JWT_SECRET"),
		JWTTTL:    auth.DefaultTTL,
		Addr:      or(getenv("APP_ADDR"), defaultAddr),
		LogMode:   or(getenv("LOG_MODE"), "dev"),
		RouteMap:  getenv("ROUTE_MAP"),
		Store:     strings.ToLower(or(getenv("STORE"), StorePostgres)),
	}
	if v := getenv("JWT_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, errs.WrapWithExtra(err, "config: JWT_TTL", v)
		}
		c.JWTTTL = ttl
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate 檢查組合是否可用；memory store 不需要資料庫設定。
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		switch c.DB.Connection {
		case "pgsql", "postgres", "postgresql":
		default:
			return errs.NewWithExtra(errs.Fatal, "config: unsupported DB_CONNECTION", c.DB.Connection)
		}
		if c.DB.Database == "" {
			return errs.NewFatal("config: DB_DATABASE is required")
		}
	default:
		return errs.NewWithExtra(errs.Fatal, "config: unknown STORE", c.Store)
	}
	if c.JWTSecret == "" {
		return errs.NewFatal("config: JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return errs.NewFatal("config: JWT_TTL must be positive")
	}
	return nil
}

// DSN 組出 pgx 可用的 postgres URL。
func (c *Config) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.DB.Host, c.DB.Port),
		Path:   "/" + c.DB.Database,
	}
	switch {
	case c.DB.Username != "" && c.DB.Password != "":
		u.User = url.UserPassword(c.DB.Username, c.DB.Password)
	case c.DB.Username != "":
		u.User = url.User(c.DB.Username)
	}
	return u.String()
}

func or(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
