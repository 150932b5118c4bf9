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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/orgdesk/auth"
)

func envOf(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	c, err := FromEnv(envOf(map[string]string{
		"DB_DATABASE": "orgdesk",
		"JWT_SECRET":  "s",
	}))
	require.NoError(t, err)
	assert.Equal(t, StorePostgres, c.Store)
	assert.Equal(t, ":5808", c.Addr)
	assert.Equal(t, "dev", c.LogMode)
	assert.Equal(t, auth.DefaultTTL, c.JWTTTL)
	assert.Equal(t, "postgres://localhost:5432/orgdesk", c.DSN())
}

func TestFromEnvOverrides(t *testing.T) {
	c, err := FromEnv(envOf(map[string]string{
		"DB_HOST":     "db",
		"DB_PORT":     "6543",
		"DB_DATABASE": "app",
		"DB_USERNAME": "alice",
		"DB_PASSWORD": "p@ss/word",
		"JWT_SECRET":  "s",
		"JWT_TTL":     "2h",
		"APP_ADDR":    ":9000",
		"STORE":       "Postgres",
	}))
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, c.JWTTTL)
	assert.Equal(t, ":9000", c.Addr)
	assert.Equal(t, "postgres://alice:p%40ss%2Fword@db:6543/app", c.DSN())
}

func TestFromEnvErrors(t *testing.T) {
	cases := map[string]map[string]string{
		"no secret":      {"STORE": "memory"},
		"no database":    {"JWT_SECRET": "s"},
		"bad connection": {"JWT_SECRET": "s", "DB_DATABASE": "x", "DB_CONNECTION": "mysql"},
		"bad store":      {"JWT_SECRET": "s", "STORE": "redis"},
		"bad ttl":        {"JWT_SECRET": "s", "STORE": "memory", "JWT_TTL": "soon"},
		"negative ttl":   {"JWT_SECRET": "s", "STORE": "memory", "JWT_TTL": "-1h"},
	}
	for name, env := range cases {
		_, err := FromEnv(envOf(env))
		assert.Error(t, err, name)
	}
}

func TestMemoryStoreNeedsNoDatabase(t *testing.T) {
	c, err := FromEnv(envOf(map[string]string{"JWT_SECRET": "s", "STORE": "memory"}))
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, c.Store)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("STORE=memory\nJWT_SECRET=from-file\nAPP_ADDR=:7000\n"), 0o600))

	t.Setenv("STORE", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("APP_ADDR", ":7100")
	// godotenv 不覆蓋已設定的值；空字串也算已設定，先清掉
	require.NoError(t, os.Unsetenv("STORE"))
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	c, err := Load(file)
	require.NoError(t, err)
	assert.Equal(t, "from-file", c.JWTSecret)
	assert.Equal(t, ":7100", c.Addr)
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("JWT_SECRET", "env-secret")
	c, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, "env-secret", c.JWTSecret)
}
