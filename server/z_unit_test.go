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

package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/orgdesk/server/svrcfg"
)

func okHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	})
}

func TestBuildRequiresHandler(t *testing.T) {
	_, err := Build(&svrcfg.SvrCfg{})
	assert.Error(t, err)
	_, err = Build(nil)
	assert.Error(t, err)
}

func TestBuildMountsHandlerAndHealthz(t *testing.T) {
	cfg := &svrcfg.SvrCfg{Handler: okHandler(`{"from":"dispatcher"}`)}
	svr, err := Build(cfg)
	require.NoError(t, err)
	assert.Equal(t, svrcfg.DefaultAddr, svr.Address())

	for _, p := range []string{"/", "/auth/login", "/api/organisations/x/users"} {
		rec := httptest.NewRecorder()
		svr.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, p, nil))
		assert.Equal(t, http.StatusOK, rec.Code, p)
		assert.JSONEq(t, `{"from":"dispatcher"}`, rec.Body.String(), p)
		assert.NotEmpty(t, rec.Header().Get("Content-Type"))
	}

	rec := httptest.NewRecorder()
	svr.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHealthzReportsPingFailure(t *testing.T) {
	cfg := &svrcfg.SvrCfg{
		Handler: okHandler("{}"),
		Ping:    func(context.Context) error { return errors.New("db down") },
	}
	svr, err := Build(cfg)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	svr.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestResponsesAreCompressed(t *testing.T) {
	svr, err := Build(&svrcfg.SvrCfg{Handler: okHandler(`{"hello":"world"}`)})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	svr.ServeHTTP(rec, req)

	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.JSONEq(t, `{"hello":"world"}`, string(plain))
}

func TestPanicBecomesJSON500(t *testing.T) {
	svr, err := Build(&svrcfg.SvrCfg{Handler: http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	svr.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}

func TestRunContextStopsAndCloses(t *testing.T) {
	closed := make(chan struct{})
	cfg := &svrcfg.SvrCfg{
		Addr:    "127.0.0.1:0",
		Handler: okHandler("{}"),
		OnClose: []func(){func() { close(closed) }},
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunContext(ctx, cfg) }()
	cancel()

	require.NoError(t, <-done)
	select {
	case <-closed:
	default:
		t.Fatal("OnClose was not called")
	}
}

func TestRunContextClosesWhenBuildFails(t *testing.T) {
	calls := 0
	cfg := &svrcfg.SvrCfg{OnClose: []func(){func() { calls++ }, nil, func() { calls++ }}}
	err := RunContext(context.Background(), cfg)
	require.Error(t, err)
	assert.Equal(t, 2, calls)

	require.Error(t, RunContext(context.Background(), nil))
}
