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
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zintix-labs/orgdesk/route"
)

type countingVerifier struct {
	ok    bool
	calls int
}

func (v *countingVerifier) IsAuthenticated(*http.Request) bool {
	v.calls++
	return v.ok
}

type panicVerifier struct{}

func (panicVerifier) IsAuthenticated(*http.Request) bool { panic("verifier broke") }

func testTable(t *testing.T) *route.Table {
	t.Helper()
	tb, err := route.NewTable(nil,
		route.Declaration{Template: "ping", Controller: "Sys", Action: "ping"},
		route.Declaration{Template: "users/:id", Controller: "User", Action: "get",
			Params: map[string]route.ParamType{"id": route.Number}, Auth: true},
		route.Declaration{Template: "orgs/:org/users/:user", Controller: "Org", Action: "member",
			Params: map[string]route.ParamType{"org": route.String, "user": route.String}},
		route.Declaration{Template: "boom", Controller: "Sys", Action: "boom"},
		route.Declaration{Template: "fail", Controller: "Sys", Action: "fail"},
	)
	require.NoError(t, err)
	return tb
}

type calls struct {
	user   []string
	member [][2]string
}

func testRegistry(c *calls) *Registry {
	reg := NewRegistry()
	reg.MustRegister("Sys", "ping", Func0(func(*http.Request) (*Response, error) {
		return JSON(http.StatusOK, map[string]string{"pong": "ok"}), nil
	}))
	reg.MustRegister("User", "get", Func1(func(_ *http.Request, id string) (*Response, error) {
		c.user = append(c.user, id)
		return JSON(http.StatusOK, map[string]string{"id": id}), nil
	}))
	reg.MustRegister("Org", "member", Func2(func(_ *http.Request, org, user string) (*Response, error) {
		c.member = append(c.member, [2]string{org, user})
		return JSON(http.StatusOK, nil), nil
	}))
	reg.MustRegister("Sys", "boom", Func0(func(*http.Request) (*Response, error) {
		panic("kaboom")
	}))
	reg.MustRegister("Sys", "fail", Func0(func(*http.Request) (*Response, error) {
		return nil, errors.New("db down: secret dsn")
	}))
	return reg
}

func newTestDispatcher(t *testing.T, v Verifier, buf *bytes.Buffer) (*Dispatcher, *calls) {
	t.Helper()
	c := &calls{}
	log := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d, err := New(testTable(t), testRegistry(c), v, log)
	require.NoError(t, err)
	return d, c
}

func TestDispatchOptionsShortCircuits(t *testing.T) {
	v := &countingVerifier{}
	d, _ := newTestDispatcher(t, v, &bytes.Buffer{})

	resp := d.Dispatch(httptest.NewRequest(http.MethodOptions, "/users/1", nil))
	assert.Equal(t, http.StatusNoContent, resp.Status)
	assert.Empty(t, resp.Body)
	assert.Equal(t, 0, v.calls)
}

func TestDispatchNoMatch(t *testing.T) {
	d, _ := newTestDispatcher(t, &countingVerifier{ok: true}, &bytes.Buffer{})
	resp := d.Dispatch(httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, resp.Status)
	assert.JSONEq(t, `{"error":"Not Found"}`, string(resp.Body))

	// number 參數不接受字母
	resp = d.Dispatch(httptest.NewRequest(http.MethodGet, "/users/abc", nil))
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestDispatchAuthGate(t *testing.T) {
	v := &countingVerifier{ok: false}
	d, c := newTestDispatcher(t, v, &bytes.Buffer{})

	resp := d.Dispatch(httptest.NewRequest(http.MethodGet, "/users/42", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Status)
	assert.JSONEq(t, `{"error":"User is not logged in"}`, string(resp.Body))
	assert.Equal(t, 1, v.calls)
	assert.Empty(t, c.user)

	v.ok = true
	resp = d.Dispatch(httptest.NewRequest(http.MethodGet, "/users/42", nil))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 2, v.calls)
	assert.Equal(t, []string{"42"}, c.user)
}

func TestDispatchUnauthenticatedRouteSkipsVerifier(t *testing.T) {
	v := &countingVerifier{}
	d, _ := newTestDispatcher(t, v, &bytes.Buffer{})
	resp := d.Dispatch(httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, 0, v.calls)
}

func TestDispatchPositionalArgs(t *testing.T) {
	d, c := newTestDispatcher(t, &countingVerifier{}, &bytes.Buffer{})
	resp := d.Dispatch(httptest.NewRequest(http.MethodGet, "/orgs/acme/users/u-7", nil))
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, [][2]string{{"acme", "u-7"}}, c.member)
}

func TestDispatchPanicBecomes500(t *testing.T) {
	buf := &bytes.Buffer{}
	d, _ := newTestDispatcher(t, &countingVerifier{}, buf)

	resp := d.Dispatch(httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, string(resp.Body))
	assert.Contains(t, buf.String(), "kaboom")
}

func TestDispatchVerifierPanicBecomes500(t *testing.T) {
	buf := &bytes.Buffer{}
	d, c := newTestDispatcher(t, panicVerifier{}, buf)

	var resp *Response
	require.NotPanics(t, func() {
		resp = d.Dispatch(httptest.NewRequest(http.MethodGet, "/users/42", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, string(resp.Body))
	assert.Contains(t, buf.String(), "verifier broke")
	assert.Empty(t, c.user)
}

func TestDispatchErrorBecomesGeneric500(t *testing.T) {
	buf := &bytes.Buffer{}
	d, _ := newTestDispatcher(t, &countingVerifier{}, buf)

	resp := d.Dispatch(httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.NotContains(t, string(resp.Body), "secret")
	assert.Contains(t, buf.String(), "secret dsn")
}

func TestServeHTTPWritesHeaders(t *testing.T) {
	d, _ := newTestDispatcher(t, &countingVerifier{}, &bytes.Buffer{})
	rec := httptest.NewRecorder()
	d.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentTypeJSON, rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"pong":"ok"}`, rec.Body.String())
}

func TestNewRejectsUnresolvedHandler(t *testing.T) {
	reg := NewRegistry()
	reg.MustRegister("Sys", "ping", Func0(func(*http.Request) (*Response, error) { return NoContent(), nil }))
	_, err := New(testTable(t), reg, &countingVerifier{}, nil)
	assert.Error(t, err)
}

func TestNewRejectsArityMismatch(t *testing.T) {
	tb, err := route.NewTable(nil, route.Declaration{
		Template: "users/:id", Controller: "User", Action: "get",
		Params: map[string]route.ParamType{"id": route.Number},
	})
	require.NoError(t, err)

	reg := NewRegistry()
	reg.MustRegister("User", "get", Func0(func(*http.Request) (*Response, error) { return NoContent(), nil }))
	_, err = New(tb, reg, nil, nil)
	assert.Error(t, err)
}

func TestRegistryDuplicate(t *testing.T) {
	reg := NewRegistry()
	h := Func0(func(*http.Request) (*Response, error) { return NoContent(), nil })
	require.NoError(t, reg.Register("A", "x", h))
	assert.Error(t, reg.Register("A", "x", h))
	assert.Error(t, reg.Register("A", "y", nil))
	assert.Equal(t, []Key{{"A", "x"}}, reg.Keys())
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "VALIDATION_ERROR", ErrorCode("validation error"))
	assert.Equal(t, "NO_DATA", ErrorCode("no \t data"))
}

func TestResponseCookie(t *testing.T) {
	resp := JSON(http.StatusOK, Success("ok", nil)).
		AddCookie(&http.Cookie{Name: "sid", Value: "v", Path: "/"})
	rec := httptest.NewRecorder()
	resp.WriteTo(rec)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "sid=v")
	assert.JSONEq(t, `{"status":"success","message":"ok"}`, rec.Body.String())
}
