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

package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressConfig 壓縮等級。
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
}

// encoder 是 gzip.Writer 與 zstd.Encoder 的共同介面。
type encoder interface {
	io.WriteCloser
	Reset(w io.Writer)
	Flush() error
}

// codec 一種 Content-Encoding 與它的 writer pool。
type codec struct {
	name string
	pool sync.Pool
}

func newCodecs(cfg CompressConfig) []*codec {
	zc := &codec{name: "zstd"}
	zc.pool.New = func() any {
		zw, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(cfg.ZstdLevel),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			return nil
		}
		return zw
	}
	gc := &codec{name: "gzip"}
	gc.pool.New = func() any {
		gw, err := gzip.NewWriterLevel(nil, cfg.GzipLevel)
		if err != nil {
			return nil
		}
		return gw
	}
	// 優先序：zstd > gzip
	return []*codec{zc, gc}
}

func (c *codec) get(w io.Writer) encoder {
	e, _ := c.pool.Get().(encoder)
	if e == nil {
		return nil
	}
	e.Reset(w)
	return e
}

// release 關閉 encoder；disabled 時先導向 io.Discard，避免 footer 寫進 204/304。
func (c *codec) release(e encoder, disabled bool) {
	if disabled {
		e.Reset(io.Discard)
	}
	_ = e.Close()
	c.pool.Put(e)
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") ||
		r.Header.Get("Upgrade") != ""
}

func isNoBodyStatus(code int) bool {
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

type compressResponseWriter struct {
	http.ResponseWriter
	enc      encoder
	disabled bool
}

func (cw *compressResponseWriter) Write(b []byte) (int, error) {
	if cw.disabled {
		return cw.ResponseWriter.Write(b)
	}
	cw.Header().Del("Content-Length")
	if cw.Header().Get("Content-Type") == "" {
		cw.Header().Set("Content-Type", http.DetectContentType(b))
	}
	return cw.enc.Write(b)
}

func (cw *compressResponseWriter) WriteHeader(code int) {
	cw.Header().Del("Content-Length")
	if isNoBodyStatus(code) {
		cw.disabled = true
		cw.Header().Del("Content-Encoding")
		cw.Header().Del("Vary")
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressResponseWriter) Flush() {
	if !cw.disabled {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

// Compression 以 DefaultCompressConfig 壓縮回應。
var Compression = CompressionWith(DefaultCompressConfig)

// CompressionWith 依 Accept-Encoding 選 zstd 或 gzip；HEAD、WebSocket 與已編碼的回應不處理。
func CompressionWith(cfg CompressConfig) func(http.Handler) http.Handler {
	codecs := newCodecs(cfg)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || isWebSocketUpgrade(r) || w.Header().Get("Content-Encoding") != "" {
				next.ServeHTTP(w, r)
				return
			}

			accept := r.Header.Get("Accept-Encoding")
			for _, c := range codecs {
				if !strings.Contains(accept, c.name) {
					continue
				}
				enc := c.get(w)
				if enc == nil {
					break
				}
				w.Header().Set("Content-Encoding", c.name)
				w.Header().Add("Vary", "Accept-Encoding")

				cw := &compressResponseWriter{ResponseWriter: w, enc: enc}
				defer func() { c.release(enc, cw.disabled) }()
				next.ServeHTTP(cw, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
