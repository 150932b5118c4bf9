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

// Package auth 負責登入 session（JWT）與密碼雜湊。
//
// token 放在 cookie USR_JWT_042，也接受 Authorization: Bearer <token>。
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/zintix-labs/orgdesk/errs"
)

const (
	CookieName = "USR_JWT_042"
	// CookieMaxAge 是 cookie 的存活秒數（一天）；token 本身的 exp 另由 TTL 決定。
	CookieMaxAge = 86400
	DefaultTTL   = 30 * 24 * time.Hour
)

var (
	ErrNoToken      = errs.NewDenied("no session token")
	ErrInvalidToken = errs.NewDenied("invalid session token")
)

// Claims 是 session token 的內容。
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Sessions 簽發與驗證 HS256 token。建立後唯讀，可共用。
type Sessions struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(secret string, ttl time.Duration) (*Sessions, error) {
	if len(secret) < 16 {
		return nil, errs.NewFatal("jwt secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// Issue 為 userID 簽發 token；issuer 通常是請求的 host。
func (s *Sessions) Issue(userID, issuer string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			ID:        uuid.NewString(),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errs.Wrap(err, "sign session token")
	}
	return tok, nil
}

// Parse 驗證 token 並回傳 claims。只接受 HS256。
func (s *Sessions) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, errs.Wrap(ErrInvalidToken, err.Error())
	}
	if claims.UserID == "" {
		return nil, errs.WrapWithExtra(ErrInvalidToken, "missing claim", "userId")
	}
	return claims, nil
}

// TokenFrom 取出請求中的 token：cookie 優先，其次 Bearer header。
func TokenFrom(r *http.Request) (string, error) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value, nil
	}
	h := r.Header.Get("Authorization")
	if tok, ok := strings.CutPrefix(h, "Bearer "); ok && strings.TrimSpace(tok) != "" {
		return strings.TrimSpace(tok), nil
	}
	return "", ErrNoToken
}

// UserID 回傳請求所屬的使用者。
func (s *Sessions) UserID(r *http.Request) (string, error) {
	tok, err := TokenFrom(r)
	if err != nil {
		return "", err
	}
	c, err := s.Parse(tok)
	if err != nil {
		return "", err
	}
	return c.UserID, nil
}

// IsAuthenticated 實作 dispatch.Verifier：token 存在且驗證通過。
func (s *Sessions) IsAuthenticated(r *http.Request) bool {
	_, err := s.UserID(r)
	return err == nil
}

// Cookie 回傳攜帶 token 的 session cookie。
func Cookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
