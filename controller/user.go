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

package controller

import (
	"errors"
	"net/http"

	"github.com/zintix-labs/orgdesk/auth"
	"github.com/zintix-labs/orgdesk/crud"
	"github.com/zintix-labs/orgdesk/dispatch"
	"github.com/zintix-labs/orgdesk/model"
)

type User struct {
	deps Deps
}

type registerForm struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
}

type loginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionData struct {
	AccessToken string   `json:"accessToken"`
	User        userView `json:"user"`
}

var (
	registerFailed = map[string]any{"status": "Bad request", "message": "Registration unsuccessful", "statusCode": http.StatusBadRequest}
	loginFailed    = map[string]any{"status": "Bad request", "message": "Authentication failed", "statusCode": http.StatusUnauthorized}
)

// RegisterUser 建立使用者與預設組織（同一個交易），成功後直接登入。
func (c *User) RegisterUser(r *http.Request) (*dispatch.Response, error) {
	if r.Method != http.MethodPost {
		return dispatch.JSON(http.StatusBadRequest, registerFailed), nil
	}
	var f registerForm
	if err := decodeForm(r, &f); err != nil {
		return dispatch.JSON(http.StatusBadRequest, registerFailed), nil
	}
	f.FirstName = sanitise(f.FirstName)
	f.LastName = sanitise(f.LastName)
	f.Email = sanitiseEmail(f.Email)
	f.Phone = sanitise(f.Phone)

	v := &validator{}
	v.required("firstName", f.FirstName, "Firstname")
	v.required("lastName", f.LastName, "Lastname")
	v.email("email", f.Email)
	v.password("password", f.Password)
	if !v.ok() {
		return dispatch.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": v.errors}), nil
	}

	hashed, err := c.deps.Hasher.Hash(f.Password)
	if err != nil {
		return nil, err
	}

	ctx := r.Context()
	var userID string
	err = c.deps.Store.InTx(ctx, func(ex crud.Executor) error {
		id, err := model.NewUsers(ex).Register(ctx, model.NewUser{
			FirstName: f.FirstName,
			LastName:  f.LastName,
			Email:     f.Email,
			Password:  hashed,
			Phone:     f.Phone,
		})
		if err != nil {
			return err
		}
		if _, err := model.NewOrganisations(ex).Register(ctx, f.FirstName+"'s Organisation", "", id); err != nil {
			return err
		}
		userID = id
		return nil
	})
	if err != nil {
		if crud.IsConflict(err) {
			return dispatch.JSON(http.StatusBadRequest, map[string]any{
				"status":  "Bad request",
				"message": "Registration unsuccessful",
				"error":   "User with email already exists",
			}), nil
		}
		return c.deps.dbFail(r, "register user", err, map[string]any{
			"status":  "Bad request",
			"message": "Registration unsuccessful",
		}), nil
	}

	u, err := model.NewUsers(c.deps.Store).ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.New("registered user not found: " + userID)
	}
	return c.session(r, u, "Registration successful")
}

// LoginUser 以 email/password 登入。
func (c *User) LoginUser(r *http.Request) (*dispatch.Response, error) {
	if r.Method != http.MethodPost {
		return dispatch.JSON(http.StatusUnauthorized, loginFailed), nil
	}
	var f loginForm
	if err := decodeForm(r, &f); err != nil {
		return dispatch.JSON(http.StatusUnauthorized, loginFailed), nil
	}

	u, err := model.NewUsers(c.deps.Store).ByEmail(r.Context(), sanitiseEmail(f.Email))
	if err != nil {
		return nil, err
	}
	if u == nil || !c.deps.Hasher.Verify(f.Password, u.Password) {
		return dispatch.JSON(http.StatusUnauthorized, loginFailed), nil
	}
	return c.session(r, u, "Login successful")
}

// GetUserRecord 回傳自己的資料，或自己建立的組織中成員的資料。
func (c *User) GetUserRecord(r *http.Request, id string) (*dispatch.Response, error) {
	me, resp := c.deps.caller(r)
	if resp != nil {
		return resp, nil
	}
	ctx := r.Context()
	id = sanitise(id)

	member := false
	if id != me {
		if !validID(id) {
			return dispatch.JSON(http.StatusNotFound, map[string]string{"error": "User does not exist"}), nil
		}
		created, err := model.NewOrganisations(c.deps.Store).CreatedBy(ctx, me)
		if err != nil {
			return nil, err
		}
		users := model.NewUsers(c.deps.Store)
		for _, org := range created {
			in, err := users.BelongsTo(ctx, id, org.OrgID)
			if err != nil {
				return nil, err
			}
			if in {
				member = true
				break
			}
		}
		if !member {
			return dispatch.JSON(http.StatusUnauthorized, map[string]string{"error": "User cannot retrieve records"}), nil
		}
	}

	u, err := model.NewUsers(c.deps.Store).ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return dispatch.JSON(http.StatusNotFound, map[string]string{"error": "User does not exist"}), nil
	}
	msg := "User record gotten successfully"
	if member {
		msg = "Organisation member user record gotten successfully"
	}
	return dispatch.JSON(http.StatusOK, dispatch.Success(msg, viewOfUser(u))), nil
}

func (c *User) session(r *http.Request, u *model.User, msg string) (*dispatch.Response, error) {
	tok, err := c.deps.Sessions.Issue(u.UserID, r.Host)
	if err != nil {
		return nil, err
	}
	return dispatch.JSON(http.StatusOK, dispatch.Success(msg, sessionData{
		AccessToken: tok,
		User:        viewOfUser(u),
	})).AddCookie(auth.Cookie(tok)), nil
}
