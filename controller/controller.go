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

// Package controller 實作路由表指向的 handler（User.* / Organisation.*）。
package controller

import (
	"log/slog"
	"net/http"

	"github.com/zintix-labs/orgdesk/auth"
	"github.com/zintix-labs/orgdesk/dispatch"
	"github.com/zintix-labs/orgdesk/errs"
	"github.com/zintix-labs/orgdesk/model"
)

// Deps 是 controller 的依賴。
type Deps struct {
	Store    model.Store
	Sessions *auth.Sessions
	Hasher   auth.Hasher
	Log      *slog.Logger
}

func (d *Deps) valid() error {
	if d.Store == nil {
		return errs.NewFatal("controller: store is required")
	}
	if d.Sessions == nil {
		return errs.NewFatal("controller: sessions is required")
	}
	if d.Hasher.Cost == 0 {
		d.Hasher = auth.DefaultHasher
	}
	if d.Log == nil {
		d.Log = slog.New(slog.DiscardHandler)
	}
	return nil
}

// Register 把所有 controller action 註冊到 reg。
func Register(reg *dispatch.Registry, d Deps) error {
	if err := d.valid(); err != nil {
		return err
	}
	u := &User{deps: d}
	o := &Organisation{deps: d}

	entries := []struct {
		ctrl, action string
		h            dispatch.Handler
	}{
		{"User", "registerUser", dispatch.Func0(u.RegisterUser)},
		{"User", "loginUser", dispatch.Func0(u.LoginUser)},
		{"User", "getUserRecord", dispatch.Func1(u.GetUserRecord)},
		{"Organisation", "getUserOrganisations", dispatch.Func0(o.GetUserOrganisations)},
		{"Organisation", "createOrganisation", dispatch.Func0(o.CreateOrganisation)},
		{"Organisation", "getOrganisationRecord", dispatch.Func1(o.GetOrganisationRecord)},
		{"Organisation", "addUser", dispatch.Func1(o.AddUser)},
	}
	for _, e := range entries {
		if err := reg.Register(e.ctrl, e.action, e.h); err != nil {
			return err
		}
	}
	return nil
}

// caller 取出已登入的使用者；路由已經過驗證，失敗代表 token 在途中失效。
func (d *Deps) caller(r *http.Request) (string, *dispatch.Response) {
	id, err := d.Sessions.UserID(r)
	if err != nil {
		return "", dispatch.NotLoggedIn()
	}
	return id, nil
}

// dbFail 記錄資料層錯誤並回傳 400 body。
func (d *Deps) dbFail(r *http.Request, msg string, err error, body any) *dispatch.Response {
	d.Log.LogAttrs(r.Context(), slog.LevelError, msg,
		slog.String("path", r.URL.Path),
		slog.Any("err", err),
	)
	return dispatch.JSON(http.StatusBadRequest, body)
}

type userView struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func viewOfUser(u *model.User) userView {
	return userView{UserID: u.UserID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email, Phone: u.Phone}
}

type orgView struct {
	OrgID       string `json:"orgId"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func viewOfOrg(o *model.Organisation) orgView {
	return orgView{OrgID: o.OrgID, Name: o.Name, Description: o.Description}
}
