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

package model

import (
	"context"

	"github.com/zintix-labs/orgdesk/crud"
)

// Users 操作 users 表。ex 可以是連線池或交易。
type Users struct {
	ex crud.Executor
}

func NewUsers(ex crud.Executor) *Users { return &Users{ex: ex} }

// NewUser 是 Register 的輸入；Password 必須已經是雜湊值。
type NewUser struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
}

// Register 建立使用者並回傳 user_id。
func (u *Users) Register(ctx context.Context, in NewUser) (string, error) {
	_, key, err := crud.Create(ctx, u.ex, TableUsers, crud.Values{
		crud.V("first_name", in.FirstName),
		crud.V("last_name", in.LastName),
		crud.V("email", in.Email),
		crud.V("password", in.Password),
		crud.V("phone", in.Phone),
	}, "user_id")
	if err != nil {
		return "", err
	}
	return crud.AsString(key), nil
}

// ByID 查無資料回傳 (nil, nil)。
func (u *Users) ByID(ctx context.Context, userID string) (*User, error) {
	return u.one(ctx, crud.AllOf(crud.V("user_id", userID)))
}

// ByEmail 查無資料回傳 (nil, nil)。
func (u *Users) ByEmail(ctx context.Context, email string) (*User, error) {
	return u.one(ctx, crud.AllOf(crud.V("email", email)))
}

// BelongsTo 回報使用者是否為組織成員（不含建立者身分）。
func (u *Users) BelongsTo(ctx context.Context, userID, orgID string) (bool, error) {
	row, err := crud.ReadOne(ctx, u.ex, crud.Query{
		Table:  TableUserOrganisation,
		Fields: []string{"user_id"},
		Where:  crud.AllOf(crud.V("user_id", userID), crud.V("org_id", orgID)),
	})
	if err != nil {
		return false, err
	}
	return row != nil, nil
}

func (u *Users) one(ctx context.Context, w crud.Where) (*User, error) {
	row, err := crud.ReadOne(ctx, u.ex, crud.Query{Table: TableUsers, Where: w})
	if err != nil || row == nil {
		return nil, err
	}
	return userFromRow(row), nil
}
