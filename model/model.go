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

// Package model 把 users / organisations / user_organisation 三張表包成具名操作。
//
// 所有 SQL 都經由 crud 產生；表名與欄位名都是這裡的常數。
package model

import (
	"context"

	"github.com/zintix-labs/orgdesk/crud"
)

const (
	TableUsers            = "users"
	TableOrganisations    = "organisations"
	TableUserOrganisation = "user_organisation"
)

// Store 是 model 需要的資料層能力：一般的 Executor 加上交易。
type Store interface {
	crud.Executor
	InTx(ctx context.Context, fn func(ex crud.Executor) error) error
}

// User 對應 users 表。Password 為雜湊值，不輸出到 JSON。
type User struct {
	UserID    string `json:"userId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"-"`
	Phone     string `json:"phone"`
}

// Organisation 對應 organisations 表。
type Organisation struct {
	OrgID       string `json:"orgId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedBy   string `json:"-"`
}

func userFromRow(r crud.Row) *User {
	return &User{
		UserID:    r.String("user_id"),
		FirstName: r.String("first_name"),
		LastName:  r.String("last_name"),
		Email:     r.String("email"),
		Password:  r.String("password"),
		Phone:     r.String("phone"),
	}
}

func orgFromRow(r crud.Row) *Organisation {
	return &Organisation{
		OrgID:       r.String("org_id"),
		Name:        r.String("name"),
		Description: r.String("description"),
		CreatedBy:   r.String("created_by"),
	}
}
