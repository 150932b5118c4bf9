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
	"slices"

	"github.com/zintix-labs/orgdesk/crud"
)

// Organisations 操作 organisations 與 user_organisation。
type Organisations struct {
	ex crud.Executor
}

func NewOrganisations(ex crud.Executor) *Organisations { return &Organisations{ex: ex} }

// Register 建立組織並回傳 org_id。
func (o *Organisations) Register(ctx context.Context, name, description, createdBy string) (string, error) {
	_, key, err := crud.Create(ctx, o.ex, TableOrganisations, crud.Values{
		crud.V("name", name),
		crud.V("description", description),
		crud.V("created_by", createdBy),
	}, "org_id")
	if err != nil {
		return "", err
	}
	return crud.AsString(key), nil
}

// AddUser 把使用者加入組織；重複加入時回傳的錯誤滿足 crud.IsConflict。
func (o *Organisations) AddUser(ctx context.Context, orgID, userID string) error {
	_, _, err := crud.Create(ctx, o.ex, TableUserOrganisation, crud.Values{
		crud.V("user_id", userID),
		crud.V("org_id", orgID),
	}, "")
	return err
}

// ByID 查無資料回傳 (nil, nil)。
func (o *Organisations) ByID(ctx context.Context, orgID string) (*Organisation, error) {
	row, err := crud.ReadOne(ctx, o.ex, crud.Query{
		Table: TableOrganisations,
		Where: crud.AllOf(crud.V("org_id", orgID)),
	})
	if err != nil || row == nil {
		return nil, err
	}
	return orgFromRow(row), nil
}

// CreatedBy 列出使用者建立的組織。
func (o *Organisations) CreatedBy(ctx context.Context, userID string) ([]*Organisation, error) {
	rows, err := crud.Read(ctx, o.ex, crud.Query{
		Table: TableOrganisations,
		Where: crud.AllOf(crud.V("created_by", userID)),
		All:   true,
	})
	if err != nil {
		return nil, err
	}
	out := make([]*Organisation, 0, len(rows))
	for _, r := range rows {
		out = append(out, orgFromRow(r))
	}
	return out, nil
}

// IsCreator 回報 orgID 是否由 userID 建立。
func (o *Organisations) IsCreator(ctx context.Context, userID, orgID string) (bool, error) {
	created, err := o.CreatedBy(ctx, userID)
	if err != nil {
		return false, err
	}
	return slices.ContainsFunc(created, func(org *Organisation) bool { return org.OrgID == orgID }), nil
}

// Members 列出組織成員的 user_id（不含建立者）。
func (o *Organisations) Members(ctx context.Context, orgID string) ([]string, error) {
	rows, err := crud.Read(ctx, o.ex, crud.Query{
		Table:  TableUserOrganisation,
		Fields: []string{"user_id"},
		Where:  crud.AllOf(crud.V("org_id", orgID)),
		All:    true,
	})
	if err != nil {
		return nil, err
	}
	return rows.Strings("user_id"), nil
}

// OrgIDsOf 列出使用者以成員身分加入的組織 id。
func (o *Organisations) OrgIDsOf(ctx context.Context, userID string) ([]string, error) {
	rows, err := crud.Read(ctx, o.ex, crud.Query{
		Table:  TableUserOrganisation,
		Fields: []string{"org_id"},
		Where:  crud.AllOf(crud.V("user_id", userID)),
		All:    true,
	})
	if err != nil {
		return nil, err
	}
	return rows.Strings("org_id"), nil
}
