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

	"github.com/zintix-labs/orgdesk/crud"
	"github.com/zintix-labs/orgdesk/dispatch"
	"github.com/zintix-labs/orgdesk/model"
)

type Organisation struct {
	deps Deps
}

type orgForm struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type addUserForm struct {
	UserID string `json:"userId"`
}

var (
	createOrgFailed = map[string]any{"status": "Bad request", "message": "Registration unsuccessful", "statusCode": http.StatusBadRequest}
	addUserFailed   = map[string]any{"status": "Bad request", "message": "Failed to add user to organisation", "statusCode": http.StatusBadRequest}
	orgNotFound     = map[string]string{"error": "Organisation does not exist"}
)

// GetUserOrganisations：POST 轉給 CreateOrganisation；GET 列出自己建立與加入的組織。
func (c *Organisation) GetUserOrganisations(r *http.Request) (*dispatch.Response, error) {
	switch r.Method {
	case http.MethodPost:
		return c.CreateOrganisation(r)
	case http.MethodGet, http.MethodHead:
	default:
		return dispatch.MethodNotAllowed(), nil
	}
	me, resp := c.deps.caller(r)
	if resp != nil {
		return resp, nil
	}
	ctx := r.Context()
	orgs := model.NewOrganisations(c.deps.Store)
	failed := map[string]string{"error": "Failed to get user's organisations"}

	created, err := orgs.CreatedBy(ctx, me)
	if err != nil {
		return c.deps.dbFail(r, "list created organisations", err, failed), nil
	}
	ids, err := orgs.OrgIDsOf(ctx, me)
	if err != nil {
		return c.deps.dbFail(r, "list member organisations", err, failed), nil
	}

	out := make([]orgView, 0, len(created)+len(ids))
	seen := make(map[string]struct{}, cap(out))
	for _, o := range created {
		out = append(out, viewOfOrg(o))
		seen[o.OrgID] = struct{}{}
	}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		o, err := orgs.ByID(ctx, id)
		if err != nil {
			return c.deps.dbFail(r, "load organisation", err, failed), nil
		}
		if o == nil {
			continue
		}
		out = append(out, viewOfOrg(o))
		seen[id] = struct{}{}
	}
	return dispatch.JSON(http.StatusOK, dispatch.Success("User organisations gotten successfully",
		map[string]any{"organisations": out})), nil
}

// CreateOrganisation 以登入者為建立者新增組織。
func (c *Organisation) CreateOrganisation(r *http.Request) (*dispatch.Response, error) {
	if r.Method != http.MethodPost {
		return dispatch.JSON(http.StatusBadRequest, createOrgFailed), nil
	}
	me, resp := c.deps.caller(r)
	if resp != nil {
		return resp, nil
	}
	var f orgForm
	if err := decodeForm(r, &f); err != nil {
		return dispatch.JSON(http.StatusBadRequest, createOrgFailed), nil
	}
	f.Name = sanitise(f.Name)
	f.Description = sanitise(f.Description)

	v := &validator{}
	v.required("name", f.Name, "Organisation name")
	if !v.ok() {
		return dispatch.JSON(http.StatusUnprocessableEntity, map[string]any{"errors": v.errors}), nil
	}

	ctx := r.Context()
	orgs := model.NewOrganisations(c.deps.Store)
	id, err := orgs.Register(ctx, f.Name, f.Description, me)
	if err != nil {
		return c.deps.dbFail(r, "create organisation", err, map[string]any{
			"status":     "Bad request",
			"message":    "Client error",
			"statusCode": http.StatusBadRequest,
		}), nil
	}
	o, err := orgs.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, errors.New("created organisation not found: " + id)
	}
	return dispatch.JSON(http.StatusOK, map[string]any{
		"status": "Organisation created successfully",
		"data":   viewOfOrg(o),
	}), nil
}

// GetOrganisationRecord 只允許建立者讀取。
func (c *Organisation) GetOrganisationRecord(r *http.Request, orgID string) (*dispatch.Response, error) {
	me, resp := c.deps.caller(r)
	if resp != nil {
		return resp, nil
	}
	orgID = sanitise(orgID)
	if !validID(orgID) {
		return dispatch.JSON(http.StatusNotFound, orgNotFound), nil
	}
	o, err := model.NewOrganisations(c.deps.Store).ByID(r.Context(), orgID)
	if err != nil {
		return c.deps.dbFail(r, "load organisation", err, map[string]string{"error": "Failed to get organisation's record"}), nil
	}
	if o == nil {
		return dispatch.JSON(http.StatusNotFound, orgNotFound), nil
	}
	if o.CreatedBy != me {
		return dispatch.Unauthorised(), nil
	}
	return dispatch.JSON(http.StatusOK, dispatch.Success("Organisation record gotten successfully", viewOfOrg(o))), nil
}

// AddUser 由組織建立者把另一位使用者加入組織。
func (c *Organisation) AddUser(r *http.Request, orgID string) (*dispatch.Response, error) {
	if r.Method != http.MethodPost {
		return dispatch.JSON(http.StatusBadRequest, addUserFailed), nil
	}
	me, resp := c.deps.caller(r)
	if resp != nil {
		return resp, nil
	}
	ctx := r.Context()
	orgID = sanitise(orgID)
	orgs := model.NewOrganisations(c.deps.Store)

	isCreator := false
	if validID(orgID) {
		ok, err := orgs.IsCreator(ctx, me, orgID)
		if err != nil {
			return nil, err
		}
		isCreator = ok
	}
	if !isCreator {
		return dispatch.JSON(http.StatusUnauthorized, addUserFailed), nil
	}

	var f addUserForm
	if err := decodeForm(r, &f); err != nil {
		return dispatch.JSON(http.StatusBadRequest, addUserFailed), nil
	}
	f.UserID = sanitise(f.UserID)
	v := &validator{}
	if v.required("userId", f.UserID, "User ID") && !validID(f.UserID) {
		v.add("userId", "User ID is not a valid id")
	}
	if !v.ok() {
		return dispatch.JSON(http.StatusUnprocessableEntity, map[string]any{
			"status":  "Bad Request",
			"message": "Client Error",
			"errors":  v.errors,
		}), nil
	}

	u, err := model.NewUsers(c.deps.Store).ByID(ctx, f.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return dispatch.JSON(http.StatusNotFound, map[string]string{"error": "User does not exist"}), nil
	}

	if err := orgs.AddUser(ctx, orgID, f.UserID); err != nil {
		if crud.IsConflict(err) {
			return dispatch.JSON(http.StatusBadRequest, map[string]any{
				"status":  "Bad request",
				"message": "Failed to add user to organisation",
				"error":   "User is already in the organisation",
			}), nil
		}
		return c.deps.dbFail(r, "add user to organisation", err, addUserFailed), nil
	}
	return dispatch.JSON(http.StatusOK, map[string]string{
		"status":  "success",
		"message": "User added to organisation successfully",
	}), nil
}
