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

package auth

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/zintix-labs/orgdesk/errs"
)

// PasswordCost 是 bcrypt cost。
const PasswordCost = 12

// Hasher 讓測試與 seed 可以換成較低的 cost。
type Hasher struct {
	Cost int
}

var DefaultHasher = Hasher{Cost: PasswordCost}

func (h Hasher) Hash(password string) (string, error) {
	bs, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return "", errs.Wrap(err, "hash password")
	}
	return string(bs), nil
}

func (h Hasher) Verify(password, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

func HashPassword(password string) (string, error) { return DefaultHasher.Hash(password) }

func VerifyPassword(password, hashed string) bool { return DefaultHasher.Verify(password, hashed) }
