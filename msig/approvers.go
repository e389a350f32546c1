// Copyright 2026 Blink Labs Software
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

package msig

import (
	"errors"
	"fmt"
	"slices"

	"github.com/seedsproject/seedsdist/action"
	"github.com/seedsproject/seedsdist/chainrpc"
)

var ErrNoActivePermission = errors.New("account has no active permission")

type ApproverOptions struct {
	// Dedup drops repeated actor@permission pairs, keeping the first
	Dedup bool
}

// Approvers returns the accounts required to approve a proposal for account,
// taken from its active permission in the order the chain reports them. The
// account's own entry is excluded.
func Approvers(
	account string,
	info *chainrpc.Account,
	opts ApproverOptions,
) ([]action.PermissionLevel, error) {
	if info == nil {
		return nil, fmt.Errorf("no account info for %s", account)
	}
	idx := slices.IndexFunc(info.Permissions, func(p chainrpc.Permission) bool {
		return p.PermName == action.PermissionActive
	})
	if idx < 0 {
		return nil, ErrNoActivePermission
	}
	var ret []action.PermissionLevel
	for _, entry := range info.Permissions[idx].RequiredAuth.Accounts {
		level := action.PermissionLevel{
			Actor:      entry.Permission.Actor,
			Permission: entry.Permission.Permission,
		}
		if level.Actor == account {
			continue
		}
		if opts.Dedup && slices.Contains(ret, level) {
			continue
		}
		ret = append(ret, level)
	}
	return ret, nil
}
