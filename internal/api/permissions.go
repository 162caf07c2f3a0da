// SPDX-FileCopyrightText: Copyright 2025 Nortide Labs
// SPDX-License-Identifier: MIT

package api

import (
	"fmt"
	"slices"
)

// Permission access levels in increasing order of capability.
const (
	PermissionLevelNone  = "none"
	PermissionLevelRead  = "read"
	PermissionLevelWrite = "write"
	PermissionLevelAdmin = "admin"
)

// permissionRank maps a permission level to its capability rank. Unknown
// levels have rank zero and thus never satisfy a request.
var permissionRank = map[string]int{
	PermissionLevelRead:  1,
	PermissionLevelWrite: 2,
	PermissionLevelAdmin: 3,
}

// VerifyScopes checks that every requested scope is covered by the
// permissions granted to an installation. A scope is covered when the
// installation holds the same permission at an equal or higher level.
// Requested levels outside read/write/admin are an error, as scoped token
// requests would be rejected by the API anyway.
func VerifyScopes(granted, requested map[string]string) error {
	missing := make([]string, 0, len(requested))
	for scope, level := range requested {
		want, ok := permissionRank[level]
		if !ok {
			return fmt.Errorf("unknown %s level: %s", scope, level)
		}
		if permissionRank[granted[scope]] < want {
			missing = append(missing, scope+":"+level)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return fmt.Errorf("missing requested permissions: %v", missing)
	}
	return nil
}
