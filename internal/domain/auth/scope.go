package auth

import "slices"

// Scope is the caller's authorization context: who they are, what they may do
// and which branches they may see. Admins see every branch.
type Scope struct {
	UserID      int64    `json:"userId"`
	Username    string   `json:"username"`
	IsAdmin     bool     `json:"isAdmin"`
	Permissions []string `json:"permissions"`
	BranchIDs   []int64  `json:"branchIds"`
}

func AdminScope() Scope {
	return Scope{IsAdmin: true}
}

func (s Scope) Has(perm string) bool {
	return s.IsAdmin || slices.Contains(s.Permissions, perm)
}

func (s Scope) CanAccessBranch(branchID int64) bool {
	return s.IsAdmin || slices.Contains(s.BranchIDs, branchID)
}

// BranchFilter returns nil for an unrestricted scope, otherwise the (possibly
// empty) list of branches the caller is assigned to.
func (s Scope) BranchFilter() []int64 {
	if s.IsAdmin {
		return nil
	}
	out := make([]int64, len(s.BranchIDs))
	copy(out, s.BranchIDs)
	return out
}

func (u User) Scope() Scope {
	return Scope{
		UserID:      u.ID,
		Username:    u.Username,
		IsAdmin:     u.IsAdmin,
		Permissions: u.Permissions,
		BranchIDs:   u.BranchIDs,
	}
}
