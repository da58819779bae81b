package auth

import "testing"

func TestScopeHas(t *testing.T) {
	s := Scope{Permissions: []string{PermViewPayroll}}
	if !s.Has(PermViewPayroll) {
		t.Fatal("expected granted permission")
	}
	if s.Has(PermDeleteBranch) {
		t.Fatal("expected missing permission to be denied")
	}
	if !AdminScope().Has(PermDeleteBranch) {
		t.Fatal("expected admin to hold every permission")
	}
}

func TestScopeBranchAccess(t *testing.T) {
	s := Scope{BranchIDs: []int64{2, 5}}
	if !s.CanAccessBranch(5) || s.CanAccessBranch(3) {
		t.Fatalf("unexpected branch access for %+v", s)
	}
	filter := s.BranchFilter()
	if len(filter) != 2 {
		t.Fatalf("expected 2 branches, got %v", filter)
	}
	filter[0] = 99
	if s.BranchIDs[0] != 2 {
		t.Fatal("branch filter must not alias the scope")
	}
}

func TestScopeBranchFilterEmptyVsAdmin(t *testing.T) {
	if f := AdminScope().BranchFilter(); f != nil {
		t.Fatalf("expected nil filter for admin, got %v", f)
	}
	f := Scope{}.BranchFilter()
	if f == nil || len(f) != 0 {
		t.Fatalf("expected empty non-nil filter, got %#v", f)
	}
}

func TestIsKnownPermission(t *testing.T) {
	for _, perm := range AllPermissions {
		if !IsKnownPermission(perm) {
			t.Fatalf("expected %s to be known", perm)
		}
	}
	if IsKnownPermission("admin.system") {
		t.Fatal("unexpected permission accepted")
	}
}
