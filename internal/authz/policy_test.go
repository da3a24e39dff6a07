package authz_test

import (
	"errors"
	"testing"

	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/geocoder89/kinerjahub/internal/authz"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
)

func int64p(v int64) *int64 { return &v }

var (
	superUser  = auth.Identity{UserID: 1, Email: "superadmin@perusahaan.com", Role: user.RoleSuperUser}
	entryUnit1 = auth.Identity{UserID: 2, Email: "entry.pabrik@perusahaan.com", Role: user.RoleEntryUser, UnitID: int64p(1)}
	viewer     = auth.Identity{UserID: 3, Email: "user.keuangan@perusahaan.com", Role: user.RoleUser, UnitID: int64p(3)}
)

func TestCanCreateOrModifyReport(t *testing.T) {
	tests := []struct {
		name    string
		id      auth.Identity
		unitID  int64
		wantErr error
	}{
		{name: "super_any_unit", id: superUser, unitID: 3},
		{name: "entry_own_unit", id: entryUnit1, unitID: 1},
		{name: "entry_other_unit", id: entryUnit1, unitID: 3, wantErr: authz.ErrCrossUnitAccess},
		{name: "viewer_own_unit", id: viewer, unitID: 3, wantErr: authz.ErrForbiddenRole},
		{name: "unknown_role", id: auth.Identity{UserID: 7, Role: user.Role("ROOT")}, unitID: 1, wantErr: authz.ErrForbiddenRole},
		{name: "entry_without_unit", id: auth.Identity{UserID: 8, Role: user.RoleEntryUser}, unitID: 1, wantErr: authz.ErrCrossUnitAccess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authz.CanCreateOrModifyReport(tt.id, tt.unitID)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected deny: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCanViewReport(t *testing.T) {
	for unitID := int64(1); unitID <= 5; unitID++ {
		err := authz.CanViewReport(entryUnit1, unitID)
		if unitID == 1 && err != nil {
			t.Fatalf("entry user should see own unit report: %v", err)
		}
		if unitID != 1 && !errors.Is(err, authz.ErrReportHidden) {
			t.Fatalf("unit %d: got %v, want ErrReportHidden", unitID, err)
		}

		if err := authz.CanViewReport(superUser, unitID); err != nil {
			t.Fatalf("super user denied: %v", err)
		}
		if err := authz.CanViewReport(viewer, unitID); err != nil {
			t.Fatalf("viewer denied: %v", err)
		}
	}
}

func TestSuperUserAlwaysAllowedExceptSelfDelete(t *testing.T) {
	if err := authz.CanCreateOrModifyReport(superUser, 42); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := authz.CanDeleteReport(superUser); err != nil {
		t.Fatalf("delete report: %v", err)
	}
	if err := authz.CanViewReport(superUser, 42); err != nil {
		t.Fatalf("view: %v", err)
	}
	if err := authz.CanManageUsersOrUnits(superUser); err != nil {
		t.Fatalf("manage: %v", err)
	}
	if err := authz.CanViewUser(superUser, 99); err != nil {
		t.Fatalf("view user: %v", err)
	}
	if err := authz.CanDeleteUser(superUser, 99); err != nil {
		t.Fatalf("delete other user: %v", err)
	}
	if err := authz.CanDeleteUser(superUser, superUser.UserID); !errors.Is(err, authz.ErrSelfDelete) {
		t.Fatalf("self delete: got %v, want ErrSelfDelete", err)
	}
}

func TestNonSuperUsersCannotManage(t *testing.T) {
	for _, id := range []auth.Identity{entryUnit1, viewer} {
		if err := authz.CanManageUsersOrUnits(id); !errors.Is(err, authz.ErrSuperUserOnly) {
			t.Fatalf("%s manage: got %v", id.Role, err)
		}
		if err := authz.CanDeleteReport(id); !errors.Is(err, authz.ErrSuperUserOnly) {
			t.Fatalf("%s delete report: got %v", id.Role, err)
		}
		if err := authz.CanDeleteUser(id, 99); !errors.Is(err, authz.ErrSuperUserOnly) {
			t.Fatalf("%s delete user: got %v", id.Role, err)
		}
	}
}

func TestEffectiveReportFilter(t *testing.T) {
	requested := int64p(3)

	got := authz.EffectiveReportFilter(entryUnit1, requested)
	if got == nil || *got != 1 {
		t.Fatalf("entry user filter must be pinned to unit 1, got %v", got)
	}

	got = authz.EffectiveReportFilter(entryUnit1, nil)
	if got == nil || *got != 1 {
		t.Fatalf("entry user cannot widen view, got %v", got)
	}

	if got := authz.EffectiveReportFilter(superUser, requested); got == nil || *got != 3 {
		t.Fatalf("super user filter should pass through, got %v", got)
	}
	if got := authz.EffectiveReportFilter(superUser, nil); got != nil {
		t.Fatalf("super user without filter should be unfiltered, got %v", *got)
	}
	if got := authz.EffectiveReportFilter(viewer, nil); got != nil {
		t.Fatalf("viewer without filter should be unfiltered, got %v", *got)
	}
}

func TestUserVisibility(t *testing.T) {
	if err := authz.CanViewUser(viewer, viewer.UserID); err != nil {
		t.Fatalf("viewer should see itself: %v", err)
	}
	if err := authz.CanViewUser(viewer, superUser.UserID); !errors.Is(err, authz.ErrOwnProfileOnly) {
		t.Fatalf("got %v, want ErrOwnProfileOnly", err)
	}

	f := authz.EffectiveUserFilter(entryUnit1)
	if f.ID == nil || *f.ID != entryUnit1.UserID {
		t.Fatalf("entry user list should be pinned to itself, got %+v", f)
	}
	if f := authz.EffectiveUserFilter(superUser); f.ID != nil {
		t.Fatalf("super user list should be unfiltered")
	}
}
