// Package authz decides what an authenticated identity may do. Every function
// is pure: callers fetch whatever state the decision needs beforehand.
package authz

import (
	"github.com/geocoder89/kinerjahub/internal/apperr"
	"github.com/geocoder89/kinerjahub/internal/auth"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
)

var (
	ErrForbiddenRole   = apperr.Forbidden("forbidden_role", "Access denied. Your role is not permitted to perform this action.")
	ErrCrossUnitAccess = apperr.Forbidden("cross_unit_access", "Access denied. Entry users may only manage reports of their own unit.")
	ErrReportHidden    = apperr.Forbidden("report_forbidden", "Access denied. You are not allowed to view this report.")
	ErrSuperUserOnly   = apperr.Forbidden("super_user_only", "Access denied. Only a super user can perform this action.")
	ErrSelfDelete      = apperr.Forbidden("self_delete", "You are not allowed to delete your own account.")
	ErrOwnProfileOnly  = apperr.Forbidden("own_profile_only", "Access denied. You can only view your own profile.")
)

func sameUnit(id auth.Identity, unitID int64) bool {
	return id.UnitID != nil && *id.UnitID == unitID
}

// CanCreateOrModifyReport checks a create or update against the unit that owns
// (or will own) the report.
func CanCreateOrModifyReport(id auth.Identity, targetUnitID int64) error {
	switch id.Role {
	case user.RoleSuperUser:
		return nil
	case user.RoleEntryUser:
		if sameUnit(id, targetUnitID) {
			return nil
		}
		return ErrCrossUnitAccess
	default:
		return ErrForbiddenRole
	}
}

func CanDeleteReport(id auth.Identity) error {
	if id.Role == user.RoleSuperUser {
		return nil
	}
	return ErrSuperUserOnly
}

// EffectiveReportFilter pins entry users to their own unit whatever they asked for.
func EffectiveReportFilter(id auth.Identity, requested *int64) *int64 {
	switch id.Role {
	case user.RoleEntryUser:
		if id.UnitID == nil {
			// an entry user without a unit sees nothing
			none := int64(0)
			return &none
		}
		own := *id.UnitID
		return &own
	case user.RoleSuperUser, user.RoleUser:
		return requested
	default:
		none := int64(0)
		return &none
	}
}

func CanViewReport(id auth.Identity, reportUnitID int64) error {
	switch id.Role {
	case user.RoleSuperUser, user.RoleUser:
		return nil
	case user.RoleEntryUser:
		if sameUnit(id, reportUnitID) {
			return nil
		}
		return ErrReportHidden
	default:
		return ErrForbiddenRole
	}
}

func CanManageUsersOrUnits(id auth.Identity) error {
	if id.Role == user.RoleSuperUser {
		return nil
	}
	return ErrSuperUserOnly
}

// CanDeleteUser only blocks deleting yourself; it does not protect the last admin.
func CanDeleteUser(id auth.Identity, targetUserID int64) error {
	if err := CanManageUsersOrUnits(id); err != nil {
		return err
	}
	if id.UserID == targetUserID {
		return ErrSelfDelete
	}
	return nil
}

func CanViewUser(id auth.Identity, targetUserID int64) error {
	if id.Role == user.RoleSuperUser || id.UserID == targetUserID {
		return nil
	}
	return ErrOwnProfileOnly
}

// EffectiveUserFilter restricts non super users to their own row.
func EffectiveUserFilter(id auth.Identity) user.ListFilter {
	if id.Role == user.RoleSuperUser {
		return user.ListFilter{}
	}
	self := id.UserID
	return user.ListFilter{ID: &self}
}
