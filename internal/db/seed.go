package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/kinerjahub/internal/domain/unit"
	"github.com/geocoder89/kinerjahub/internal/domain/user"
	"github.com/geocoder89/kinerjahub/internal/security"
	"github.com/geocoder89/kinerjahub/internal/service"
)

const (
	SeedPassword        = "password123"
	SeedSuperAdminEmail = "superadmin@perusahaan.com"
	SeedEntryUserEmail  = "entry.pabrik@perusahaan.com"
	SeedUserEmail       = "user.keuangan@perusahaan.com"
)

var seedCategories = []string{
	"Volume Produksi",
	"Safety Score",
	"Waktu Downtime Mesin",
	"Tingkat Kepuasan Pelanggan",
	"Efisiensi Biaya",
}

// Seed inserts the starter units, accounts and categories. It is a no-op once the
// super admin exists.
func Seed(ctx context.Context, stores service.Stores, hasher security.PasswordHasher, log *slog.Logger) error {
	_, err := stores.Users.GetByEmail(ctx, SeedSuperAdminEmail)
	if err == nil {
		log.Info("seed skipped: super admin already exists", "email", SeedSuperAdminEmail)
		return nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := hasher.Hash(SeedPassword)
	if err != nil {
		return fmt.Errorf("hash seed password: %w", err)
	}

	units := make([]unit.Unit, 0, 3)
	for _, name := range []string{"Produksi Pabrik A", "Pemasaran & Penjualan", "Keuangan & Administrasi"} {
		u, err := stores.Units.Create(ctx, unit.CreateRequest{Name: name})
		if err != nil {
			return fmt.Errorf("seed unit %q: %w", name, err)
		}
		units = append(units, u)
	}

	accounts := []user.NewUser{
		{Name: "Super Admin", Email: SeedSuperAdminEmail, Role: user.RoleSuperUser},
		{Name: "Entry User Pabrik A", Email: SeedEntryUserEmail, Role: user.RoleEntryUser, UnitID: &units[0].ID},
		{Name: "User Keuangan", Email: SeedUserEmail, Role: user.RoleUser, UnitID: &units[2].ID},
	}
	for _, acc := range accounts {
		acc.PasswordHash = hash
		if _, err := stores.Users.Create(ctx, acc); err != nil {
			return fmt.Errorf("seed user %s: %w", acc.Email, err)
		}
	}

	for _, name := range seedCategories {
		if _, err := stores.Categories.Create(ctx, name); err != nil {
			return fmt.Errorf("seed category %q: %w", name, err)
		}
	}

	log.Info("seed completed",
		"units", len(units),
		"users", len(accounts),
		"categories", len(seedCategories),
	)
	return nil
}
