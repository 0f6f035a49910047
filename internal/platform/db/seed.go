package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"esocial/internal/domain/esocial"
	"esocial/internal/platform/config"
)

// Seed makes sure the seed tenant exists and, when a registry number is
// configured, that its institution record carries it.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	tenantID, err := ensureTenant(ctx, pool, cfg.SeedTenantName)
	if err != nil {
		return err
	}
	if strings.TrimSpace(cfg.SeedRegistry) == "" {
		return nil
	}
	employer, err := esocial.NewEmployerIdentity(cfg.SeedRegistry)
	if err != nil {
		return err
	}
	return ensureInstitution(ctx, pool, tenantID, cfg.SeedTenantName, employer.Registry)
}

func ensureTenant(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	err = pool.QueryRow(ctx, "INSERT INTO tenants (name) VALUES ($1) RETURNING id", name).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensureInstitution(ctx context.Context, pool *pgxpool.Pool, tenantID, legalName, registry string) error {
	_, err := pool.Exec(ctx, `
    INSERT INTO institutions (tenant_id, legal_name, registry_number)
    VALUES ($1,$2,$3)
    ON CONFLICT (tenant_id) DO UPDATE SET registry_number = EXCLUDED.registry_number
  `, tenantID, legalName, registry)
	return err
}
