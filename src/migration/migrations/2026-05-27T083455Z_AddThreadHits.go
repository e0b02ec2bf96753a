package migrations

import (
	"context"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(AddThreadHits{})
}

type AddThreadHits struct{}

func (m AddThreadHits) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2026, 5, 27, 8, 34, 55, 0, time.UTC))
}

func (m AddThreadHits) Name() string {
	return "AddThreadHits"
}

func (m AddThreadHits) Description() string {
	return "Counts thread detail views"
}

func (m AddThreadHits) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		ALTER TABLE thread ADD COLUMN hits INT NOT NULL DEFAULT 0;
	`)
	return err
}

func (m AddThreadHits) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		ALTER TABLE thread DROP COLUMN hits;
	`)
	return err
}
