package migrations

import (
	"context"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(AddPromotionColumns{})
}

type AddPromotionColumns struct{}

func (m AddPromotionColumns) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2025, 10, 21, 18, 30, 58, 0, time.UTC))
}

func (m AddPromotionColumns) Name() string {
	return "AddPromotionColumns"
}

func (m AddPromotionColumns) Description() string {
	return "Lets external feed items be promoted into threads exactly once"
}

func (m AddPromotionColumns) Up(ctx context.Context, tx pgx.Tx) error {
	// Concurrent promotions of the same key collide on this index, and the
	// loser re-fetches the winner's thread.
	_, err := tx.Exec(ctx, `
		ALTER TABLE thread
			ADD COLUMN promotion_key VARCHAR(255),
			ADD COLUMN display_name VARCHAR(255);

		CREATE UNIQUE INDEX thread_promotion_key_unique ON thread (promotion_key)
			WHERE promotion_key IS NOT NULL;
	`)
	return err
}

func (m AddPromotionColumns) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		ALTER TABLE thread
			DROP COLUMN promotion_key,
			DROP COLUMN display_name;
	`)
	return err
}
