package migrations

import (
	"context"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(AddConditionTagIndexes{})
}

type AddConditionTagIndexes struct{}

func (m AddConditionTagIndexes) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2025, 12, 4, 11, 29, 40, 0, time.UTC))
}

func (m AddConditionTagIndexes) Name() string {
	return "AddConditionTagIndexes"
}

func (m AddConditionTagIndexes) Description() string {
	return "Adds GIN indexes for tag filters on thread lists"
}

func (m AddConditionTagIndexes) Up(ctx context.Context, tx pgx.Tx) error {
	// Thread lists filter with the && overlap operator, which a btree
	// cannot serve.
	_, err := tx.Exec(ctx, `
		CREATE INDEX thread_condition_tags ON thread USING GIN (condition_tags);
		CREATE INDEX thread_tags ON thread USING GIN (tags);
	`)
	return err
}

func (m AddConditionTagIndexes) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP INDEX thread_condition_tags;
		DROP INDEX thread_tags;
	`)
	return err
}
