package migrations

import (
	"context"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/migration/types"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(DenormalizeAuthorRole{})
}

type DenormalizeAuthorRole struct{}

func (m DenormalizeAuthorRole) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2026, 2, 9, 16, 1, 17, 0, time.UTC))
}

func (m DenormalizeAuthorRole) Name() string {
	return "DenormalizeAuthorRole"
}

func (m DenormalizeAuthorRole) Description() string {
	return "Stamps the author's role onto threads and replies at post time"
}

func (m DenormalizeAuthorRole) Up(ctx context.Context, tx pgx.Tx) error {
	// The role badge shown on a post reflects what the author was when
	// they wrote it, even if the account later changes role or goes away.
	_, err := tx.Exec(ctx, `
		ALTER TABLE thread ADD COLUMN author_role VARCHAR(20);
		ALTER TABLE reply ADD COLUMN author_role VARCHAR(20);

		UPDATE thread SET author_role = COALESCE(
			(SELECT role FROM forum_user WHERE forum_user.id = thread.author_id),
			'patient'
		);
		UPDATE reply SET author_role = COALESCE(
			(SELECT role FROM forum_user WHERE forum_user.id = reply.author_id),
			'patient'
		);
	`)
	if err != nil {
		return oops.New(err, "failed to add author_role columns")
	}

	_, err = tx.Exec(ctx, `
		ALTER TABLE thread ALTER COLUMN author_role SET NOT NULL;
		ALTER TABLE reply ALTER COLUMN author_role SET NOT NULL;
	`)
	if err != nil {
		return oops.New(err, "failed to make author_role required")
	}

	return nil
}

func (m DenormalizeAuthorRole) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		ALTER TABLE thread DROP COLUMN author_role;
		ALTER TABLE reply DROP COLUMN author_role;
	`)
	return err
}
