package migrations

import (
	"context"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(AddNotifications{})
}

type AddNotifications struct{}

func (m AddNotifications) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2025, 9, 30, 15, 43, 26, 0, time.UTC))
}

func (m AddNotifications) Name() string {
	return "AddNotifications"
}

func (m AddNotifications) Description() string {
	return "Adds the notification inbox table"
}

func (m AddNotifications) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		CREATE TABLE notification (
			id SERIAL NOT NULL PRIMARY KEY,

			recipient_id INT NOT NULL REFERENCES forum_user(id) ON DELETE CASCADE,
			kind VARCHAR(40) NOT NULL,

			actor_id INT,
			thread_id INT REFERENCES thread(id) ON DELETE CASCADE,
			reply_id INT REFERENCES reply(id) ON DELETE CASCADE,

			title VARCHAR(255) NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL DEFAULT '',

			read BOOLEAN NOT NULL DEFAULT FALSE,
			metadata JSONB,

			created TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX notification_recipient_id ON notification (recipient_id, created DESC);
		CREATE INDEX notification_unread ON notification (recipient_id) WHERE NOT read;
	`)
	return err
}

func (m AddNotifications) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP TABLE notification;
	`)
	return err
}
