package migrations

import (
	"context"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/migration/types"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(InitialSchema{})
}

type InitialSchema struct{}

func (m InitialSchema) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2025, 9, 18, 9, 17, 42, 0, time.UTC))
}

func (m InitialSchema) Name() string {
	return "InitialSchema"
}

func (m InitialSchema) Description() string {
	return "Creates users, taxonomy, threads, replies, and sessions"
}

func (m InitialSchema) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		CREATE TABLE forum_user (
			id SERIAL NOT NULL PRIMARY KEY,
			username VARCHAR(150) NOT NULL,
			display_name VARCHAR(255) NOT NULL DEFAULT '',
			role VARCHAR(20) NOT NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			is_service_account BOOLEAN NOT NULL DEFAULT FALSE,
			date_joined TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_login TIMESTAMP WITH TIME ZONE,

			CONSTRAINT forum_user_role_valid CHECK (role IN ('patient', 'researcher'))
		);

		CREATE UNIQUE INDEX forum_user_username_unique ON forum_user (LOWER(username));

		CREATE TABLE researcher_profile (
			user_id INT NOT NULL PRIMARY KEY REFERENCES forum_user(id) ON DELETE CASCADE,
			specialties TEXT[] NOT NULL DEFAULT '{}',
			interests TEXT[] NOT NULL DEFAULT '{}',
			bio TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE sessions (
			id VARCHAR(40) NOT NULL PRIMARY KEY,
			user_id INT NOT NULL REFERENCES forum_user(id) ON DELETE CASCADE,
			expires_at TIMESTAMP WITH TIME ZONE NOT NULL
		);

		CREATE INDEX sessions_expires_at ON sessions (expires_at);
	`)
	if err != nil {
		return oops.New(err, "failed to create user tables")
	}

	_, err = tx.Exec(ctx, `
		CREATE TABLE category (
			id SERIAL NOT NULL PRIMARY KEY,
			slug VARCHAR(100) NOT NULL,
			name VARCHAR(255) NOT NULL,
			blurb TEXT NOT NULL DEFAULT '',
			sort INT NOT NULL DEFAULT 0,

			CONSTRAINT category_slug_unique UNIQUE (slug)
		);

		CREATE TABLE community (
			id SERIAL NOT NULL PRIMARY KEY,
			slug VARCHAR(100) NOT NULL,
			name VARCHAR(255) NOT NULL,
			blurb TEXT NOT NULL DEFAULT '',
			sort INT NOT NULL DEFAULT 0,

			CONSTRAINT community_slug_unique UNIQUE (slug)
		);

		CREATE TABLE community_subcategory (
			id SERIAL NOT NULL PRIMARY KEY,
			community_id INT NOT NULL REFERENCES community(id) ON DELETE CASCADE,
			slug VARCHAR(100) NOT NULL,
			name VARCHAR(255) NOT NULL,
			sort INT NOT NULL DEFAULT 0,

			CONSTRAINT community_subcategory_slug_unique UNIQUE (community_id, slug)
		);
	`)
	if err != nil {
		return oops.New(err, "failed to create taxonomy tables")
	}

	// NOTE(asaf): No FK on author ids. Deleting an account must leave its
	// threads and replies in place, so fetches LEFT JOIN the author and
	// tolerate a missing row.
	_, err = tx.Exec(ctx, `
		CREATE TABLE thread (
			id SERIAL NOT NULL PRIMARY KEY,

			category_id INT REFERENCES category(id),
			community_id INT REFERENCES community(id),
			subcategory_id INT REFERENCES community_subcategory(id),

			author_id INT NOT NULL,

			title VARCHAR(255) NOT NULL,
			body_raw TEXT NOT NULL,
			body_html TEXT NOT NULL,
			preview TEXT NOT NULL DEFAULT '',

			tags TEXT[] NOT NULL DEFAULT '{}',
			condition_tags TEXT[] NOT NULL DEFAULT '{}',

			upvoters INT[] NOT NULL DEFAULT '{}',
			downvoters INT[] NOT NULL DEFAULT '{}',

			only_researchers_can_reply BOOLEAN NOT NULL DEFAULT FALSE,
			is_researcher_forum BOOLEAN NOT NULL DEFAULT FALSE,

			created TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,

			-- At most one home; promoted feed content can have neither. A
			-- subcategory only makes sense under a community.
			CONSTRAINT thread_home_coherent CHECK (
				NOT (category_id IS NOT NULL AND community_id IS NOT NULL)
				AND (subcategory_id IS NULL OR community_id IS NOT NULL)
			)
		);

		CREATE INDEX thread_category_id ON thread (category_id);
		CREATE INDEX thread_community_id ON thread (community_id);
		CREATE INDEX thread_created ON thread (created DESC);
	`)
	if err != nil {
		return oops.New(err, "failed to create thread table")
	}

	_, err = tx.Exec(ctx, `
		CREATE TABLE reply (
			id SERIAL NOT NULL PRIMARY KEY,

			thread_id INT NOT NULL REFERENCES thread(id) ON DELETE CASCADE,
			parent_id INT REFERENCES reply(id) ON DELETE CASCADE,

			author_id INT NOT NULL,

			body_raw TEXT NOT NULL,
			body_html TEXT NOT NULL,

			upvoters INT[] NOT NULL DEFAULT '{}',
			downvoters INT[] NOT NULL DEFAULT '{}',

			created TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX reply_thread_id ON reply (thread_id);
		CREATE INDEX reply_parent_id ON reply (parent_id);
	`)
	if err != nil {
		return oops.New(err, "failed to create reply table")
	}

	return nil
}

func (m InitialSchema) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `
		DROP TABLE reply;
		DROP TABLE thread;
		DROP TABLE community_subcategory;
		DROP TABLE community;
		DROP TABLE category;
		DROP TABLE sessions;
		DROP TABLE researcher_profile;
		DROP TABLE forum_user;
	`)
	return err
}
