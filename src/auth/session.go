package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/config"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/jobs"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/utils"
	"github.com/jackc/pgx/v5/pgxpool"
)

const SessionCookieName = "CollabioraSession"

var ErrNoSession = errors.New("no session found")

// Sessions are issued by the account system, which lives outside this
// codebase. Here we only ever resolve them: a bearer token or cookie value
// is a session id, and the session row maps it to a user.
func GetSession(ctx context.Context, conn *pgxpool.Pool, id string) (*models.Session, error) {
	session, err := db.QueryOne[models.Session](ctx, conn,
		`
		SELECT $columns
		FROM sessions
		WHERE id = $1 AND expires_at > CURRENT_TIMESTAMP
		`,
		id,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, ErrNoSession
		} else {
			return nil, oops.New(err, "failed to get session")
		}
	}

	return session, nil
}

// Deletes a session by id. If no session with that id exists, no
// error is returned.
func DeleteSession(ctx context.Context, conn *pgxpool.Pool, id string) error {
	_, err := conn.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return oops.New(err, "failed to delete session")
	}

	return nil
}

var DeleteSessionCookie = &http.Cookie{
	Name:   SessionCookieName,
	Domain: config.Config.Auth.CookieDomain,
	MaxAge: -1,
}

func DeleteExpiredSessions(ctx context.Context, conn *pgxpool.Pool) (int64, error) {
	tag, err := conn.Exec(ctx, "DELETE FROM sessions WHERE expires_at <= CURRENT_TIMESTAMP")
	if err != nil {
		return 0, oops.New(err, "failed to delete expired sessions")
	}

	return tag.RowsAffected(), nil
}

func PeriodicallyDeleteExpiredSessions(conn *pgxpool.Pool) *jobs.Job {
	job := jobs.New("periodically delete expired sessions")
	go func() {
		defer job.Finish()

		t := utils.NewInstaTicker(1 * time.Hour)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				err := func() (err error) {
					defer utils.RecoverPanicAsError(&err)

					n, err := DeleteExpiredSessions(job.Ctx, conn)
					if err == nil {
						if n > 0 {
							job.Logger.Info().Int64("num deleted sessions", n).Msg("Deleted expired sessions")
						}
					} else {
						job.Logger.Error().Err(err).Msg("Failed to delete expired sessions")
					}
					return nil
				}()
				if err != nil {
					job.Logger.Error().Err(err).Msg("Panicked in PeriodicallyDeleteExpiredSessions")
				}
			case <-job.Canceled():
				return
			}
		}
	}()
	return job
}
