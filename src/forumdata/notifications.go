package forumdata

import (
	"context"
	"encoding/json"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/perf"
)

type NotificationsQuery struct {
	RecipientIDs []int
	UnreadOnly   bool

	Limit, Offset int // if empty, no pagination
}

func FetchNotifications(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q NotificationsQuery,
) ([]models.Notification, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch notifications")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		---- Fetch notifications
		SELECT $columns
		FROM notification
		WHERE TRUE
	`)
	if len(q.RecipientIDs) > 0 {
		qb.Add(`AND notification.recipient_id = ANY($?)`, q.RecipientIDs)
	}
	if q.UnreadOnly {
		qb.Add(`AND NOT notification.read`)
	}
	qb.Add(`ORDER BY notification.created DESC, notification.id DESC`)
	if q.Limit > 0 {
		qb.Add(`LIMIT $? OFFSET $?`, q.Limit, q.Offset)
	}

	rows, err := db.Query[models.Notification](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch notifications")
	}

	result := make([]models.Notification, len(rows))
	for i, row := range rows {
		result[i] = *row
	}

	return result, nil
}

type NotificationCounts struct {
	Total  int
	Unread int
}

func CountNotifications(
	ctx context.Context,
	dbConn db.ConnOrTx,
	recipientID int,
) (NotificationCounts, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Count notifications")
	defer perf.EndBlock()

	type countRow struct {
		Read  bool `db:"read"`
		Count int  `db:"count"`
	}

	rows, err := db.Query[countRow](ctx, dbConn,
		`
		---- Count notifications
		SELECT $columns
		FROM (
			SELECT read, COUNT(*) AS count
			FROM notification
			WHERE recipient_id = $1
			GROUP BY read
		) AS counts
		`,
		recipientID,
	)
	if err != nil {
		return NotificationCounts{}, oops.New(err, "failed to count notifications")
	}

	var counts NotificationCounts
	for _, row := range rows {
		counts.Total += row.Count
		if !row.Read {
			counts.Unread += row.Count
		}
	}

	return counts, nil
}

type CreateNotificationInput struct {
	RecipientID int
	Kind        models.NotificationKind

	ActorID  *int
	ThreadID *int
	ReplyID  *int

	Title   string
	Message string
	Url     string

	Metadata json.RawMessage
}

func CreateNotification(
	ctx context.Context,
	dbConn db.ConnOrTx,
	input CreateNotificationInput,
) (*models.Notification, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Create notification")
	defer perf.EndBlock()

	notification, err := db.QueryOne[models.Notification](ctx, dbConn,
		`
		---- Create notification
		INSERT INTO notification (
			recipient_id, kind,
			actor_id, thread_id, reply_id,
			title, message, url,
			metadata
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING $columns
		`,
		input.RecipientID, input.Kind,
		input.ActorID, input.ThreadID, input.ReplyID,
		input.Title, input.Message, input.Url,
		input.Metadata,
	)
	if err != nil {
		return nil, oops.New(err, "failed to create notification")
	}

	return notification, nil
}

/*
Marks one notification as read. Scoped to the recipient so users cannot mark
each other's notifications; a wrong-owner id behaves like a missing one.

Returns db.NotFound if no notification matched.
*/
func MarkNotificationRead(
	ctx context.Context,
	dbConn db.ConnOrTx,
	notificationID int,
	recipientID int,
) error {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Mark notification read")
	defer perf.EndBlock()

	tag, err := dbConn.Exec(ctx,
		`UPDATE notification SET read = TRUE WHERE id = $1 AND recipient_id = $2`,
		notificationID, recipientID,
	)
	if err != nil {
		return oops.New(err, "failed to mark notification read")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}

	return nil
}

// Marks all of a user's notifications read and returns how many changed.
func MarkAllNotificationsRead(
	ctx context.Context,
	dbConn db.ConnOrTx,
	recipientID int,
) (int, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Mark all notifications read")
	defer perf.EndBlock()

	tag, err := dbConn.Exec(ctx,
		`UPDATE notification SET read = TRUE WHERE recipient_id = $1 AND NOT read`,
		recipientID,
	)
	if err != nil {
		return 0, oops.New(err, "failed to mark notifications read")
	}

	return int(tag.RowsAffected()), nil
}

/*
Finds every researcher whose profile overlaps the given condition tags, for
new-thread fan-out. The tags must already be normalized; profiles store
normalized tags as well, so the overlap check happens entirely in Postgres.
*/
func FetchResearchersMatchingConditions(
	ctx context.Context,
	dbConn db.ConnOrTx,
	conditionTags []string,
	excludeUserID int,
) ([]models.User, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch researchers matching conditions")
	defer perf.EndBlock()

	if len(conditionTags) == 0 {
		return nil, nil
	}

	type researcherRow struct {
		User    models.User              `db:"forum_user"`
		Profile models.ResearcherProfile `db:"profile"`
	}

	rows, err := db.Query[researcherRow](ctx, dbConn,
		`
		---- Fetch researchers matching conditions
		SELECT $columns
		FROM
			forum_user
			JOIN researcher_profile AS profile ON profile.user_id = forum_user.id
		WHERE
			forum_user.role = $1
			AND forum_user.id != $2
			AND NOT forum_user.is_service_account
			AND (profile.specialties && $3 OR profile.interests && $3)
		ORDER BY forum_user.id ASC
		`,
		models.RoleResearcher, excludeUserID, conditionTags,
	)
	if err != nil {
		return nil, oops.New(err, "failed to fetch matching researchers")
	}

	result := make([]models.User, len(rows))
	for i, row := range rows {
		user := row.User
		profile := row.Profile
		user.Profile = &profile
		result[i] = user
	}

	return result, nil
}
