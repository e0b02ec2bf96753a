package forumdata

import (
	"context"
	"errors"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/parsing"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/perf"
)

// Returned by CreateReply when the requested parent reply exists but belongs
// to a different thread.
var ErrReplyParentMismatch = errors.New("parent reply belongs to a different thread")

type RepliesQuery struct {
	ThreadIDs []int
	ReplyIDs  []int

	Limit, Offset int // if empty, no pagination
}

type ReplyAndStuff struct {
	Reply  models.Reply `db:"reply"`
	Author *models.User `db:"author"` // Can be nil in case of a deleted user
}

/*
Fetches replies and their authors. Results come back in created order, oldest
first, which is the order the tree builder expects.
*/
func FetchReplies(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q RepliesQuery,
) ([]ReplyAndStuff, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch replies")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		---- Fetch replies
		SELECT $columns
		FROM
			reply
			LEFT JOIN forum_user AS author ON author.id = reply.author_id
		WHERE
			TRUE
	`)
	if len(q.ThreadIDs) > 0 {
		qb.Add(`AND reply.thread_id = ANY($?)`, q.ThreadIDs)
	}
	if len(q.ReplyIDs) > 0 {
		qb.Add(`AND reply.id = ANY($?)`, q.ReplyIDs)
	}
	qb.Add(`ORDER BY reply.created ASC, reply.id ASC`)
	if q.Limit > 0 {
		qb.Add(`LIMIT $? OFFSET $?`, q.Limit, q.Offset)
	}

	rows, err := db.Query[ReplyAndStuff](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch replies")
	}

	result := make([]ReplyAndStuff, len(rows))
	for i, row := range rows {
		result[i] = *row
	}

	return result, nil
}

/*
Fetches a single reply and its author. A wrapper around FetchReplies.

Returns db.NotFound if no result is found.
*/
func FetchReply(
	ctx context.Context,
	dbConn db.ConnOrTx,
	replyID int,
	q RepliesQuery,
) (ReplyAndStuff, error) {
	q.ReplyIDs = []int{replyID}
	q.Limit = 1
	q.Offset = 0

	res, err := FetchReplies(ctx, dbConn, q)
	if err != nil {
		return ReplyAndStuff{}, oops.New(err, "failed to fetch reply")
	}

	if len(res) == 0 {
		return ReplyAndStuff{}, db.NotFound
	}

	return res[0], nil
}

/*
Returns the number of replies per thread, for all the given threads at once.
Threads with no replies are absent from the map.
*/
func CountRepliesByThread(
	ctx context.Context,
	dbConn db.ConnOrTx,
	threadIDs []int,
) (map[int]int, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Count replies by thread")
	defer perf.EndBlock()

	type countRow struct {
		ThreadID int `db:"thread_id"`
		Count    int `db:"count"`
	}

	rows, err := db.Query[countRow](ctx, dbConn,
		`
		---- Count replies by thread
		SELECT $columns
		FROM (
			SELECT thread_id, COUNT(*) AS count
			FROM reply
			WHERE thread_id = ANY($1)
			GROUP BY thread_id
		) AS counts
		`,
		threadIDs,
	)
	if err != nil {
		return nil, oops.New(err, "failed to count replies")
	}

	counts := make(map[int]int, len(rows))
	for _, row := range rows {
		counts[row.ThreadID] = row.Count
	}

	return counts, nil
}

type CreateReplyInput struct {
	ThreadID int
	ParentID *int

	AuthorID   int
	AuthorRole models.UserRole

	BodyRaw string
}

/*
Creates a reply. If a parent is given, it must belong to the same thread;
otherwise you get ErrReplyParentMismatch (or db.NotFound if the parent is
gone entirely).
*/
func CreateReply(
	ctx context.Context,
	dbConn db.ConnOrTx,
	input CreateReplyInput,
) (*models.Reply, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Create reply")
	defer perf.EndBlock()

	if input.ParentID != nil {
		parentThreadID, err := db.QueryOneScalar[int](ctx, dbConn,
			`
			---- Check reply parent
			SELECT thread_id FROM reply WHERE id = $1
			`,
			*input.ParentID,
		)
		if err != nil {
			if errors.Is(err, db.NotFound) {
				return nil, db.NotFound
			}
			return nil, oops.New(err, "failed to check reply parent")
		}
		if parentThreadID != input.ThreadID {
			return nil, ErrReplyParentMismatch
		}
	}

	bodyRaw := capBody(ctx, input.BodyRaw)
	bodyHtml := parsing.ParseMarkdown(bodyRaw, parsing.ForumRealMarkdown)

	reply, err := db.QueryOne[models.Reply](ctx, dbConn,
		`
		---- Create reply
		INSERT INTO reply (
			thread_id, parent_id,
			author_id, author_role,
			body_raw, body_html,
			upvoters, downvoters
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING $columns
		`,
		input.ThreadID, input.ParentID,
		input.AuthorID, input.AuthorRole,
		bodyRaw, bodyHtml,
		[]int{}, []int{},
	)
	if err != nil {
		return nil, oops.New(err, "failed to create reply")
	}

	return reply, nil
}

func UpdateReply(
	ctx context.Context,
	dbConn db.ConnOrTx,
	replyID int,
	bodyRaw string,
) (*models.Reply, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Update reply")
	defer perf.EndBlock()

	bodyRaw = capBody(ctx, bodyRaw)
	bodyHtml := parsing.ParseMarkdown(bodyRaw, parsing.ForumRealMarkdown)

	reply, err := db.QueryOne[models.Reply](ctx, dbConn,
		`
		---- Update reply
		UPDATE reply
		SET body_raw = $2, body_html = $3, updated = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING $columns
		`,
		replyID, bodyRaw, bodyHtml,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to update reply")
	}

	return reply, nil
}

/*
Deletes a reply and every descendant of it, in one transaction. Returns the
number of replies deleted.

The subtree is collected in Go rather than with a recursive query: we walk
the thread's parent links the same way the tree builder does, so a cycle in
the data cannot hang the delete.
*/
func DeleteReplyTree(
	ctx context.Context,
	dbConn db.ConnOrTx,
	replyID int,
) (int, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Delete reply tree")
	defer perf.EndBlock()

	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return 0, oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	threadID, err := db.QueryOneScalar[int](ctx, tx,
		`
		---- Find reply thread
		SELECT thread_id FROM reply WHERE id = $1
		`,
		replyID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return 0, db.NotFound
		}
		return 0, oops.New(err, "failed to find reply thread")
	}

	type linkRow struct {
		ID       int  `db:"id"`
		ParentID *int `db:"parent_id"`
	}
	links, err := db.Query[linkRow](ctx, tx,
		`
		---- Fetch reply links
		SELECT $columns FROM reply WHERE thread_id = $1
		`,
		threadID,
	)
	if err != nil {
		return 0, oops.New(err, "failed to fetch thread replies")
	}

	childrenByParent := make(map[int][]int, len(links))
	for _, link := range links {
		if link.ParentID != nil {
			childrenByParent[*link.ParentID] = append(childrenByParent[*link.ParentID], link.ID)
		}
	}

	doomed := []int{replyID}
	visited := map[int]bool{replyID: true}
	for i := 0; i < len(doomed); i += 1 {
		for _, childID := range childrenByParent[doomed[i]] {
			if !visited[childID] {
				visited[childID] = true
				doomed = append(doomed, childID)
			}
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM reply WHERE id = ANY($1)`, doomed)
	if err != nil {
		return 0, oops.New(err, "failed to delete replies")
	}

	err = tx.Commit(ctx)
	if err != nil {
		return 0, oops.New(err, "failed to commit reply delete")
	}

	return int(tag.RowsAffected()), nil
}
