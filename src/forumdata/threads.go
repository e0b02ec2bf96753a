package forumdata

import (
	"context"
	"errors"
	"strings"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/logging"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/parsing"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/perf"
)

type ThreadsQuery struct {
	// Available on all thread queries.
	CategoryIDs       []int    // if empty, all categories
	CommunityIDs      []int    // if empty, all communities
	SubcategoryIDs    []int    // if empty, all subcategories
	ConditionTags     []string // if non-empty, threads tagged with any of these (normalized)
	IsResearcherForum *bool    // if nil, both

	// Ignored when using FetchThread.
	ThreadIDs     []int
	PromotionKeys []string

	// Ignored when using FetchThread or CountThreads.
	Limit, Offset     int  // if empty, no pagination
	OrderByPopularity bool // defaults to order by created, newest first
}

type ThreadAndStuff struct {
	Thread     models.Thread `db:"thread"`
	Author     *models.User  `db:"author"` // Can be nil in case of a deleted user
	ReplyCount int           `db:"replies.count"`
}

/*
Fetches threads and related models from the database according to all the
given query params. For the most correct results, provide as much information
as you have on hand.
*/
func FetchThreads(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q ThreadsQuery,
) ([]ThreadAndStuff, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch threads")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		---- Fetch threads
		SELECT $columns
		FROM
			thread
			LEFT JOIN forum_user AS author ON author.id = thread.author_id
			LEFT JOIN (
				SELECT thread_id, COUNT(*) AS count
				FROM reply
				GROUP BY thread_id
			) AS replies ON replies.thread_id = thread.id
		WHERE
			TRUE
	`)
	if len(q.CategoryIDs) > 0 {
		qb.Add(`AND thread.category_id = ANY($?)`, q.CategoryIDs)
	}
	if len(q.CommunityIDs) > 0 {
		qb.Add(`AND thread.community_id = ANY($?)`, q.CommunityIDs)
	}
	if len(q.SubcategoryIDs) > 0 {
		qb.Add(`AND thread.subcategory_id = ANY($?)`, q.SubcategoryIDs)
	}
	if len(q.ConditionTags) > 0 {
		qb.Add(`AND thread.condition_tags && $?`, q.ConditionTags)
	}
	if q.IsResearcherForum != nil {
		qb.Add(`AND thread.is_researcher_forum = $?`, *q.IsResearcherForum)
	}
	if len(q.ThreadIDs) > 0 {
		qb.Add(`AND thread.id = ANY($?)`, q.ThreadIDs)
	}
	if len(q.PromotionKeys) > 0 {
		qb.Add(`AND thread.promotion_key = ANY($?)`, q.PromotionKeys)
	}
	if q.OrderByPopularity {
		qb.Add(`ORDER BY cardinality(thread.upvoters) - cardinality(thread.downvoters) DESC, thread.created DESC`)
	} else {
		qb.Add(`ORDER BY thread.created DESC`)
	}
	if q.Limit > 0 {
		qb.Add(`LIMIT $? OFFSET $?`, q.Limit, q.Offset)
	}

	rows, err := db.Query[ThreadAndStuff](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return nil, oops.New(err, "failed to fetch threads")
	}

	result := make([]ThreadAndStuff, len(rows))
	for i, row := range rows {
		result[i] = *row
	}

	return result, nil
}

/*
Fetches a single thread and related data. A wrapper around FetchThreads.

Returns db.NotFound if no result is found.
*/
func FetchThread(
	ctx context.Context,
	dbConn db.ConnOrTx,
	threadID int,
	q ThreadsQuery,
) (ThreadAndStuff, error) {
	q.ThreadIDs = []int{threadID}
	q.Limit = 1
	q.Offset = 0

	res, err := FetchThreads(ctx, dbConn, q)
	if err != nil {
		return ThreadAndStuff{}, oops.New(err, "failed to fetch thread")
	}

	if len(res) == 0 {
		return ThreadAndStuff{}, db.NotFound
	}

	return res[0], nil
}

func CountThreads(
	ctx context.Context,
	dbConn db.ConnOrTx,
	q ThreadsQuery,
) (int, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Count threads")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		---- Count threads
		SELECT COUNT(*)
		FROM thread
		WHERE TRUE
	`)
	if len(q.CategoryIDs) > 0 {
		qb.Add(`AND thread.category_id = ANY($?)`, q.CategoryIDs)
	}
	if len(q.CommunityIDs) > 0 {
		qb.Add(`AND thread.community_id = ANY($?)`, q.CommunityIDs)
	}
	if len(q.SubcategoryIDs) > 0 {
		qb.Add(`AND thread.subcategory_id = ANY($?)`, q.SubcategoryIDs)
	}
	if len(q.ConditionTags) > 0 {
		qb.Add(`AND thread.condition_tags && $?`, q.ConditionTags)
	}
	if q.IsResearcherForum != nil {
		qb.Add(`AND thread.is_researcher_forum = $?`, *q.IsResearcherForum)
	}

	count, err := db.QueryOneScalar[int](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		return 0, oops.New(err, "failed to count threads")
	}

	return count, nil
}

const maxBodyLength = 200000
const previewMaxLength = 100

func capBody(ctx context.Context, bodyRaw string) string {
	if len(bodyRaw) > maxBodyLength {
		logging.ExtractLogger(ctx).Warn().
			Str("preview", bodyRaw[:400]).
			Msg("Somebody attempted to create an extremely long post. Content was truncated.")
		bodyRaw = bodyRaw[:maxBodyLength-1]
	}
	return bodyRaw
}

// Renders a raw markdown body to the HTML we store alongside it, plus the
// plain-text preview for list views. The returned raw is what we store; it
// may have been truncated.
func renderBody(ctx context.Context, bodyRaw string) (raw string, html string, preview string) {
	raw = capBody(ctx, bodyRaw)

	html = parsing.ParseMarkdown(raw, parsing.ForumRealMarkdown)

	preview = strings.TrimSpace(parsing.ParseMarkdown(raw, parsing.PlaintextMarkdown))
	if len(preview) > previewMaxLength-1 {
		preview = preview[:previewMaxLength-1] + "…"
	}

	return raw, html, preview
}

type CreateThreadInput struct {
	CategoryID    *int
	CommunityID   *int
	SubcategoryID *int

	AuthorID   int
	AuthorRole models.UserRole

	Title         string
	BodyRaw       string
	Tags          []string
	ConditionTags []string

	OnlyResearchersCanReply bool
	IsResearcherForum       bool

	// Set only by promotion.
	PromotionKey *string
	DisplayName  *string
	Upvoters     []int
}

func CreateThread(
	ctx context.Context,
	dbConn db.ConnOrTx,
	input CreateThreadInput,
) (*models.Thread, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Create thread")
	defer perf.EndBlock()

	bodyRaw, bodyHtml, preview := renderBody(ctx, input.BodyRaw)

	// Empty arrays, not NULLs; the queries all use array operators.
	if input.Tags == nil {
		input.Tags = []string{}
	}
	if input.ConditionTags == nil {
		input.ConditionTags = []string{}
	}
	if input.Upvoters == nil {
		input.Upvoters = []int{}
	}

	thread, err := db.QueryOne[models.Thread](ctx, dbConn,
		`
		---- Create thread
		INSERT INTO thread (
			category_id, community_id, subcategory_id,
			author_id, author_role,
			title, body_raw, body_html, preview,
			tags, condition_tags,
			upvoters, downvoters,
			only_researchers_can_reply, is_researcher_forum,
			promotion_key, display_name
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING $columns
		`,
		input.CategoryID, input.CommunityID, input.SubcategoryID,
		input.AuthorID, input.AuthorRole,
		input.Title, bodyRaw, bodyHtml, preview,
		input.Tags, input.ConditionTags,
		input.Upvoters, []int{},
		input.OnlyResearchersCanReply, input.IsResearcherForum,
		input.PromotionKey, input.DisplayName,
	)
	if err != nil {
		// Let callers distinguish the promotion key race; everything else
		// gets wrapped.
		if db.IsUniqueViolation(err) {
			return nil, err
		}
		return nil, oops.New(err, "failed to create thread")
	}

	return thread, nil
}

type UpdateThreadInput struct {
	Title         *string  // nil = leave alone
	BodyRaw       *string  // nil = leave alone
	Tags          []string // nil = leave alone
	ConditionTags []string // nil = leave alone
}

func UpdateThread(
	ctx context.Context,
	dbConn db.ConnOrTx,
	threadID int,
	input UpdateThreadInput,
) (*models.Thread, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Update thread")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		---- Update thread
		UPDATE thread
		SET updated = CURRENT_TIMESTAMP
	`)
	if input.Title != nil {
		qb.Add(`, title = $?`, *input.Title)
	}
	if input.BodyRaw != nil {
		bodyRaw, bodyHtml, preview := renderBody(ctx, *input.BodyRaw)
		qb.Add(`, body_raw = $?, body_html = $?, preview = $?`, bodyRaw, bodyHtml, preview)
	}
	if input.Tags != nil {
		qb.Add(`, tags = $?`, input.Tags)
	}
	if input.ConditionTags != nil {
		qb.Add(`, condition_tags = $?`, input.ConditionTags)
	}
	qb.Add(`WHERE id = $? RETURNING $columns`, threadID)

	thread, err := db.QueryOne[models.Thread](ctx, dbConn, qb.String(), qb.Args()...)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to update thread")
	}

	return thread, nil
}

/*
Deletes a thread and all of its replies. The replies go first so that the
thread row never points at orphans mid-delete; the whole thing runs in one
transaction.
*/
func DeleteThread(
	ctx context.Context,
	dbConn db.ConnOrTx,
	threadID int,
) error {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Delete thread")
	defer perf.EndBlock()

	tx, err := dbConn.Begin(ctx)
	if err != nil {
		return oops.New(err, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `DELETE FROM reply WHERE thread_id = $1`, threadID)
	if err != nil {
		return oops.New(err, "failed to delete thread replies")
	}

	tag, err := tx.Exec(ctx, `DELETE FROM thread WHERE id = $1`, threadID)
	if err != nil {
		return oops.New(err, "failed to delete thread")
	}
	if tag.RowsAffected() == 0 {
		return db.NotFound
	}

	err = tx.Commit(ctx)
	if err != nil {
		return oops.New(err, "failed to commit thread delete")
	}

	return nil
}

// Bumps the view counter. Callers fire this on cache misses only, so a hit
// roughly means "somebody actually caused a storage read".
func IncrementThreadHits(ctx context.Context, dbConn db.ConnOrTx, threadID int) error {
	_, err := dbConn.Exec(ctx, `UPDATE thread SET hits = hits + 1 WHERE id = $1`, threadID)
	if err != nil {
		return oops.New(err, "failed to increment thread hits")
	}
	return nil
}
