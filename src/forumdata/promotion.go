package forumdata

import (
	"context"
	"errors"
	"strings"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/perf"
)

/*
The payload a client must supply the first time anybody interacts with a
placeholder item from the research feed. Until promotion happens, nothing
about the placeholder exists in storage, so the interaction has to carry the
whole thing.
*/
type PromotionSeed struct {
	Title         string
	Body          string
	Tags          []string
	ConditionTags []string

	// The placeholder's score in the external feed. Carried over as synthetic
	// upvotes so freshly promoted content doesn't start at zero.
	VoteScore int

	CategoryID  *int
	CommunityID *int

	IsResearcherForum       bool
	OnlyResearchersCanReply bool

	// Optional nicer title for display, e.g. the feed item's original
	// headline before normalization.
	DisplayName string
}

/*
Fetches the thread a placeholder key was promoted into, if any.

Returns db.NotFound if the key has never been promoted.
*/
func FetchThreadByPromotionKey(
	ctx context.Context,
	dbConn db.ConnOrTx,
	key string,
) (ThreadAndStuff, error) {
	res, err := FetchThreads(ctx, dbConn, ThreadsQuery{
		PromotionKeys: []string{key},
		Limit:         1,
	})
	if err != nil {
		return ThreadAndStuff{}, oops.New(err, "failed to fetch thread by promotion key")
	}

	if len(res) == 0 {
		return ThreadAndStuff{}, db.NotFound
	}

	return res[0], nil
}

/*
Fetches the shared author identity for promoted content, creating it on
first use. All promoted placeholder content is owned by this one account;
we never mint an account per placeholder.
*/
func FetchOrCreateServiceAccount(
	ctx context.Context,
	dbConn db.ConnOrTx,
	username string,
	displayName string,
) (*models.User, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Fetch or create service account")
	defer perf.EndBlock()

	user, err := FetchUserByUsername(ctx, dbConn, username)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, db.NotFound) {
		return nil, oops.New(err, "failed to fetch service account")
	}

	created, err := db.QueryOne[models.User](ctx, dbConn,
		`
		---- Create service account
		INSERT INTO forum_user (username, display_name, role, is_service_account)
		VALUES ($1, $2, $3, TRUE)
		RETURNING $columns
		`,
		username, displayName, models.RoleResearcher,
	)
	if err != nil {
		if db.IsUniqueViolation(err) {
			// Somebody else created it between our fetch and our insert.
			return FetchUserByUsername(ctx, dbConn, username)
		}
		return nil, oops.New(err, "failed to create service account")
	}

	return created, nil
}

/*
Stamps a promotion key onto an existing thread that doesn't have one yet.

Returns db.NotFound if the thread is gone or already carries a key, and the
raw unique violation if another thread claimed this key first; the caller
recovers from that by re-fetching.
*/
func AttachPromotionKey(
	ctx context.Context,
	dbConn db.ConnOrTx,
	threadID int,
	key string,
) (*models.Thread, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Attach promotion key")
	defer perf.EndBlock()

	thread, err := db.QueryOne[models.Thread](ctx, dbConn,
		`
		---- Attach promotion key
		UPDATE thread
		SET promotion_key = $2
		WHERE id = $1 AND promotion_key IS NULL
		RETURNING $columns
		`,
		threadID, key,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) || db.IsUniqueViolation(err) {
			return nil, err
		}
		return nil, oops.New(err, "failed to attach promotion key")
	}

	return thread, nil
}

/*
Finds a thread a promotion seed should attach to instead of creating a
duplicate: not yet promoted, same researcher-forum flag, same community
scope, and the same title after normalization. Titles are normalized on both
sides of the comparison, so historical threads created before any
normalization rules still match.
*/
func findMatchingUnpromotedThread(
	ctx context.Context,
	dbConn db.ConnOrTx,
	normalizedTitle string,
	isResearcherForum bool,
	communityID *int,
) (*models.Thread, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Find promotion dedup match")
	defer perf.EndBlock()

	var qb db.QueryBuilder
	qb.Add(`
		---- Find promotion dedup match
		SELECT $columns
		FROM thread
		WHERE
			promotion_key IS NULL
			AND LOWER(TRIM(regexp_replace(title, '\s+', ' ', 'g'))) = $?
			AND is_researcher_forum = $?
	`, normalizedTitle, isResearcherForum)
	if communityID != nil {
		qb.Add(`AND community_id = $?`, *communityID)
	} else {
		qb.Add(`AND community_id IS NULL`)
	}
	qb.Add(`ORDER BY created ASC LIMIT 1`)

	return db.QueryOne[models.Thread](ctx, dbConn, qb.String(), qb.Args()...)
}

/*
Converts a placeholder into a durable thread. Callers have already checked
that the key isn't promoted yet, but that check is advisory only: the unique
index on promotion_key is what actually prevents duplicates, and when two
promotions race, the loser recovers by returning the winner's thread.

A seed whose normalized title matches an existing non-promoted thread in the
same scope attaches the key to that thread rather than creating a second
copy of the same discussion.
*/
func PromoteThread(
	ctx context.Context,
	dbConn db.ConnOrTx,
	serviceAccount *models.User,
	key string,
	seed PromotionSeed,
) (*models.Thread, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("PROMOTE", "Promote placeholder thread")
	defer perf.EndBlock()

	normalizedTitle := models.NormalizeTitle(seed.Title)

	match, err := findMatchingUnpromotedThread(ctx, dbConn, normalizedTitle, seed.IsResearcherForum, seed.CommunityID)
	if err != nil && !errors.Is(err, db.NotFound) {
		return nil, oops.New(err, "failed to look for duplicate thread")
	}
	if err == nil {
		thread, err := AttachPromotionKey(ctx, dbConn, match.ID, key)
		if err == nil {
			return thread, nil
		}
		if db.IsUniqueViolation(err) {
			return refetchPromotionWinner(ctx, dbConn, key)
		}
		if !errors.Is(err, db.NotFound) {
			return nil, err
		}
		// The match was promoted out from under us with some other key.
		// Fall through and create a fresh thread.
	}

	voteScore := seed.VoteScore
	if voteScore < 0 {
		voteScore = 0
	}
	upvoters := make([]int, voteScore)
	for i := range upvoters {
		upvoters[i] = serviceAccount.ID
	}

	var displayName *string
	if seed.DisplayName != "" {
		displayName = &seed.DisplayName
	}

	thread, err := CreateThread(ctx, dbConn, CreateThreadInput{
		CategoryID:    seed.CategoryID,
		CommunityID:   seed.CommunityID,
		AuthorID:      serviceAccount.ID,
		AuthorRole:    serviceAccount.Role,
		Title:         strings.TrimSpace(seed.Title),
		BodyRaw:       seed.Body,
		Tags:          seed.Tags,
		ConditionTags: models.NormalizeConditionTags(seed.ConditionTags),

		OnlyResearchersCanReply: seed.OnlyResearchersCanReply,
		IsResearcherForum:       seed.IsResearcherForum,

		PromotionKey: &key,
		DisplayName:  displayName,
		Upvoters:     upvoters,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return refetchPromotionWinner(ctx, dbConn, key)
		}
		return nil, oops.New(err, "failed to create promoted thread")
	}

	return thread, nil
}

func refetchPromotionWinner(ctx context.Context, dbConn db.ConnOrTx, key string) (*models.Thread, error) {
	winner, err := FetchThreadByPromotionKey(ctx, dbConn, key)
	if err != nil {
		return nil, oops.New(err, "hit a duplicate promotion key but then failed to fetch the winning thread")
	}
	thread := winner.Thread
	return &thread, nil
}
