package forumdata

import (
	"context"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/perf"
)

// The vote arrays as they exist after an update. Scores are always computed
// from this returned state, never from whatever the caller had loaded before.
type VoteResult struct {
	Upvoters   []int `db:"upvoters"`
	Downvoters []int `db:"downvoters"`
}

func (r *VoteResult) Score() int {
	return len(r.Upvoters) - len(r.Downvoters)
}

func ApplyThreadVote(
	ctx context.Context,
	dbConn db.ConnOrTx,
	threadID int,
	userID int,
	vote models.VoteType,
) (VoteResult, error) {
	return applyVote(ctx, dbConn, "thread", threadID, userID, vote)
}

func ApplyReplyVote(
	ctx context.Context,
	dbConn db.ConnOrTx,
	replyID int,
	userID int,
	vote models.VoteType,
) (VoteResult, error) {
	return applyVote(ctx, dbConn, "reply", replyID, userID, vote)
}

/*
Applies a user's vote to a thread or reply in a single UPDATE. The
remove-then-append dance makes the whole thing idempotent: voting the same
way twice changes nothing, switching sides moves the user between arrays,
and "neutral" removes them from both. Concurrent votes from different users
are safe because each statement rewrites both arrays from the row's current
state.

Returns db.NotFound if there is no such row.
*/
func applyVote(
	ctx context.Context,
	dbConn db.ConnOrTx,
	table string,
	id int,
	userID int,
	vote models.VoteType,
) (VoteResult, error) {
	perf := perf.ExtractPerf(ctx)
	perf.StartBlock("SQL", "Apply vote")
	defer perf.EndBlock()

	result, err := db.QueryOne[VoteResult](ctx, dbConn,
		`
		---- Apply vote
		UPDATE `+table+`
		SET
			upvoters = CASE WHEN $2::text = 'upvote'
				THEN array_append(array_remove(upvoters, $3), $3)
				ELSE array_remove(upvoters, $3)
			END,
			downvoters = CASE WHEN $2::text = 'downvote'
				THEN array_append(array_remove(downvoters, $3), $3)
				ELSE array_remove(downvoters, $3)
			END
		WHERE id = $1
		RETURNING $columns
		`,
		id, string(vote), userID,
	)
	if err != nil {
		// QueryOne already returns NotFound for zero rows.
		if err == db.NotFound {
			return VoteResult{}, db.NotFound
		}
		return VoteResult{}, oops.New(err, "failed to apply vote")
	}

	return *result, nil
}
