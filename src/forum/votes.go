package forum

import (
	"context"
	"errors"
	"fmt"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forumdata"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/notify"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/weburl"
)

/*
Applies a vote to a thread, promoting it first if the reference is a
placeholder key. The returned result is the post-update state straight from
storage; scores are computed from it and nothing else.
*/
func (s *Service) VoteOnThread(
	ctx context.Context,
	actor *models.User,
	threadRef string,
	vote models.VoteType,
	seed *forumdata.PromotionSeed,
) (forumdata.VoteResult, *models.Thread, error) {
	if actor == nil {
		return forumdata.VoteResult{}, nil, ErrLoginRequired
	}
	if !vote.Valid() {
		return forumdata.VoteResult{}, nil, invalid("\"%s\" is not a valid vote", vote)
	}

	thread, err := s.ResolveThreadRef(ctx, threadRef, seed)
	if err != nil {
		return forumdata.VoteResult{}, nil, err
	}

	result, err := forumdata.ApplyThreadVote(ctx, s.conn, thread.ID, actor.ID, vote)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return forumdata.VoteResult{}, nil, db.NotFound
		}
		return forumdata.VoteResult{}, nil, oops.New(err, "failed to vote on thread")
	}

	// Scores order the popular sort and show up in list views.
	s.invalidate("threads:", threadDetailKey(thread.ID))

	if vote == models.VoteUp {
		s.notifier.Announce(ctx, notify.Event{
			Kind:        models.NotificationUpvote,
			RecipientID: thread.AuthorID,
			ActorID:     actor.ID,
			ThreadID:    thread.ID,
			Title:       "Your thread got an upvote",
			Message:     fmt.Sprintf("%s upvoted: %s", actor.BestName(), thread.BestTitle()),
			Url:         weburl.BuildThreadPage(thread.ID),
		})
	}

	return result, thread, nil
}

func (s *Service) VoteOnReply(
	ctx context.Context,
	actor *models.User,
	replyID int,
	vote models.VoteType,
) (forumdata.VoteResult, error) {
	if actor == nil {
		return forumdata.VoteResult{}, ErrLoginRequired
	}
	if !vote.Valid() {
		return forumdata.VoteResult{}, invalid("\"%s\" is not a valid vote", vote)
	}

	existing, err := forumdata.FetchReply(ctx, s.conn, replyID, forumdata.RepliesQuery{})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return forumdata.VoteResult{}, db.NotFound
		}
		return forumdata.VoteResult{}, oops.New(err, "failed to fetch reply for voting")
	}

	result, err := forumdata.ApplyReplyVote(ctx, s.conn, replyID, actor.ID, vote)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return forumdata.VoteResult{}, db.NotFound
		}
		return forumdata.VoteResult{}, oops.New(err, "failed to vote on reply")
	}

	// Reply votes affect the popular sort of the detail view only.
	s.invalidate(threadDetailKey(existing.Reply.ThreadID))

	if vote == models.VoteUp {
		s.notifier.Announce(ctx, notify.Event{
			Kind:        models.NotificationUpvote,
			RecipientID: existing.Reply.AuthorID,
			ActorID:     actor.ID,
			ThreadID:    existing.Reply.ThreadID,
			ReplyID:     &replyID,
			Title:       "Your reply got an upvote",
			Message:     fmt.Sprintf("%s upvoted your reply", actor.BestName()),
			Url:         weburl.BuildReplyPage(existing.Reply.ThreadID, replyID),
		})
	}

	return result, nil
}
