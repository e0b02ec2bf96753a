package forum

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forumdata"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/logging"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/notify"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/weburl"
)

type CreateReplyRequest struct {
	ParentID *int
	Body     string

	// Present when the thread reference is a never-promoted placeholder key.
	Seed *forumdata.PromotionSeed
}

/*
Creates a reply on a thread, promoting the thread first if the reference is
a placeholder key. Returns the thread too, since the caller may only have
had the key.
*/
func (s *Service) CreateReply(
	ctx context.Context,
	actor *models.User,
	threadRef string,
	req CreateReplyRequest,
) (*models.Reply, *models.Thread, error) {
	if actor == nil {
		return nil, nil, ErrLoginRequired
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, nil, invalid("body must not be empty")
	}

	thread, err := s.ResolveThreadRef(ctx, threadRef, req.Seed)
	if err != nil {
		return nil, nil, err
	}

	if thread.OnlyResearchersCanReply && !actor.IsResearcher() && !actor.IsAdmin {
		return nil, nil, ErrResearchersOnly
	}

	reply, err := forumdata.CreateReply(ctx, s.conn, forumdata.CreateReplyInput{
		ThreadID:   thread.ID,
		ParentID:   req.ParentID,
		AuthorID:   actor.ID,
		AuthorRole: actor.Role,
		BodyRaw:    req.Body,
	})
	if err != nil {
		if errors.Is(err, forumdata.ErrReplyParentMismatch) {
			return nil, nil, invalid("the parent reply does not belong to this thread")
		}
		if errors.Is(err, db.NotFound) {
			return nil, nil, db.NotFound
		}
		return nil, nil, oops.New(err, "failed to create reply")
	}

	s.invalidate("threads:", threadDetailKey(thread.ID))

	// Nested replies notify the parent's author, top-level ones the thread's.
	recipientID := thread.AuthorID
	if req.ParentID != nil {
		parent, err := forumdata.FetchReply(ctx, s.conn, *req.ParentID, forumdata.RepliesQuery{})
		if err == nil {
			recipientID = parent.Reply.AuthorID
		} else {
			logging.ExtractLogger(ctx).Error().Err(err).Msg("Failed to fetch parent reply for notification")
		}
	}
	s.notifier.Announce(ctx, notify.Event{
		Kind:        models.NotificationReply,
		RecipientID: recipientID,
		ActorID:     actor.ID,
		ThreadID:    thread.ID,
		ReplyID:     &reply.ID,
		Title:       "New reply",
		Message:     fmt.Sprintf("%s replied in: %s", actor.BestName(), thread.BestTitle()),
		Url:         weburl.BuildReplyPage(thread.ID, reply.ID),
	})

	return reply, thread, nil
}

func (s *Service) EditReply(
	ctx context.Context,
	actor *models.User,
	replyID int,
	body string,
) (*models.Reply, error) {
	if actor == nil {
		return nil, ErrLoginRequired
	}
	if strings.TrimSpace(body) == "" {
		return nil, invalid("body must not be empty")
	}

	existing, err := forumdata.FetchReply(ctx, s.conn, replyID, forumdata.RepliesQuery{})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch reply for editing")
	}
	if existing.Reply.AuthorID != actor.ID && !actor.IsAdmin {
		return nil, ErrNotOwner
	}

	reply, err := forumdata.UpdateReply(ctx, s.conn, replyID, body)
	if err != nil {
		return nil, oops.New(err, "failed to update reply")
	}

	s.invalidate(threadDetailKey(existing.Reply.ThreadID))

	return reply, nil
}

// Deletes a reply and its whole subtree. Returns how many replies went away.
func (s *Service) DeleteReply(
	ctx context.Context,
	actor *models.User,
	replyID int,
) (int, error) {
	if actor == nil {
		return 0, ErrLoginRequired
	}

	existing, err := forumdata.FetchReply(ctx, s.conn, replyID, forumdata.RepliesQuery{})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return 0, db.NotFound
		}
		return 0, oops.New(err, "failed to fetch reply for deletion")
	}
	if existing.Reply.AuthorID != actor.ID && !actor.IsAdmin {
		return 0, ErrNotOwner
	}

	deleted, err := forumdata.DeleteReplyTree(ctx, s.conn, replyID)
	if err != nil {
		return 0, oops.New(err, "failed to delete reply")
	}

	// Reply counts show up in list views, so those go stale too.
	s.invalidate("threads:", threadDetailKey(existing.Reply.ThreadID))

	return deleted, nil
}
