package models

import (
	"encoding/json"
	"time"
)

type NotificationKind string

const (
	NotificationConditionMatch NotificationKind = "condition-match"
	NotificationReply          NotificationKind = "reply"
	NotificationUpvote         NotificationKind = "upvote"
)

type Notification struct {
	ID int `db:"id"`

	RecipientID int              `db:"recipient_id"`
	Kind        NotificationKind `db:"kind"`

	ActorID  *int `db:"actor_id"`
	ThreadID *int `db:"thread_id"`
	ReplyID  *int `db:"reply_id"`

	Title   string `db:"title"`
	Message string `db:"message"`
	Url     string `db:"url"`

	Read     bool            `db:"read"`
	Metadata json.RawMessage `db:"metadata"`

	Created time.Time `db:"created"`
}
