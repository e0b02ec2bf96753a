package models

type VoteType string

const (
	VoteUp      VoteType = "upvote"
	VoteDown    VoteType = "downvote"
	VoteNeutral VoteType = "neutral"
)

func (v VoteType) Valid() bool {
	return v == VoteUp || v == VoteDown || v == VoteNeutral
}
