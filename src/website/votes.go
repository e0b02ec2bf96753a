package website

import (
	"strconv"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
)

type voteBody struct {
	Vote string `json:"vote"`

	Seed *seedBody `json:"seed"`
}

func ThreadVote(c *RequestContext) ResponseData {
	var body voteBody
	if err := decodeBody(c, &body); err != nil {
		return apiError(c, err)
	}

	result, thread, err := c.Forum.VoteOnThread(c, c.CurrentUser, c.PathParams["ref"], models.VoteType(body.Vote), body.Seed.toSeed())
	if err != nil {
		return apiError(c, err)
	}

	return jsonOK(c, map[string]any{
		"thread":    thread.ID,
		"score":     result.Score(),
		"upvotes":   len(result.Upvoters),
		"downvotes": len(result.Downvoters),
	})
}

func ReplyVote(c *RequestContext) ResponseData {
	replyID, err := strconv.Atoi(c.PathParams["replyid"])
	if err != nil {
		return FourOhFour(c)
	}

	var body voteBody
	if err := decodeBody(c, &body); err != nil {
		return apiError(c, err)
	}

	result, err := c.Forum.VoteOnReply(c, c.CurrentUser, replyID, models.VoteType(body.Vote))
	if err != nil {
		return apiError(c, err)
	}

	return jsonOK(c, map[string]any{
		"reply":     replyID,
		"score":     result.Score(),
		"upvotes":   len(result.Upvoters),
		"downvotes": len(result.Downvoters),
	})
}
