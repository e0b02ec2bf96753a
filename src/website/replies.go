package website

import (
	"strconv"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forum"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forumdata"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
)

// The seed payload for first interactions with never-promoted placeholder
// content. Mirrors forumdata.PromotionSeed field for field.
type seedBody struct {
	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Tags       []string `json:"tags"`
	Conditions []string `json:"conditions"`

	VoteScore int `json:"voteScore"`

	Category  *int `json:"category"`
	Community *int `json:"community"`

	IsResearcherForum       bool `json:"isResearcherForum"`
	OnlyResearchersCanReply bool `json:"onlyResearchersCanReply"`

	DisplayName string `json:"displayName"`
}

func (b *seedBody) toSeed() *forumdata.PromotionSeed {
	if b == nil {
		return nil
	}
	return &forumdata.PromotionSeed{
		Title:         b.Title,
		Body:          b.Body,
		Tags:          b.Tags,
		ConditionTags: b.Conditions,

		VoteScore: b.VoteScore,

		CategoryID:  b.Category,
		CommunityID: b.Community,

		IsResearcherForum:       b.IsResearcherForum,
		OnlyResearchersCanReply: b.OnlyResearchersCanReply,

		DisplayName: b.DisplayName,
	}
}

type replyCreateBody struct {
	Body   string `json:"body"`
	Parent *int   `json:"parent"`

	Seed *seedBody `json:"seed"`
}

func ReplyCreate(c *RequestContext) ResponseData {
	var body replyCreateBody
	if err := decodeBody(c, &body); err != nil {
		return apiError(c, err)
	}

	reply, thread, err := c.Forum.CreateReply(c, c.CurrentUser, c.PathParams["ref"], forum.CreateReplyRequest{
		ParentID: body.Parent,
		Body:     body.Body,
		Seed:     body.Seed.toSeed(),
	})
	if err != nil {
		return apiError(c, err)
	}

	return jsonStatus(c, 201, map[string]any{
		"reply":  ReplyToPayload(*reply, c.CurrentUser),
		"thread": BareThreadToPayload(thread),
	})
}

type replyEditBody struct {
	Body string `json:"body"`
}

func ReplyEdit(c *RequestContext) ResponseData {
	replyID, err := strconv.Atoi(c.PathParams["replyid"])
	if err != nil {
		return FourOhFour(c)
	}

	var body replyEditBody
	if err := decodeBody(c, &body); err != nil {
		return apiError(c, err)
	}

	reply, err := c.Forum.EditReply(c, c.CurrentUser, replyID, body.Body)
	if err != nil {
		return apiError(c, err)
	}

	// Admins can edit other people's replies, so the actor is not
	// necessarily the author.
	var author *models.User
	if c.CurrentUser != nil && c.CurrentUser.ID == reply.AuthorID {
		author = c.CurrentUser
	}

	return jsonOK(c, map[string]any{"reply": ReplyToPayload(*reply, author)})
}

func ReplyDelete(c *RequestContext) ResponseData {
	replyID, err := strconv.Atoi(c.PathParams["replyid"])
	if err != nil {
		return FourOhFour(c)
	}

	deleted, err := c.Forum.DeleteReply(c, c.CurrentUser, replyID)
	if err != nil {
		return apiError(c, err)
	}

	return jsonOK(c, map[string]any{"deleted": deleted})
}
