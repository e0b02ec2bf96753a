package website

import (
	"encoding/json"
	"time"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forumdata"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/weburl"
)

/*
 * What goes over the wire. Model structs carry storage concerns (vote member
 * lists, raw bodies) that clients have no business seeing, so every response
 * converts to one of these first.
 */

type UserPayload struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Role        string `json:"role"`
	IsAdmin     bool   `json:"isAdmin,omitempty"`

	Profile *ProfilePayload `json:"profile,omitempty"`
}

type ProfilePayload struct {
	Specialties []string `json:"specialties"`
	Interests   []string `json:"interests"`
	Bio         string   `json:"bio,omitempty"`
}

func UserToPayload(u *models.User) *UserPayload {
	if u == nil {
		return nil
	}

	p := &UserPayload{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        string(u.Role),
		IsAdmin:     u.IsAdmin,
	}
	if u.Profile != nil {
		p.Profile = &ProfilePayload{
			Specialties: nonNil(u.Profile.Specialties),
			Interests:   nonNil(u.Profile.Interests),
			Bio:         u.Profile.Bio,
		}
	}
	return p
}

type ThreadPayload struct {
	ID          int  `json:"id"`
	Category    *int `json:"category,omitempty"`
	Community   *int `json:"community,omitempty"`
	Subcategory *int `json:"subcategory,omitempty"`

	Author *UserPayload `json:"author"`

	Title       string `json:"title"`
	DisplayName string `json:"displayName,omitempty"`
	Preview     string `json:"preview"`

	// Only filled in on the detail view; list views stick to the preview.
	BodyHtml string `json:"bodyHtml,omitempty"`

	Tags       []string `json:"tags"`
	Conditions []string `json:"conditions"`

	Score     int `json:"score"`
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`

	Hits       int `json:"hits"`
	ReplyCount int `json:"replyCount"`

	OnlyResearchersCanReply bool `json:"onlyResearchersCanReply"`
	IsResearcherForum       bool `json:"isResearcherForum"`
	Promoted                bool `json:"promoted"`

	Url string `json:"url"`

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
}

func ThreadToPayload(t forumdata.ThreadAndStuff) ThreadPayload {
	thread := t.Thread
	return ThreadPayload{
		ID:          thread.ID,
		Category:    thread.CategoryID,
		Community:   thread.CommunityID,
		Subcategory: thread.SubcategoryID,

		Author: UserToPayload(t.Author),

		Title:       thread.Title,
		DisplayName: orEmpty(thread.DisplayName),
		Preview:     thread.Preview,

		Tags:       nonNil(thread.Tags),
		Conditions: nonNil(thread.ConditionTags),

		Score:     thread.VoteScore(),
		Upvotes:   len(thread.Upvoters),
		Downvotes: len(thread.Downvoters),

		Hits:       thread.Hits,
		ReplyCount: t.ReplyCount,

		OnlyResearchersCanReply: thread.OnlyResearchersCanReply,
		IsResearcherForum:       thread.IsResearcherForum,
		Promoted:                thread.IsPromoted(),

		Url: weburl.BuildThreadPage(thread.ID),

		Created: thread.Created,
		Updated: thread.Updated,
	}
}

// BareThreadToPayload is for code paths that only have a models.Thread, like
// the create and promotion responses. Author and reply count come back
// zeroed; clients re-fetch the detail view when they care.
func BareThreadToPayload(thread *models.Thread) ThreadPayload {
	return ThreadToPayload(forumdata.ThreadAndStuff{Thread: *thread})
}

type ReplyPayload struct {
	ID     int  `json:"id"`
	Thread int  `json:"thread"`
	Parent *int `json:"parent,omitempty"`

	Author *UserPayload `json:"author"`

	BodyHtml string `json:"bodyHtml"`

	Score     int `json:"score"`
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`

	Url string `json:"url"`

	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`

	Children []*ReplyPayload `json:"children,omitempty"`
}

func ReplyToPayload(reply models.Reply, author *models.User) *ReplyPayload {
	return &ReplyPayload{
		ID:     reply.ID,
		Thread: reply.ThreadID,
		Parent: reply.ParentID,

		Author: UserToPayload(author),

		BodyHtml: reply.BodyHTML,

		Score:     reply.VoteScore(),
		Upvotes:   len(reply.Upvoters),
		Downvotes: len(reply.Downvoters),

		Url: weburl.BuildReplyPage(reply.ThreadID, reply.ID),

		Created: reply.Created,
		Updated: reply.Updated,
	}
}

// ReplyTreeToPayload converts an assembled reply forest, attaching authors
// from the flat fetch. The walk is iterative and parents are always visited
// before their children, so arbitrarily deep chains convert fine.
func ReplyTreeToPayload(roots []*models.ReplyTreeNode, flat []forumdata.ReplyAndStuff) []*ReplyPayload {
	authors := make(map[int]*models.User, len(flat))
	for _, r := range flat {
		authors[r.Reply.ID] = r.Author
	}

	converted := make(map[int]*ReplyPayload, len(flat))
	result := []*ReplyPayload{}
	models.WalkReplyTree(roots, func(node *models.ReplyTreeNode, depth int) {
		p := ReplyToPayload(node.Reply, authors[node.ID])
		converted[node.ID] = p
		if node.Parent == nil {
			result = append(result, p)
		} else {
			parent := converted[node.Parent.ID]
			parent.Children = append(parent.Children, p)
		}
	})
	return result
}

type CategoryPayload struct {
	ID          int    `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Blurb       string `json:"blurb,omitempty"`
	ThreadCount int    `json:"threadCount"`
}

type CommunityPayload struct {
	ID          int    `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Blurb       string `json:"blurb,omitempty"`
	ThreadCount int    `json:"threadCount"`

	Subcategories []SubcategoryPayload `json:"subcategories"`
}

type SubcategoryPayload struct {
	ID   int    `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

type NotificationPayload struct {
	ID   int    `json:"id"`
	Kind string `json:"kind"`

	Actor  *int `json:"actor,omitempty"`
	Thread *int `json:"thread,omitempty"`
	Reply  *int `json:"reply,omitempty"`

	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Url      string          `json:"url"`
	Read     bool            `json:"read"`
	Metadata json.RawMessage `json:"metadata,omitempty"`

	Created time.Time `json:"created"`
}

func NotificationToPayload(n *models.Notification) NotificationPayload {
	return NotificationPayload{
		ID:   n.ID,
		Kind: string(n.Kind),

		Actor:  n.ActorID,
		Thread: n.ThreadID,
		Reply:  n.ReplyID,

		Title:    n.Title,
		Message:  n.Message,
		Url:      n.Url,
		Read:     n.Read,
		Metadata: n.Metadata,

		Created: n.Created,
	}
}

// Empty database arrays can scan as nil, which would serialize as JSON null.
// Clients get [] either way.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
