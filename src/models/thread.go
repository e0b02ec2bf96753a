package models

import "time"

type Thread struct {
	ID int `db:"id"`

	// A thread lives in at most one of these places. Research-forum threads
	// have a category; community threads have a community and optionally a
	// subcategory. Promoted feed content can have neither.
	CategoryID    *int `db:"category_id"`
	CommunityID   *int `db:"community_id"`
	SubcategoryID *int `db:"subcategory_id"`

	AuthorID   int      `db:"author_id"`
	AuthorRole UserRole `db:"author_role"`

	Title    string `db:"title"`
	BodyRaw  string `db:"body_raw"`
	BodyHTML string `db:"body_html"`
	Preview  string `db:"preview"`

	Tags          []string `db:"tags"`
	ConditionTags []string `db:"condition_tags"`

	Upvoters   []int `db:"upvoters"`
	Downvoters []int `db:"downvoters"`

	Hits int `db:"hits"`

	OnlyResearchersCanReply bool `db:"only_researchers_can_reply"`
	IsResearcherForum       bool `db:"is_researcher_forum"`

	// Set when this thread was promoted from an external placeholder. The
	// key is unique across all threads that have one.
	PromotionKey *string `db:"promotion_key"`
	DisplayName  *string `db:"display_name"`

	Created time.Time `db:"created"`
	Updated time.Time `db:"updated"`
}

func (t *Thread) VoteScore() int {
	return len(t.Upvoters) - len(t.Downvoters)
}

func (t *Thread) BestTitle() string {
	if t.DisplayName != nil && *t.DisplayName != "" {
		return *t.DisplayName
	}
	return t.Title
}

func (t *Thread) IsPromoted() bool {
	return t.PromotionKey != nil
}
