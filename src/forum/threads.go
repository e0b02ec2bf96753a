package forum

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/cache"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/config"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forumdata"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/links"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/logging"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/notify"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/utils"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/weburl"
)

type Taxonomy struct {
	Categories    []forumdata.CategoryAndStuff
	Communities   []forumdata.CommunityAndStuff
	Subcategories []*models.CommunitySubcategory
}

func (t *Taxonomy) HasCategory(id int) bool {
	for _, c := range t.Categories {
		if c.Category.ID == id {
			return true
		}
	}
	return false
}

func (t *Taxonomy) HasCommunity(id int) bool {
	for _, c := range t.Communities {
		if c.Community.ID == id {
			return true
		}
	}
	return false
}

func (t *Taxonomy) HasSubcategory(id int, communityID int) bool {
	for _, sub := range t.Subcategories {
		if sub.ID == id && sub.CommunityID == communityID {
			return true
		}
	}
	return false
}

func (s *Service) ListTaxonomy(ctx context.Context) (Taxonomy, error) {
	if tax, ok := cache.Get[Taxonomy](s.cache, taxonomyKey); ok {
		return tax, nil
	}

	v, err, _ := s.loads.Do(taxonomyKey, func() (interface{}, error) {
		categories, err := forumdata.FetchCategories(ctx, s.conn)
		if err != nil {
			return nil, err
		}
		communities, err := forumdata.FetchCommunities(ctx, s.conn)
		if err != nil {
			return nil, err
		}

		communityIDs := make([]int, len(communities))
		for i, c := range communities {
			communityIDs[i] = c.Community.ID
		}
		subcategories, err := forumdata.FetchSubcategories(ctx, s.conn, communityIDs)
		if err != nil {
			return nil, err
		}

		tax := Taxonomy{
			Categories:    categories,
			Communities:   communities,
			Subcategories: subcategories,
		}
		s.cache.Set(taxonomyKey, tax, s.ttl)
		return tax, nil
	})
	if err != nil {
		return Taxonomy{}, oops.New(err, "failed to load taxonomy")
	}

	return v.(Taxonomy), nil
}

type ThreadsRequest struct {
	CategoryID    *int
	CommunityID   *int
	SubcategoryID *int
	ConditionTags []string

	SortByPopularity bool

	Page    int // 1-based; 0 means the first page
	PerPage int // 0 means the configured default
}

type ThreadsPage struct {
	Threads    []forumdata.ThreadAndStuff
	TotalCount int
	Page       int
	PerPage    int
}

// The cache key for one page of a thread listing. Requests must be
// normalized before keying, or equivalent filters would cache separately.
func threadsListKey(req ThreadsRequest) string {
	scope := "all"
	switch {
	case req.CategoryID != nil:
		scope = fmt.Sprintf("cat-%d", *req.CategoryID)
	case req.SubcategoryID != nil:
		scope = fmt.Sprintf("com-%d-sub-%d", *req.CommunityID, *req.SubcategoryID)
	case req.CommunityID != nil:
		scope = fmt.Sprintf("com-%d", *req.CommunityID)
	}

	conditions := "all"
	if len(req.ConditionTags) > 0 {
		conditions = strings.Join(req.ConditionTags, ",")
	}

	sort := "recent"
	if req.SortByPopularity {
		sort = "popular"
	}

	return fmt.Sprintf("threads:%s:%s:%d:%d:%s", scope, conditions, req.Page, req.PerPage, sort)
}

func (s *Service) ListThreads(ctx context.Context, req ThreadsRequest) (ThreadsPage, error) {
	if req.CategoryID != nil && req.CommunityID != nil {
		return ThreadsPage{}, invalid("filter by a category or a community, not both")
	}
	if req.SubcategoryID != nil && req.CommunityID == nil {
		return ThreadsPage{}, invalid("a subcategory filter requires a community")
	}
	if req.Page < 0 || req.PerPage < 0 {
		return ThreadsPage{}, invalid("pagination values must be positive")
	}
	req.Page = utils.OrDefault(req.Page, 1)
	req.PerPage = utils.Clamp(1, utils.OrDefault(req.PerPage, config.Config.Forum.ThreadsPerPage), config.Config.Forum.MaxPerPage)
	req.ConditionTags = models.NormalizeConditionTags(req.ConditionTags)

	key := threadsListKey(req)
	if page, ok := cache.Get[ThreadsPage](s.cache, key); ok {
		return page, nil
	}

	v, err, _ := s.loads.Do(key, func() (interface{}, error) {
		q := forumdata.ThreadsQuery{
			ConditionTags:     req.ConditionTags,
			OrderByPopularity: req.SortByPopularity,
			Limit:             req.PerPage,
			Offset:            (req.Page - 1) * req.PerPage,
		}
		if req.CategoryID != nil {
			q.CategoryIDs = []int{*req.CategoryID}
		}
		if req.CommunityID != nil {
			q.CommunityIDs = []int{*req.CommunityID}
		}
		if req.SubcategoryID != nil {
			q.SubcategoryIDs = []int{*req.SubcategoryID}
		}

		threads, err := forumdata.FetchThreads(ctx, s.conn, q)
		if err != nil {
			return nil, err
		}
		count, err := forumdata.CountThreads(ctx, s.conn, q)
		if err != nil {
			return nil, err
		}

		page := ThreadsPage{
			Threads:    threads,
			TotalCount: count,
			Page:       req.Page,
			PerPage:    req.PerPage,
		}
		s.cache.Set(key, page, s.ttl)
		return page, nil
	})
	if err != nil {
		return ThreadsPage{}, oops.New(err, "failed to list threads")
	}

	return v.(ThreadsPage), nil
}

// What we keep in the cache per thread: everything a detail view needs, in
// storage order. Sorting and tree assembly happen per request on top of
// this, so both sort orders share one entry.
type threadBundle struct {
	Thread  forumdata.ThreadAndStuff
	Replies []forumdata.ReplyAndStuff
	Links   []links.Link
}

type ThreadDetail struct {
	Thread forumdata.ThreadAndStuff

	// Flat replies in created order, and the assembled forest over them.
	Replies []forumdata.ReplyAndStuff
	Tree    []*models.ReplyTreeNode

	ReplyCount int
	Links      []links.Link
}

func (s *Service) GetThreadDetail(
	ctx context.Context,
	threadID int,
	sortByPopularity bool,
) (ThreadDetail, error) {
	key := threadDetailKey(threadID)

	bundle, ok := cache.Get[threadBundle](s.cache, key)
	if !ok {
		v, err, _ := s.loads.Do(key, func() (interface{}, error) {
			thread, err := forumdata.FetchThread(ctx, s.conn, threadID, forumdata.ThreadsQuery{})
			if err != nil {
				return nil, err
			}
			replies, err := forumdata.FetchReplies(ctx, s.conn, forumdata.RepliesQuery{
				ThreadIDs: []int{threadID},
			})
			if err != nil {
				return nil, err
			}

			b := threadBundle{
				Thread:  thread,
				Replies: replies,
				Links:   links.ExtractResearchLinks(thread.Thread.BodyRaw),
			}
			s.cache.Set(key, b, s.ttl)

			// A bundle miss is our proxy for "somebody actually viewed this".
			if err := forumdata.IncrementThreadHits(ctx, s.conn, threadID); err != nil {
				logging.ExtractLogger(ctx).Error().Err(err).Msg("Failed to increment thread hits")
			}

			return b, nil
		})
		if err != nil {
			if errors.Is(err, db.NotFound) {
				return ThreadDetail{}, db.NotFound
			}
			return ThreadDetail{}, oops.New(err, "failed to load thread detail")
		}
		bundle = v.(threadBundle)
	}

	// Copy before sorting; the bundle is shared between requests.
	flat := make([]*models.Reply, len(bundle.Replies))
	for i := range bundle.Replies {
		reply := bundle.Replies[i].Reply
		flat[i] = &reply
	}
	if sortByPopularity {
		models.SortRepliesByPopularity(flat)
	}

	return ThreadDetail{
		Thread:     bundle.Thread,
		Replies:    bundle.Replies,
		Tree:       models.BuildReplyTree(flat),
		ReplyCount: len(bundle.Replies),
		Links:      bundle.Links,
	}, nil
}

type CreateThreadRequest struct {
	CategoryID    *int
	CommunityID   *int
	SubcategoryID *int

	Title         string
	Body          string
	Tags          []string
	ConditionTags []string

	OnlyResearchersCanReply bool
}

func (s *Service) CreateThread(
	ctx context.Context,
	actor *models.User,
	req CreateThreadRequest,
) (*models.Thread, error) {
	if actor == nil {
		return nil, ErrLoginRequired
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return nil, invalid("title must not be empty")
	}
	if len(req.Title) > 255 {
		return nil, invalid("title must be at most 255 characters")
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, invalid("body must not be empty")
	}
	if (req.CategoryID == nil) == (req.CommunityID == nil) {
		return nil, invalid("a thread must belong to either a category or a community")
	}
	if req.SubcategoryID != nil && req.CommunityID == nil {
		return nil, invalid("a subcategory requires a community")
	}
	for _, tag := range req.Tags {
		if !models.ValidateTagText(tag) {
			return nil, invalid("\"%s\" is not a valid tag", tag)
		}
	}
	req.ConditionTags = models.NormalizeConditionTags(req.ConditionTags)
	if len(req.ConditionTags) > models.MaxConditionTags {
		return nil, invalid("a thread can have at most %d condition tags", models.MaxConditionTags)
	}

	tax, err := s.ListTaxonomy(ctx)
	if err != nil {
		return nil, err
	}
	if req.CategoryID != nil && !tax.HasCategory(*req.CategoryID) {
		return nil, invalid("no such category")
	}
	if req.CommunityID != nil && !tax.HasCommunity(*req.CommunityID) {
		return nil, invalid("no such community")
	}
	if req.SubcategoryID != nil && !tax.HasSubcategory(*req.SubcategoryID, *req.CommunityID) {
		return nil, invalid("no such subcategory in that community")
	}

	thread, err := forumdata.CreateThread(ctx, s.conn, forumdata.CreateThreadInput{
		CategoryID:    req.CategoryID,
		CommunityID:   req.CommunityID,
		SubcategoryID: req.SubcategoryID,

		AuthorID:   actor.ID,
		AuthorRole: actor.Role,

		Title:         req.Title,
		BodyRaw:       req.Body,
		Tags:          req.Tags,
		ConditionTags: req.ConditionTags,

		OnlyResearchersCanReply: req.OnlyResearchersCanReply,
		IsResearcherForum:       req.CategoryID != nil,
	})
	if err != nil {
		return nil, oops.New(err, "failed to create thread")
	}

	s.invalidate("threads:", taxonomyKey)

	// Patient-authored threads with condition tags reach out to researchers
	// in those conditions. Researcher threads don't fan out.
	if actor.Role == models.RolePatient && len(req.ConditionTags) > 0 {
		s.notifier.Announce(ctx, notify.Event{
			Kind:          models.NotificationConditionMatch,
			ActorID:       actor.ID,
			ThreadID:      thread.ID,
			ConditionTags: req.ConditionTags,
			Title:         "New discussion in your field",
			Message:       fmt.Sprintf("%s started a discussion: %s", actor.BestName(), thread.Title),
			Url:           weburl.BuildThreadPage(thread.ID),
		})
	}

	return thread, nil
}

type EditThreadRequest struct {
	Title         *string  // nil = leave alone
	Body          *string  // nil = leave alone
	Tags          []string // nil = leave alone
	ConditionTags []string // nil = leave alone
}

func (s *Service) EditThread(
	ctx context.Context,
	actor *models.User,
	threadID int,
	req EditThreadRequest,
) (*models.Thread, error) {
	if actor == nil {
		return nil, ErrLoginRequired
	}

	existing, err := forumdata.FetchThread(ctx, s.conn, threadID, forumdata.ThreadsQuery{})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, db.NotFound
		}
		return nil, oops.New(err, "failed to fetch thread for editing")
	}
	if existing.Thread.AuthorID != actor.ID && !actor.IsAdmin {
		return nil, ErrNotOwner
	}

	update := forumdata.UpdateThreadInput{
		Tags:          req.Tags,
		ConditionTags: req.ConditionTags,
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, invalid("title must not be empty")
		}
		if len(title) > 255 {
			return nil, invalid("title must be at most 255 characters")
		}
		update.Title = &title
	}
	if req.Body != nil {
		if strings.TrimSpace(*req.Body) == "" {
			return nil, invalid("body must not be empty")
		}
		update.BodyRaw = req.Body
	}
	for _, tag := range req.Tags {
		if !models.ValidateTagText(tag) {
			return nil, invalid("\"%s\" is not a valid tag", tag)
		}
	}
	if req.ConditionTags != nil {
		update.ConditionTags = models.NormalizeConditionTags(req.ConditionTags)
		if len(update.ConditionTags) > models.MaxConditionTags {
			return nil, invalid("a thread can have at most %d condition tags", models.MaxConditionTags)
		}
	}

	thread, err := forumdata.UpdateThread(ctx, s.conn, threadID, update)
	if err != nil {
		return nil, oops.New(err, "failed to update thread")
	}

	s.invalidate("threads:", threadDetailKey(threadID))

	return thread, nil
}

func (s *Service) DeleteThread(
	ctx context.Context,
	actor *models.User,
	threadID int,
) error {
	if actor == nil {
		return ErrLoginRequired
	}

	existing, err := forumdata.FetchThread(ctx, s.conn, threadID, forumdata.ThreadsQuery{})
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return db.NotFound
		}
		return oops.New(err, "failed to fetch thread for deletion")
	}
	if existing.Thread.AuthorID != actor.ID && !actor.IsAdmin {
		return ErrNotOwner
	}

	err = forumdata.DeleteThread(ctx, s.conn, threadID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return db.NotFound
		}
		return oops.New(err, "failed to delete thread")
	}

	s.invalidate("threads:", threadDetailKey(threadID), taxonomyKey)

	return nil
}
