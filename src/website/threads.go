package website

import (
	"strconv"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forum"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/utils"
)

func Categories(c *RequestContext) ResponseData {
	tax, err := c.Forum.ListTaxonomy(c)
	if err != nil {
		return apiError(c, err)
	}

	categories := make([]CategoryPayload, 0, len(tax.Categories))
	for _, cat := range tax.Categories {
		categories = append(categories, CategoryPayload{
			ID:          cat.Category.ID,
			Slug:        cat.Category.Slug,
			Name:        cat.Category.Name,
			Blurb:       cat.Category.Blurb,
			ThreadCount: cat.ThreadCount,
		})
	}

	communities := make([]CommunityPayload, 0, len(tax.Communities))
	for _, com := range tax.Communities {
		payload := CommunityPayload{
			ID:            com.Community.ID,
			Slug:          com.Community.Slug,
			Name:          com.Community.Name,
			Blurb:         com.Community.Blurb,
			ThreadCount:   com.ThreadCount,
			Subcategories: []SubcategoryPayload{},
		}
		for _, sub := range tax.Subcategories {
			if sub.CommunityID == com.Community.ID {
				payload.Subcategories = append(payload.Subcategories, SubcategoryPayload{
					ID:   sub.ID,
					Slug: sub.Slug,
					Name: sub.Name,
				})
			}
		}
		communities = append(communities, payload)
	}

	return jsonOK(c, map[string]any{
		"categories":  categories,
		"communities": communities,
	})
}

func ThreadList(c *RequestContext) ResponseData {
	q := c.URL().Query()

	req := forum.ThreadsRequest{
		ConditionTags:    queryList(q, "conditions"),
		SortByPopularity: q.Get("sort") == "popular",
	}

	var err error
	if req.CategoryID, err = queryInt(q, "category"); err != nil {
		return apiError(c, err)
	}
	if req.CommunityID, err = queryInt(q, "community"); err != nil {
		return apiError(c, err)
	}
	if req.SubcategoryID, err = queryInt(q, "subcategory"); err != nil {
		return apiError(c, err)
	}
	if req.Page, req.PerPage, err = parsePagination(q); err != nil {
		return apiError(c, err)
	}
	if sort := q.Get("sort"); sort != "" && sort != "recent" && sort != "popular" {
		return apiError(c, NewSafeError(nil, "sort must be \"recent\" or \"popular\""))
	}

	page, err := c.Forum.ListThreads(c, req)
	if err != nil {
		return apiError(c, err)
	}

	threads := make([]ThreadPayload, 0, len(page.Threads))
	for _, t := range page.Threads {
		threads = append(threads, ThreadToPayload(t))
	}

	return jsonOK(c, map[string]any{
		"threads":    threads,
		"page":       page.Page,
		"perPage":    page.PerPage,
		"totalCount": page.TotalCount,
		"totalPages": utils.NumPages(page.TotalCount, page.PerPage),
	})
}

func ThreadDetail(c *RequestContext) ResponseData {
	threadID, err := strconv.Atoi(c.PathParams["threadid"])
	if err != nil {
		return FourOhFour(c)
	}

	detail, err := c.Forum.GetThreadDetail(c, threadID, c.URL().Query().Get("sort") == "popular")
	if err != nil {
		return apiError(c, err)
	}

	thread := ThreadToPayload(detail.Thread)
	thread.BodyHtml = detail.Thread.Thread.BodyHTML
	thread.ReplyCount = detail.ReplyCount

	return jsonOK(c, map[string]any{
		"thread":  thread,
		"replies": ReplyTreeToPayload(detail.Tree, detail.Replies),
		"links":   nonNil(detail.Links),
	})
}

type threadCreateBody struct {
	Category    *int `json:"category"`
	Community   *int `json:"community"`
	Subcategory *int `json:"subcategory"`

	Title      string   `json:"title"`
	Body       string   `json:"body"`
	Tags       []string `json:"tags"`
	Conditions []string `json:"conditions"`

	OnlyResearchersCanReply bool `json:"onlyResearchersCanReply"`
}

func ThreadCreate(c *RequestContext) ResponseData {
	var body threadCreateBody
	if err := decodeBody(c, &body); err != nil {
		return apiError(c, err)
	}

	thread, err := c.Forum.CreateThread(c, c.CurrentUser, forum.CreateThreadRequest{
		CategoryID:    body.Category,
		CommunityID:   body.Community,
		SubcategoryID: body.Subcategory,

		Title:         body.Title,
		Body:          body.Body,
		Tags:          body.Tags,
		ConditionTags: body.Conditions,

		OnlyResearchersCanReply: body.OnlyResearchersCanReply,
	})
	if err != nil {
		return apiError(c, err)
	}

	payload := BareThreadToPayload(thread)
	payload.Author = UserToPayload(c.CurrentUser)

	return jsonStatus(c, 201, map[string]any{"thread": payload})
}

type threadEditBody struct {
	Title      *string  `json:"title"`
	Body       *string  `json:"body"`
	Tags       []string `json:"tags"`
	Conditions []string `json:"conditions"`
}

func ThreadEdit(c *RequestContext) ResponseData {
	threadID, err := strconv.Atoi(c.PathParams["threadid"])
	if err != nil {
		return FourOhFour(c)
	}

	var body threadEditBody
	if err := decodeBody(c, &body); err != nil {
		return apiError(c, err)
	}

	thread, err := c.Forum.EditThread(c, c.CurrentUser, threadID, forum.EditThreadRequest{
		Title:         body.Title,
		Body:          body.Body,
		Tags:          body.Tags,
		ConditionTags: body.Conditions,
	})
	if err != nil {
		return apiError(c, err)
	}

	return jsonOK(c, map[string]any{"thread": BareThreadToPayload(thread)})
}

func ThreadDelete(c *RequestContext) ResponseData {
	threadID, err := strconv.Atoi(c.PathParams["threadid"])
	if err != nil {
		return FourOhFour(c)
	}

	if err := c.Forum.DeleteThread(c, c.CurrentUser, threadID); err != nil {
		return apiError(c, err)
	}

	return jsonOK(c, nil)
}
