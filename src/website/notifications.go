package website

import (
	"strconv"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forumdata"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/utils"
)

const notificationsPerPage = 50

func Notifications(c *RequestContext) ResponseData {
	q := c.URL().Query()

	page, perPage, err := parsePagination(q)
	if err != nil {
		return apiError(c, err)
	}
	page = utils.OrDefault(page, 1)
	perPage = utils.Clamp(1, utils.OrDefault(perPage, notificationsPerPage), notificationsPerPage)

	notifications, err := forumdata.FetchNotifications(c, c.Conn, forumdata.NotificationsQuery{
		RecipientIDs: []int{c.CurrentUser.ID},
		UnreadOnly:   queryBool(q, "unread"),
		Limit:        perPage,
		Offset:       (page - 1) * perPage,
	})
	if err != nil {
		return apiError(c, err)
	}

	counts, err := forumdata.CountNotifications(c, c.Conn, c.CurrentUser.ID)
	if err != nil {
		return apiError(c, err)
	}

	payloads := make([]NotificationPayload, 0, len(notifications))
	for i := range notifications {
		payloads = append(payloads, NotificationToPayload(&notifications[i]))
	}

	return jsonOK(c, map[string]any{
		"notifications": payloads,
		"page":          page,
		"perPage":       perPage,
		"totalCount":    counts.Total,
		"unreadCount":   counts.Unread,
	})
}

func NotificationRead(c *RequestContext) ResponseData {
	notifID, err := strconv.Atoi(c.PathParams["notifid"])
	if err != nil {
		return FourOhFour(c)
	}

	// Scoped to the current user, so marking somebody else's notification
	// read just comes back not found.
	err = forumdata.MarkNotificationRead(c, c.Conn, notifID, c.CurrentUser.ID)
	if err != nil {
		return apiError(c, err)
	}

	return jsonOK(c, nil)
}

func NotificationsReadAll(c *RequestContext) ResponseData {
	updated, err := forumdata.MarkAllNotificationsRead(c, c.Conn, c.CurrentUser.ID)
	if err != nil {
		return apiError(c, err)
	}

	return jsonOK(c, map[string]any{"updated": updated})
}
