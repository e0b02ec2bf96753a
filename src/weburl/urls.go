package weburl

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
)

const APIPrefix = "/api/v1"

var RegexAPICategories = regexp.MustCompile(`^/api/v1/categories$`)

func BuildAPICategories() string {
	return Url(APIPrefix+"/categories", nil)
}

var RegexAPIThreads = regexp.MustCompile(`^/api/v1/threads$`)

func BuildAPIThreads() string {
	return Url(APIPrefix+"/threads", nil)
}

func BuildAPIThreadsFiltered(category string, community string, conditions []string, sort string, page int) string {
	if page < 1 {
		panic(oops.New(nil, "Invalid thread list page (%d), must be >= 1", page))
	}

	var query []Q
	if category != "" {
		query = append(query, Q{"category", category})
	}
	if community != "" {
		query = append(query, Q{"community", community})
	}
	if len(conditions) > 0 {
		query = append(query, Q{"conditions", strings.Join(conditions, ",")})
	}
	if sort != "" {
		query = append(query, Q{"sort", sort})
	}
	if page > 1 {
		query = append(query, Q{"page", strconv.Itoa(page)})
	}
	return Url(APIPrefix+"/threads", query)
}

var RegexAPIThread = regexp.MustCompile(`^/api/v1/threads/(?P<threadid>\d+)$`)

func BuildAPIThread(threadID int) string {
	if threadID < 1 {
		panic(oops.New(nil, "Invalid thread ID (%d), must be >= 1", threadID))
	}
	return Url(APIPrefix+"/threads/"+strconv.Itoa(threadID), nil)
}

// Thread references in reply/vote routes are either a numeric thread id or
// an external placeholder key, so these accept any single path segment.

var RegexAPIThreadReplies = regexp.MustCompile(`^/api/v1/threads/(?P<ref>[^/]+)/replies$`)

func BuildAPIThreadReplies(ref string) string {
	return Url(APIPrefix+"/threads/"+cleanThreadRef(ref)+"/replies", nil)
}

var RegexAPIThreadVote = regexp.MustCompile(`^/api/v1/threads/(?P<ref>[^/]+)/vote$`)

func BuildAPIThreadVote(ref string) string {
	return Url(APIPrefix+"/threads/"+cleanThreadRef(ref)+"/vote", nil)
}

var RegexAPIReply = regexp.MustCompile(`^/api/v1/replies/(?P<replyid>\d+)$`)

func BuildAPIReply(replyID int) string {
	if replyID < 1 {
		panic(oops.New(nil, "Invalid reply ID (%d), must be >= 1", replyID))
	}
	return Url(APIPrefix+"/replies/"+strconv.Itoa(replyID), nil)
}

var RegexAPIReplyVote = regexp.MustCompile(`^/api/v1/replies/(?P<replyid>\d+)/vote$`)

func BuildAPIReplyVote(replyID int) string {
	if replyID < 1 {
		panic(oops.New(nil, "Invalid reply ID (%d), must be >= 1", replyID))
	}
	return Url(APIPrefix+"/replies/"+strconv.Itoa(replyID)+"/vote", nil)
}

var RegexAPIMe = regexp.MustCompile(`^/api/v1/me$`)

func BuildAPIMe() string {
	return Url(APIPrefix+"/me", nil)
}

var RegexAPILogout = regexp.MustCompile(`^/api/v1/logout$`)

func BuildAPILogout() string {
	return Url(APIPrefix+"/logout", nil)
}

var RegexAPINotificationsReadAll = regexp.MustCompile(`^/api/v1/notifications/read-all$`)

func BuildAPINotificationsReadAll() string {
	return Url(APIPrefix+"/notifications/read-all", nil)
}

var RegexAPINotificationRead = regexp.MustCompile(`^/api/v1/notifications/(?P<notifid>\d+)/read$`)

func BuildAPINotificationRead(notifID int) string {
	if notifID < 1 {
		panic(oops.New(nil, "Invalid notification ID (%d), must be >= 1", notifID))
	}
	return Url(APIPrefix+"/notifications/"+strconv.Itoa(notifID)+"/read", nil)
}

var RegexAPINotifications = regexp.MustCompile(`^/api/v1/notifications$`)

func BuildAPINotifications(unreadOnly bool) string {
	var query []Q
	if unreadOnly {
		query = append(query, Q{"unread", "1"})
	}
	return Url(APIPrefix+"/notifications", query)
}

var RegexAPIPreview = regexp.MustCompile(`^/api/v1/preview$`)

func BuildAPIPreview() string {
	return Url(APIPrefix+"/preview", nil)
}

var RegexAPIAdminCacheFlush = regexp.MustCompile(`^/api/v1/admin/cache/flush$`)

func BuildAPIAdminCacheFlush() string {
	return Url(APIPrefix+"/admin/cache/flush", nil)
}

var RegexAPIAdminCacheStats = regexp.MustCompile(`^/api/v1/admin/cache/stats$`)

func BuildAPIAdminCacheStats() string {
	return Url(APIPrefix+"/admin/cache/stats", nil)
}

// The canonical thread pages live on the frontend, not on this API, but we
// store their URLs on notifications, so they get built (and tested) here.

var RegexThreadPage = regexp.MustCompile(`^/threads/(?P<threadid>\d+)$`)

func BuildThreadPage(threadID int) string {
	if threadID < 1 {
		panic(oops.New(nil, "Invalid thread ID (%d), must be >= 1", threadID))
	}
	return Url("/threads/"+strconv.Itoa(threadID), nil)
}

func BuildReplyPage(threadID int, replyID int) string {
	if replyID < 1 {
		panic(oops.New(nil, "Invalid reply ID (%d), must be >= 1", replyID))
	}
	return BuildThreadPage(threadID) + "#reply-" + strconv.Itoa(replyID)
}

var RegexCatchAll = regexp.MustCompile("^")

func cleanThreadRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		panic(oops.New(nil, "Tried to build a thread URL with a blank reference"))
	}
	if strings.Contains(ref, "/") {
		panic(oops.New(nil, "Tried to build a thread URL with / in the reference"))
	}
	return ref
}
