package website

import (
	"net/http"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forum"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/perf"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/weburl"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewAPIRoutes(conn *pgxpool.Pool, perfCollector *perf.PerfCollector, forumService *forum.Service) http.Handler {
	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			setServices(conn, forumService),
			trackRequestPerf(perfCollector),
			corsMiddleware,
			logContextErrorsMiddleware,
			panicCatcherMiddleware,
			loadCommonData,
		},
	}

	authed := routes.WithMiddleware(needsAuth)
	admin := routes.WithMiddleware(adminsOnly)

	// Reading is open to everybody, logged in or not.
	routes.GET(weburl.RegexAPICategories, Categories)
	routes.GET(weburl.RegexAPIThreads, ThreadList)
	routes.GET(weburl.RegexAPIThread, ThreadDetail)

	authed.POST(weburl.RegexAPIThreads, ThreadCreate)
	authed.PUT(weburl.RegexAPIThread, ThreadEdit)
	authed.DELETE(weburl.RegexAPIThread, ThreadDelete)

	authed.POST(weburl.RegexAPIThreadReplies, ReplyCreate)
	authed.POST(weburl.RegexAPIThreadVote, ThreadVote)
	authed.PUT(weburl.RegexAPIReply, ReplyEdit)
	authed.DELETE(weburl.RegexAPIReply, ReplyDelete)
	authed.POST(weburl.RegexAPIReplyVote, ReplyVote)

	authed.GET(weburl.RegexAPIMe, Me)
	// Logout works whether or not the session is still valid, so no needsAuth.
	routes.POST(weburl.RegexAPILogout, Logout)
	authed.GET(weburl.RegexAPINotifications, Notifications)
	authed.POST(weburl.RegexAPINotificationsReadAll, NotificationsReadAll)
	authed.POST(weburl.RegexAPINotificationRead, NotificationRead)

	authed.POST(weburl.RegexAPIPreview, Preview)

	admin.POST(weburl.RegexAPIAdminCacheFlush, AdminCacheFlush)
	admin.GET(weburl.RegexAPIAdminCacheStats, AdminCacheStats)

	routes.AnyMethod(weburl.RegexCatchAll, FourOhFour)

	return router
}
