package website

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/auth"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/config"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forumdata"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/logging"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/models"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/oops"
)

func loadCommonData(h Handler) Handler {
	return func(c *RequestContext) ResponseData {
		c.Perf.StartBlock("MIDDLEWARE", "Load common request data")
		{
			// get user
			sessionId := sessionIdFromRequest(c)
			if sessionId != "" {
				user, session, err := getCurrentUserAndSession(c, sessionId)
				if err != nil {
					return c.ErrorResponse(http.StatusInternalServerError, oops.New(err, "failed to get current user"))
				}

				c.CurrentUser = user
				c.CurrentSession = session
			}
		}
		c.Perf.EndBlock()

		return h(c)
	}
}

// Sessions are issued outside this codebase, so all we get is an opaque id,
// either as a bearer token or as a cookie. The bearer form wins when both
// are present.
func sessionIdFromRequest(c *RequestContext) string {
	if header := c.Req.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	sessionCookie, err := c.Req.Cookie(auth.SessionCookieName)
	if err == nil {
		return sessionCookie.Value
	}
	// http.ErrNoCookie is the only error Cookie ever returns, so no further handling to do here.

	return ""
}

// Given a session id, fetches user data from the database. Will return nil if
// the user cannot be found, and will only return an error if it's serious.
func getCurrentUserAndSession(c *RequestContext, sessionId string) (*models.User, *models.Session, error) {
	session, err := auth.GetSession(c, c.Conn, sessionId)
	if err != nil {
		if errors.Is(err, auth.ErrNoSession) {
			return nil, nil, nil
		} else {
			return nil, nil, oops.New(err, "failed to get current session")
		}
	}

	user, err := forumdata.FetchUser(c, c.Conn, session.UserID)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			logging.Debug().Int("userId", session.UserID).Msg("returning no current user for this request because the user for the session couldn't be found")
			return nil, nil, nil // user was deleted or something
		} else {
			return nil, nil, oops.New(err, "failed to get user for session")
		}
	}

	return user, session, nil
}

func addCORSHeaders(c *RequestContext, res *ResponseData) {
	parsed, err := url.Parse(config.Config.BaseUrl)
	if err != nil {
		c.Logger.Error().Str("Config.BaseUrl", config.Config.BaseUrl).Msg("Config.BaseUrl cannot be parsed. Skipping CORS headers")
		return
	}
	origin := ""
	origins, found := c.Req.Header["Origin"]
	if found {
		origin = origins[0]
	}
	if strings.HasSuffix(origin, parsed.Host) {
		res.Header().Add("Access-Control-Allow-Origin", origin)
		res.Header().Add("Access-Control-Allow-Credentials", "true")
		res.Header().Add("Vary", "Origin")
	}
}
