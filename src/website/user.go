package website

import (
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/auth"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forumdata"
)

func Me(c *RequestContext) ResponseData {
	counts, err := forumdata.CountNotifications(c, c.Conn, c.CurrentUser.ID)
	if err != nil {
		return apiError(c, err)
	}

	return jsonOK(c, map[string]any{
		"user": UserToPayload(c.CurrentUser),
		"notifications": map[string]any{
			"total":  counts.Total,
			"unread": counts.Unread,
		},
	})
}

// Sessions come from the account system, but killing one happens here so
// clients don't need a round trip elsewhere to log out.
func Logout(c *RequestContext) ResponseData {
	if sessionId := sessionIdFromRequest(c); sessionId != "" {
		// clear the session from the db immediately, no expiration
		err := auth.DeleteSession(c, c.Conn, sessionId)
		if err != nil {
			c.Logger.Error().Err(err).Msg("failed to delete session on logout")
		}
	}

	res := jsonOK(c, nil)
	res.SetCookie(auth.DeleteSessionCookie)
	return res
}
