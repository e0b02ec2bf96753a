package weburl

import (
	"net/url"
	"regexp"
	"testing"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/config"
	"github.com/stretchr/testify/assert"
)

func TestUrl(t *testing.T) {
	defer func() {
		SetGlobalBaseUrl(config.Config.BaseUrl)
	}()
	SetGlobalBaseUrl("http://collabiora.test")

	t.Run("no query", func(t *testing.T) {
		result := Url("/test/foo", nil)
		assert.Equal(t, "http://collabiora.test/test/foo", result)
	})
	t.Run("yes query", func(t *testing.T) {
		result := Url("/test/foo", []Q{{"bar", "baz"}, {"zig??", "zig & zag!!"}})
		assert.Equal(t, "http://collabiora.test/test/foo?bar=baz&zig%3F%3F=zig+%26+zag%21%21", result)
	})
}

func TestCategories(t *testing.T) {
	AssertRegexMatch(t, BuildAPICategories(), RegexAPICategories, nil)
}

func TestThreads(t *testing.T) {
	AssertRegexMatch(t, BuildAPIThreads(), RegexAPIThreads, nil)
	AssertRegexMatch(t, BuildAPIThreadsFiltered("3", "", []string{"diabetes", "hypertension"}, "popular", 2), RegexAPIThreads, nil)
	assert.Equal(t, BuildAPIThreads(), BuildAPIThreadsFiltered("", "", nil, "", 1))
	assert.Panics(t, func() { BuildAPIThreadsFiltered("", "", nil, "", 0) })
}

func TestThread(t *testing.T) {
	AssertRegexMatch(t, BuildAPIThread(7), RegexAPIThread, map[string]string{"threadid": "7"})
	assert.Panics(t, func() { BuildAPIThread(0) })
}

func TestThreadReplies(t *testing.T) {
	AssertRegexMatch(t, BuildAPIThreadReplies("7"), RegexAPIThreadReplies, map[string]string{"ref": "7"})
	AssertRegexMatch(t, BuildAPIThreadReplies("sample-diabetes-01"), RegexAPIThreadReplies, map[string]string{"ref": "sample-diabetes-01"})
	assert.Panics(t, func() { BuildAPIThreadReplies("") })
	assert.Panics(t, func() { BuildAPIThreadReplies("a/b") })
}

func TestThreadVote(t *testing.T) {
	AssertRegexMatch(t, BuildAPIThreadVote("7"), RegexAPIThreadVote, map[string]string{"ref": "7"})
	AssertRegexMatch(t, BuildAPIThreadVote("sample-diabetes-01"), RegexAPIThreadVote, map[string]string{"ref": "sample-diabetes-01"})
}

func TestReply(t *testing.T) {
	AssertRegexMatch(t, BuildAPIReply(12), RegexAPIReply, map[string]string{"replyid": "12"})
	assert.Panics(t, func() { BuildAPIReply(-1) })
}

func TestReplyVote(t *testing.T) {
	AssertRegexMatch(t, BuildAPIReplyVote(12), RegexAPIReplyVote, map[string]string{"replyid": "12"})
	assert.Panics(t, func() { BuildAPIReplyVote(0) })
}

func TestMe(t *testing.T) {
	AssertRegexMatch(t, BuildAPIMe(), RegexAPIMe, nil)
}

func TestLogout(t *testing.T) {
	AssertRegexMatch(t, BuildAPILogout(), RegexAPILogout, nil)
}

func TestNotifications(t *testing.T) {
	AssertRegexMatch(t, BuildAPINotifications(false), RegexAPINotifications, nil)
	AssertRegexMatch(t, BuildAPINotifications(true), RegexAPINotifications, nil)
	AssertRegexMatch(t, BuildAPINotificationRead(3), RegexAPINotificationRead, map[string]string{"notifid": "3"})
	AssertRegexMatch(t, BuildAPINotificationsReadAll(), RegexAPINotificationsReadAll, nil)
	assert.Panics(t, func() { BuildAPINotificationRead(0) })
}

// The read-all route must not be swallowed by the {notifid}/read route, and
// vice versa.
func TestNotificationRouteOverlap(t *testing.T) {
	readAll, _ := url.Parse(BuildAPINotificationsReadAll())
	assert.False(t, RegexAPINotificationRead.MatchString(readAll.Path))

	readOne, _ := url.Parse(BuildAPINotificationRead(3))
	assert.False(t, RegexAPINotificationsReadAll.MatchString(readOne.Path))
}

func TestPreview(t *testing.T) {
	AssertRegexMatch(t, BuildAPIPreview(), RegexAPIPreview, nil)
}

func TestAdminCache(t *testing.T) {
	AssertRegexMatch(t, BuildAPIAdminCacheFlush(), RegexAPIAdminCacheFlush, nil)
	AssertRegexMatch(t, BuildAPIAdminCacheStats(), RegexAPIAdminCacheStats, nil)
}

func TestThreadPage(t *testing.T) {
	AssertRegexMatch(t, BuildThreadPage(7), RegexThreadPage, map[string]string{"threadid": "7"})
	AssertRegexMatch(t, BuildReplyPage(7, 12), RegexThreadPage, map[string]string{"threadid": "7"})
	assert.Panics(t, func() { BuildThreadPage(0) })
	assert.Panics(t, func() { BuildReplyPage(7, 0) })
}

func AssertRegexMatch(t *testing.T, fullUrl string, regex *regexp.Regexp, paramsToVerify map[string]string) {
	t.Helper()

	parsed, err := url.Parse(fullUrl)
	ok := assert.Nilf(t, err, "Full url could not be parsed: %s", fullUrl)
	if !ok {
		return
	}

	requestPath := parsed.Path
	if len(requestPath) == 0 {
		requestPath = "/"
	}
	match := regex.FindStringSubmatch(requestPath)
	assert.NotNilf(t, match, "Url did not match regex: [%s] vs [%s]", requestPath, regex.String())

	if paramsToVerify != nil {
		subexpNames := regex.SubexpNames()
		for i, matchedValue := range match {
			paramName := subexpNames[i]
			expectedValue, ok := paramsToVerify[paramName]
			if ok {
				assert.Equalf(t, expectedValue, matchedValue, "Param mismatch for [%s]", paramName)
				delete(paramsToVerify, paramName)
			}
		}
		if len(paramsToVerify) > 0 {
			unmatchedParams := make([]string, 0, len(paramsToVerify))
			for paramName := range paramsToVerify {
				unmatchedParams = append(unmatchedParams, paramName)
			}
			assert.Fail(t, "Expected match groups not found", unmatchedParams)
		}
	}
}
