package website

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/cache"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forum"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/logging"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/perf"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error"`
}

func readEnvelope(t *testing.T, res *http.Response) envelope {
	t.Helper()
	defer res.Body.Close()

	var env envelope
	require.Nil(t, json.NewDecoder(res.Body).Decode(&env))
	return env
}

func TestLogContextErrors(t *testing.T) {
	err1 := errors.New("test error 1")
	err2 := errors.New("test error 2")

	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	logger.Print("sanity check")

	assert.Contains(t, buf.String(), "sanity check")

	router := &Router{}
	routes := RouteBuilder{
		Router: router,
		Middlewares: []Middleware{
			func(h Handler) Handler {
				return func(c *RequestContext) ResponseData {
					c.Logger = &logger
					return logContextErrorsMiddleware(h)(c)
				}
			},
		},
	}

	routes.GET(regexp.MustCompile("^/test$"), func(c *RequestContext) ResponseData {
		return c.ErrorResponse(http.StatusInternalServerError, err1, err2)
	})

	srv := httptest.NewServer(router)
	defer srv.Close()

	res, err := http.Get(srv.URL + "/test")
	if assert.Nil(t, err) {
		defer res.Body.Close()

		t.Logf("Log contents: %s", buf.String())

		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)

		assert.Contains(t, buf.String(), err1.Error())
		assert.Contains(t, buf.String(), err2.Error())
	}
}

// Routing and auth behavior that doesn't need storage: anonymous requests
// never get past the middleware stack on protected routes, so a nil pool is
// never touched.
func TestAPIRouting(t *testing.T) {
	perfCollector, perfJob := perf.RunPerfCollector()
	defer perfJob.Cancel()

	forumService := forum.NewService(nil, cache.NewStore(), nil)
	srv := httptest.NewServer(NewAPIRoutes(nil, perfCollector, forumService))
	defer srv.Close()

	t.Run("unknown paths hit the catch-all", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/api/v1/bogus")
		require.Nil(t, err)
		assert.Equal(t, http.StatusNotFound, res.StatusCode)

		env := readEnvelope(t, res)
		assert.False(t, env.Ok)
		assert.Equal(t, "not found", env.Error)
	})

	t.Run("unknown methods hit the catch-all", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPatch, srv.URL+"/api/v1/threads", nil)
		res, err := http.DefaultClient.Do(req)
		require.Nil(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("writes require a session", func(t *testing.T) {
		res, err := http.Post(srv.URL+"/api/v1/threads", "application/json", bytes.NewBufferString(`{}`))
		require.Nil(t, err)
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)

		env := readEnvelope(t, res)
		assert.False(t, env.Ok)
		assert.Equal(t, forum.ErrLoginRequired.Error(), env.Error)
	})

	t.Run("me requires a session", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/api/v1/me")
		require.Nil(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})

	t.Run("admin routes pretend not to exist", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/api/v1/admin/cache/stats")
		require.Nil(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusNotFound, res.StatusCode)
	})

	t.Run("trailing slashes route the same", func(t *testing.T) {
		res, err := http.Get(srv.URL + "/api/v1/me/")
		require.Nil(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	})
}

func TestApiErrorStatuses(t *testing.T) {
	items := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", forum.ValidationError{Message: "title must not be empty"}, http.StatusBadRequest, "title must not be empty"},
		{"safe error", NewSafeError(errors.New("inner"), "bad input"), http.StatusBadRequest, "bad input"},
		{"login required", forum.ErrLoginRequired, http.StatusUnauthorized, forum.ErrLoginRequired.Error()},
		{"not owner", forum.ErrNotOwner, http.StatusForbidden, forum.ErrNotOwner.Error()},
		{"researchers only", forum.ErrResearchersOnly, http.StatusForbidden, forum.ErrResearchersOnly.Error()},
		{"not found", db.NotFound, http.StatusNotFound, db.NotFound.Error()},
		{"conflict", &pgconn.PgError{Code: "23505"}, http.StatusConflict, "that conflicts with content that already exists"},
		{"seed required", forum.ErrSeedRequired, http.StatusPreconditionRequired, forum.ErrSeedRequired.Error()},
		{"anything else", errors.New("pq: your disk is on fire"), http.StatusInternalServerError, "something went wrong on our end"},
	}

	for _, item := range items {
		t.Run(item.name, func(t *testing.T) {
			c := &RequestContext{
				Logger: logging.GlobalLogger(),
				Req:    httptest.NewRequest(http.MethodGet, "/", nil),
			}

			res := apiError(c, item.err)
			assert.Equal(t, item.status, res.StatusCode)

			var env envelope
			require.Nil(t, json.Unmarshal(res.Body.Bytes(), &env))
			assert.False(t, env.Ok)
			assert.Equal(t, item.message, env.Error)
		})
	}
}

func TestPreview(t *testing.T) {
	render := func(body string) ResponseData {
		c := &RequestContext{
			Logger: logging.GlobalLogger(),
			Req:    httptest.NewRequest(http.MethodPost, "/api/v1/preview", bytes.NewBufferString(body)),
			Res:    httptest.NewRecorder(),
		}
		return Preview(c)
	}

	t.Run("renders markdown", func(t *testing.T) {
		res := render(`{ "markdown": "Hello *world*" }`)
		assert.Equal(t, http.StatusOK, res.StatusCode)

		var payload struct {
			Ok   bool   `json:"ok"`
			Html string `json:"html"`
		}
		require.Nil(t, json.Unmarshal(res.Body.Bytes(), &payload))
		assert.True(t, payload.Ok)
		assert.Contains(t, payload.Html, "<em>world</em>")

		// A second render of the same draft comes from the byte cache and
		// must be identical.
		res2 := render(`{ "markdown": "Hello *world*" }`)
		assert.Equal(t, res.Body.Bytes(), res2.Body.Bytes())
	})

	t.Run("blank markdown renders blank", func(t *testing.T) {
		res := render(`{ "markdown": "   " }`)
		assert.Equal(t, http.StatusOK, res.StatusCode)
		assert.Contains(t, res.Body.String(), `"html":""`)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		res := render(`{ "markdown": "hi", "bogus": true }`)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("trailing garbage is rejected", func(t *testing.T) {
		res := render(`{ "markdown": "hi" } {"again": true}`)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}
