package website

func AdminCacheFlush(c *RequestContext) ResponseData {
	flushed := c.Forum.Cache().Flush()

	c.Logger.Info().
		Str("admin", c.CurrentUser.Username).
		Int("entries", flushed).
		Msg("Flushed the content cache")

	return jsonOK(c, map[string]any{"flushed": flushed})
}

func AdminCacheStats(c *RequestContext) ResponseData {
	return jsonOK(c, map[string]any{"stats": c.Forum.Cache().Stats()})
}
