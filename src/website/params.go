package website

import (
	"net/url"
	"strconv"
	"strings"
)

// Query-param readers for handlers. Absent params come back as zero values;
// present-but-garbage params are the caller's mistake and come back as
// SafeErrors, which the error mapping turns into a 400.

func queryInt(q url.Values, name string) (*int, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, NewSafeError(err, "%s must be a number", name)
	}
	return &value, nil
}

func queryBool(q url.Values, name string) bool {
	switch strings.ToLower(q.Get(name)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// queryList splits a comma-separated param into its entries, dropping empty
// ones, so "a,,b," comes back as just a and b.
func queryList(q url.Values, name string) []string {
	raw := q.Get(name)
	if raw == "" {
		return nil
	}

	var result []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}

func parsePagination(q url.Values) (page int, perPage int, err error) {
	pageParam, err := queryInt(q, "page")
	if err != nil {
		return 0, 0, err
	}
	perPageParam, err := queryInt(q, "perPage")
	if err != nil {
		return 0, 0, err
	}

	if pageParam != nil {
		if *pageParam < 1 {
			return 0, 0, NewSafeError(nil, "page must be >= 1")
		}
		page = *pageParam
	}
	if perPageParam != nil {
		if *perPageParam < 1 {
			return 0, 0, NewSafeError(nil, "perPage must be >= 1")
		}
		perPage = *perPageParam
	}

	return page, perPage, nil
}
