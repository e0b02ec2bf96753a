package website

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryInt(t *testing.T) {
	q := url.Values{}
	q.Set("category", "3")
	q.Set("community", "soup")

	value, err := queryInt(q, "category")
	if assert.Nil(t, err) && assert.NotNil(t, value) {
		assert.Equal(t, 3, *value)
	}

	value, err = queryInt(q, "missing")
	assert.Nil(t, err)
	assert.Nil(t, value)

	_, err = queryInt(q, "community")
	assert.Error(t, err)
}

func TestQueryBool(t *testing.T) {
	q := url.Values{}
	q.Set("a", "1")
	q.Set("b", "true")
	q.Set("c", "YES")
	q.Set("d", "0")
	q.Set("e", "glorp")

	assert.True(t, queryBool(q, "a"))
	assert.True(t, queryBool(q, "b"))
	assert.True(t, queryBool(q, "c"))
	assert.False(t, queryBool(q, "d"))
	assert.False(t, queryBool(q, "e"))
	assert.False(t, queryBool(q, "missing"))
}

func TestQueryList(t *testing.T) {
	q := url.Values{}
	q.Set("conditions", "diabetes, long covid,,me/cfs,")

	assert.Equal(t, []string{"diabetes", "long covid", "me/cfs"}, queryList(q, "conditions"))
	assert.Nil(t, queryList(q, "missing"))
}

func TestParsePagination(t *testing.T) {
	items := []struct {
		name          string
		page, perPage string
		wantPage      int
		wantPerPage   int
		ok            bool
	}{
		{"defaults", "", "", 0, 0, true},
		{"good", "2", "10", 2, 10, true},
		{"page only", "3", "", 3, 0, true},
		{"zero page", "0", "", 0, 0, false},
		{"negative page", "-1", "", 0, 0, false},
		{"zero perPage", "", "0", 0, 0, false},
		{"pizza", "pizza", "", 0, 0, false},
	}

	for _, item := range items {
		t.Run(item.name, func(t *testing.T) {
			q := url.Values{}
			if item.page != "" {
				q.Set("page", item.page)
			}
			if item.perPage != "" {
				q.Set("perPage", item.perPage)
			}

			page, perPage, err := parsePagination(q)
			if item.ok {
				assert.Nil(t, err)
				assert.Equal(t, item.wantPage, page)
				assert.Equal(t, item.wantPerPage, perPage)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
