package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryBuilder(t *testing.T) {
	t.Run("numbers placeholders across chunks", func(t *testing.T) {
		var qb QueryBuilder
		qb.Add("SELECT stuff FROM thread WHERE id = $?", 3)
		qb.Add("AND community_id = ANY ($?)", []int{1, 2})
		qb.Add("AND deleted = $?", false)

		assert.Equal(t, "SELECT stuff FROM thread WHERE id = $1\nAND community_id = ANY ($2)\nAND deleted = $3\n", qb.String())
		assert.Equal(t, []interface{}{3, []int{1, 2}, false}, qb.Args())
	})
	t.Run("chunk with no args", func(t *testing.T) {
		var qb QueryBuilder
		qb.Add("SELECT stuff FROM thread")
		qb.Add("WHERE id = $?", 3)

		assert.Equal(t, "SELECT stuff FROM thread\nWHERE id = $1\n", qb.String())
	})
	t.Run("panics on arg count mismatch", func(t *testing.T) {
		var qb QueryBuilder
		assert.Panics(t, func() {
			qb.Add("WHERE id = $?")
		})
		assert.Panics(t, func() {
			qb.Add("WHERE id = $?", 1, 2)
		})
	})
}
