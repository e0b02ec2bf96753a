package db

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPaths(t *testing.T) {
	type CustomInt int
	type S struct {
		I   int        `db:"I"`
		PI  *int       `db:"PI"`
		CI  CustomInt  `db:"CI"`
		PCI *CustomInt `db:"PCI"`
		B   bool       `db:"B"`
		PB  *bool      `db:"PB"`

		NoTag int
	}
	type Nested struct {
		S  S  `db:"S"`
		PS *S `db:"PS"`

		NoTag S
	}

	names, paths := getColumnNamesAndPaths(reflect.TypeOf(Nested{}), nil, nil)
	assert.Equal(t, []columnName{
		{"S", "I"}, {"S", "PI"},
		{"S", "CI"}, {"S", "PCI"},
		{"S", "B"}, {"S", "PB"},
		{"PS", "I"}, {"PS", "PI"},
		{"PS", "CI"}, {"PS", "PCI"},
		{"PS", "B"}, {"PS", "PB"},
	}, names)
	assert.Equal(t, []fieldPath{
		{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}, {0, 5},
		{1, 0}, {1, 1}, {1, 2}, {1, 3}, {1, 4}, {1, 5},
	}, paths)
	assert.True(t, len(names) == len(paths))

	testStruct := Nested{}
	for i, path := range paths {
		val, field := followPathThroughStructs(reflect.ValueOf(&testStruct), path)
		assert.True(t, val.IsValid())
		assert.True(t, strings.Contains(strings.Join(names[i], "."), field.Name))
	}
}

func TestCompileQuery(t *testing.T) {
	type Row struct {
		ID    int    `db:"id"`
		Title string `db:"title"`
	}

	t.Run("bare columns", func(t *testing.T) {
		compiled := compileQuery("SELECT $columns FROM thread", reflect.TypeOf(Row{}))
		assert.Equal(t, "SELECT id, title FROM thread", compiled.query)
	})
	t.Run("prefixed columns", func(t *testing.T) {
		compiled := compileQuery("SELECT $columns{thread} FROM thread", reflect.TypeOf(Row{}))
		assert.Equal(t, "SELECT thread.id, thread.title FROM thread", compiled.query)
	})
	t.Run("columns into non-struct panics", func(t *testing.T) {
		assert.Panics(t, func() {
			compileQuery("SELECT $columns FROM thread", reflect.TypeOf(0))
		})
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(fmt.Errorf("some other error")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestGetQueryName(t *testing.T) {
	name, ok := GetQueryName("---- Fetch threads\nSELECT stuff")
	assert.True(t, ok)
	assert.Equal(t, "Fetch threads", name)

	_, ok = GetQueryName("SELECT stuff")
	assert.False(t, ok)
}
