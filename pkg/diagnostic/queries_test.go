package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadQueries(t *testing.T) {
	queries, err := LoadQueries()
	require.NoError(t, err)
	require.NotEmpty(t, queries)

	seen := map[int]bool{}
	for _, q := range queries {
		assert.NotEmpty(t, q.Name)
		assert.NotEmpty(t, q.SQL)
		assert.False(t, seen[q.Number], "duplicate query number %d", q.Number)
		seen[q.Number] = true
	}
}

func TestFilterQueries(t *testing.T) {
	queries := []Query{
		{Name: "Version Info", Number: 1},
		{Name: "Top Worker Time Queries", Number: 5},
		{Name: "Top Logical Reads Queries", Number: 6},
	}

	assert.Len(t, FilterQueries(queries, ""), 3)
	assert.Len(t, FilterQueries(queries, "Top*"), 2)

	matched := FilterQueries(queries, "Version*")
	require.Len(t, matched, 1)
	assert.Equal(t, 1, matched[0].Number)

	assert.Empty(t, FilterQueries(queries, "nothing"))
}
