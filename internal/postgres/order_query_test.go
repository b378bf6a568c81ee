package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/njord/internal/domain"
)

func TestBuildOrderQuery_DefaultExcludesTrash(t *testing.T) {
	q := buildOrderQuery(orderQueryInput{})

	require.Contains(t, q.PageSQL, "status <> $1")
	require.Equal(t, "ord-trash", q.PageArgs[0])
	require.Contains(t, q.PageSQL, "LIMIT $2 OFFSET $3")
	require.Equal(t, 10, q.PageArgs[1])
	require.Equal(t, 0, q.PageArgs[2])
}

func TestBuildOrderQuery_StatusesArePrefixed(t *testing.T) {
	q := buildOrderQuery(orderQueryInput{Filter: domain.OrderFilter{
		Statuses: []string{"processing", "completed"},
	}})

	require.Contains(t, q.PageSQL, "status = ANY($1)")
	require.Equal(t, []string{"ord-processing", "ord-completed"}, q.PageArgs[0])
}

func TestBuildOrderQuery_AnyShortCircuitsStatusFilter(t *testing.T) {
	q := buildOrderQuery(orderQueryInput{Filter: domain.OrderFilter{
		Statuses: []string{"processing", "any", "completed"},
	}})

	require.NotContains(t, q.PageSQL, "status")
}

func TestBuildOrderQuery_UnknownStatusPassesThroughUnprefixed(t *testing.T) {
	q := buildOrderQuery(orderQueryInput{Filter: domain.OrderFilter{
		Statuses: []string{"processing", "awaiting-engraving"},
	}})

	require.Equal(t, []string{"ord-processing", "awaiting-engraving"}, q.PageArgs[0])
}

func TestBuildOrderQuery_EmptyCandidateSetUsesSentinel(t *testing.T) {
	q := buildOrderQuery(orderQueryInput{HasCandidates: true})

	require.Contains(t, q.PageSQL, "id = ANY($2)")
	require.Equal(t, []int64{0}, q.PageArgs[1])
}

func TestBuildOrderQuery_CandidateIDs(t *testing.T) {
	q := buildOrderQuery(orderQueryInput{
		HasCandidates: true,
		CandidateIDs:  []int64{5, 9},
	})

	require.Equal(t, []int64{5, 9}, q.PageArgs[1])
}

func TestBuildOrderQuery_NumberIsEscapedAndLeftAnchored(t *testing.T) {
	q := buildOrderQuery(orderQueryInput{Filter: domain.OrderFilter{Number: `12%_\`}})

	require.Contains(t, q.PageSQL, "CAST(id AS TEXT) LIKE $2")
	require.Equal(t, `12\%\_\\%`, q.PageArgs[1])
}

func TestBuildOrderQuery_DateFiltersAreStrict(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	q := buildOrderQuery(orderQueryInput{Filter: domain.OrderFilter{
		CreatedSince:  &since,
		CreatedBefore: &before,
		UpdatedSince:  &since,
		UpdatedBefore: &before,
	}})

	require.Contains(t, q.PageSQL, "date_created > $2")
	require.Contains(t, q.PageSQL, "date_created < $3")
	require.Contains(t, q.PageSQL, "date_modified > $4")
	require.Contains(t, q.PageSQL, "date_modified < $5")
	require.NotContains(t, q.PageSQL, ">=")
	require.NotContains(t, q.PageSQL, "<=")
}

func TestBuildOrderQuery_CustomerFilter(t *testing.T) {
	customer := int64(42)
	q := buildOrderQuery(orderQueryInput{Filter: domain.OrderFilter{Customer: &customer}})

	require.Contains(t, q.PageSQL, "customer_id = $2")
	require.Equal(t, int64(42), q.PageArgs[1])
}

func TestBuildOrderQuery_CountQueryOmitsPaging(t *testing.T) {
	q := buildOrderQuery(orderQueryInput{Filter: domain.OrderFilter{
		Statuses: []string{"processing"},
		Page:     3,
		PerPage:  25,
	}})

	require.NotContains(t, q.CountSQL, "LIMIT")
	require.Len(t, q.CountArgs, 1)
	require.Equal(t, 25, q.PageArgs[len(q.PageArgs)-2])
	require.Equal(t, 50, q.PageArgs[len(q.PageArgs)-1])
}

func TestBuildOrderQuery_PerPageIsCapped(t *testing.T) {
	q := buildOrderQuery(orderQueryInput{Filter: domain.OrderFilter{PerPage: 5000}})

	require.Equal(t, 100, q.PageArgs[len(q.PageArgs)-2])
}

func TestExpandStatuses_TrashOnlyWhenRequested(t *testing.T) {
	statuses, includeTrash := expandStatuses([]string{"trash"})
	require.Equal(t, []string{"ord-trash"}, statuses)
	require.True(t, includeTrash)

	statuses, includeTrash = expandStatuses(nil)
	require.Nil(t, statuses)
	require.False(t, includeTrash)
}

func TestPageTotal(t *testing.T) {
	tests := []struct {
		name    string
		offset  int
		pageLen int
		limit   int
		total   int64
		derived bool
	}{
		{"short first page ends the set", 0, 5, 10, 5, true},
		{"empty first page means no matches", 0, 0, 10, 0, true},
		{"short later page ends the set", 50, 3, 25, 53, true},
		{"full page needs a count", 0, 10, 10, 0, false},
		{"empty page past the data needs a count", 90, 0, 10, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total, ok := pageTotal(tt.offset, tt.pageLen, tt.limit)
			require.Equal(t, tt.derived, ok)
			if ok {
				require.Equal(t, tt.total, total)
			}
		})
	}
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `100\%`, escapeLike(`100%`))
	require.Equal(t, `a\_b`, escapeLike(`a_b`))
	require.Equal(t, `c\\d`, escapeLike(`c\d`))
}
