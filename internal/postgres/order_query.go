package postgres

import (
	"fmt"
	"strings"

	"github.com/dukerupert/njord/internal/domain"
)

// orderQuery is the assembled SQL for an order list request: a page query
// returning ids and a count query over the same predicate set.
type orderQuery struct {
	PageSQL  string
	CountSQL string
	PageArgs []any
	// CountArgs excludes the limit/offset placeholders.
	CountArgs []any
}

// orderQueryInput carries the list filters plus any pre-resolved candidate
// id set from the product or search filters. A non-nil empty candidate set
// must force an empty result, never an unfiltered page.
type orderQueryInput struct {
	Filter domain.OrderFilter

	CandidateIDs  []int64
	HasCandidates bool
}

// buildOrderQuery assembles the list SQL. Every textual fragment that came
// from user input goes through a placeholder or escapeLike; nothing is
// interpolated raw.
func buildOrderQuery(in orderQueryInput) orderQuery {
	f := in.Filter

	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	statuses, includeTrash := expandStatuses(f.Statuses)
	if statuses != nil {
		where = append(where, fmt.Sprintf("status = ANY(%s)", arg(statuses)))
	} else if !includeTrash {
		// Trashed orders stay out of listings unless asked for.
		where = append(where, fmt.Sprintf("status <> %s", arg(domain.OrderStatusTrash.Prefixed())))
	}

	if f.Customer != nil {
		where = append(where, fmt.Sprintf("customer_id = %s", arg(*f.Customer)))
	}

	if in.HasCandidates {
		ids := in.CandidateIDs
		if len(ids) == 0 {
			// Sentinel id that never exists, so the page is empty.
			ids = []int64{0}
		}
		where = append(where, fmt.Sprintf("id = ANY(%s)", arg(ids)))
	}

	if f.Number != "" {
		where = append(where, fmt.Sprintf("CAST(id AS TEXT) LIKE %s", arg(escapeLike(f.Number)+"%")))
	}

	if f.CreatedSince != nil {
		where = append(where, fmt.Sprintf("date_created > %s", arg(*f.CreatedSince)))
	}
	if f.CreatedBefore != nil {
		where = append(where, fmt.Sprintf("date_created < %s", arg(*f.CreatedBefore)))
	}
	if f.UpdatedSince != nil {
		where = append(where, fmt.Sprintf("date_modified > %s", arg(*f.UpdatedSince)))
	}
	if f.UpdatedBefore != nil {
		where = append(where, fmt.Sprintf("date_modified < %s", arg(*f.UpdatedBefore)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	countSQL := "SELECT COUNT(*) FROM orders" + clause
	countArgs := make([]any, len(args))
	copy(countArgs, args)

	pageSQL := fmt.Sprintf(
		"SELECT id FROM orders%s ORDER BY date_created DESC, id DESC LIMIT %s OFFSET %s",
		clause, arg(f.Limit()), arg(f.Offset()),
	)

	return orderQuery{
		PageSQL:   pageSQL,
		CountSQL:  countSQL,
		PageArgs:  args,
		CountArgs: countArgs,
	}
}

// expandStatuses maps requested status tokens to their storage form. The
// literal "any" short-circuits to no status filter even when combined with
// other tokens. Known statuses are prefixed; unknown tokens pass through
// unprefixed so custom statuses keep working. The second return reports
// whether trashed orders were explicitly requested.
func expandStatuses(tokens []string) ([]string, bool) {
	includeTrash := false
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token == "" {
			continue
		}
		if token == "any" {
			return nil, true
		}
		status := domain.ParseOrderStatus(token)
		if status == domain.OrderStatusTrash {
			includeTrash = true
		}
		if status.Known() {
			out = append(out, status.Prefixed())
		} else {
			out = append(out, string(status))
		}
	}
	if len(out) == 0 {
		return nil, includeTrash
	}
	return out, includeTrash
}

// pageTotal derives the total match count from a short page when the page
// itself pins it down: a page that ends before the limit marks the end of
// the result set. An empty page past the first says nothing about the total
// (the request may simply have paged beyond the data), so the count query
// must run. ok reports whether the derivation holds.
func pageTotal(offset, pageLen, limit int) (total int64, ok bool) {
	if pageLen >= limit {
		return 0, false
	}
	if pageLen == 0 && offset > 0 {
		return 0, false
	}
	return int64(offset + pageLen), true
}

// escapeLike escapes LIKE metacharacters so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
