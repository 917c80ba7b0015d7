// Package internal holds SQL helpers shared by the postgres and sqlite record repos.
package internal

import (
	"fmt"
	"strings"

	"github.com/sagarc03/quire"
)

// Columns is the select list every repo scans into a FileRecord, in scan order.
const Columns = "id, workspace_id, owner_id, type, name, created_at, updated_at"

// Placeholder renders the n-th (1-based) bind parameter for a driver.
type Placeholder func(n int) string

// Dollar renders postgres style placeholders ($1, $2, ...).
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// Question renders sqlite style placeholders.
func Question(int) string { return "?" }

// ListWhere builds the WHERE clause for a scoped listing. The returned clause has no
// leading WHERE keyword. Owner and workspace are always filtered; type only when set.
func ListWhere(q quire.ListQuery, ph Placeholder) (string, []any) {
	conds := []string{
		"workspace_id = " + ph(1),
		"owner_id = " + ph(2),
	}
	args := []any{q.WorkspaceID, q.OwnerID}

	if q.Type != "" {
		args = append(args, string(q.Type))
		conds = append(conds, "type = "+ph(len(args)))
	}

	return strings.Join(conds, " AND "), args
}

// ListPage appends the ordering and window to a ListWhere clause. Newest first; id breaks ties
// so pages are stable when rows share a timestamp.
func ListPage(where string, args []any, q quire.ListQuery, ph Placeholder) (string, []any) {
	args = append(args, q.Limit, q.Offset)
	clause := fmt.Sprintf("%s ORDER BY created_at DESC, id DESC LIMIT %s OFFSET %s",
		where, ph(len(args)-1), ph(len(args)))
	return clause, args
}
