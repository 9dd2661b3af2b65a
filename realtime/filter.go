package realtime

import (
	"fmt"
	"strings"
)

// Filter selects rows of one table whose Column equals Value.
// An empty Column matches every row of the table.
type Filter struct {
	Table  Table
	Column string
	Value  string
}

func Eq(table Table, column, value string) Filter {
	return Filter{Table: table, Column: column, Value: value}
}

// ParseFilter accepts the "column=eq.value" form used on the wire.
func ParseFilter(table Table, expr string) (Filter, error) {
	f := Filter{Table: table}
	switch table {
	case TableNotifications, TableMessages, TableOrders:
	default:
		return f, fmt.Errorf("unknown table %q", table)
	}
	if expr == "" {
		return f, nil
	}
	col, rest, ok := strings.Cut(expr, "=")
	if !ok || !strings.HasPrefix(rest, "eq.") || col == "" {
		return f, fmt.Errorf("unsupported filter %q", expr)
	}
	f.Column, f.Value = col, strings.TrimPrefix(rest, "eq.")
	return f, nil
}

func (f Filter) String() string {
	if f.Column == "" {
		return string(f.Table)
	}
	return fmt.Sprintf("%s:%s=eq.%s", f.Table, f.Column, f.Value)
}

func (f Filter) Match(ev Event) bool {
	if ev.Payload == nil || ev.Payload.Table() != f.Table {
		return false
	}
	if f.Column == "" {
		return true
	}
	v, ok := ev.Payload.field(f.Column)
	return ok && v == f.Value
}
