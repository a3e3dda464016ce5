package domain

import (
	"sort"
	"strings"
)

// Column is a board lane. Its id doubles as the value stored in Task.Status.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

// DefaultColumns is the four-lane layout seeded on first run and used as a
// fallback when an imported snapshot carries no columns.
func DefaultColumns() []Column {
	return []Column{
		{ID: "todo", Title: "To Do", Order: 0},
		{ID: "in-progress", Title: "In Progress", Order: 1},
		{ID: "review", Title: "Review", Order: 2},
		{ID: "done", Title: "Done", Order: 3},
	}
}

// SortColumns returns the columns ordered by their Order field.
func SortColumns(columns []Column) []Column {
	sorted := append([]Column(nil), columns...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	return sorted
}

// FirstColumn returns the column with the lowest order, the default landing
// lane for new and imported tasks.
func FirstColumn(columns []Column) (Column, bool) {
	if len(columns) == 0 {
		return Column{}, false
	}
	first := columns[0]
	for _, c := range columns[1:] {
		if c.Order < first.Order {
			first = c
		}
	}
	return first, true
}

// DoneColumn guesses the completion lane by a case-insensitive substring
// match on the title. Falls back to the first column when nothing matches,
// so callers always get a valid target when any column exists.
func DoneColumn(columns []Column) (Column, bool) {
	for _, c := range columns {
		if strings.Contains(strings.ToLower(c.Title), "done") {
			return c, true
		}
	}
	return FirstColumn(columns)
}

// ColumnByID looks a column up by id.
func ColumnByID(columns []Column, id string) (Column, bool) {
	for _, c := range columns {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}
