package task

import (
	"sort"
	"strings"
)

// SortField selects the attribute a task listing is ordered by.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByDueDate   SortField = "due_date"
	SortByPriority  SortField = "priority"
)

// Valid reports whether the sort field is one of the known values.
func (f SortField) Valid() bool {
	switch f {
	case SortByCreatedAt, SortByDueDate, SortByPriority:
		return true
	}
	return false
}

// SortOrder selects the direction of a task listing.
type SortOrder string

const (
	OrderAscending  SortOrder = "asc"
	OrderDescending SortOrder = "desc"
)

// Sort describes the requested ordering of a task listing.
type Sort struct {
	Field SortField
	Order SortOrder
}

// DefaultSort is the ordering used when the caller does not request one:
// most recently created first.
var DefaultSort = Sort{Field: SortByCreatedAt, Order: OrderDescending}

// NormalizeSort fills in defaults for missing or unknown sort parameters.
// An unknown field falls back to created_at; an unknown order falls back to
// descending.
func NormalizeSort(field, order string) Sort {
	s := Sort{Field: SortField(field), Order: SortOrder(order)}
	if !s.Field.Valid() {
		s.Field = DefaultSort.Field
	}
	if s.Order != OrderAscending && s.Order != OrderDescending {
		s.Order = OrderDescending
	}
	return s
}

// Filter restricts a task listing. Zero-value fields are ignored.
type Filter struct {
	Status   Status
	Priority Priority
	Search   string
}

// Matches reports whether the task satisfies every populated filter field.
// Search matches case-insensitively as a substring of title or description.
func (f Filter) Matches(t *Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}

// SortTasks orders tasks in place according to the given sort. Priority
// orders by rank (low < medium < high < urgent), not lexically. Tasks
// without a due date sort after all dated tasks regardless of direction.
// Ties fall back to created_at descending so output stays deterministic.
func SortTasks(tasks []*Task, s Sort) {
	less := func(a, b *Task) bool {
		switch s.Field {
		case SortByDueDate:
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				// fall through to tie-break
			case a.DueDate == nil:
				return false
			case b.DueDate == nil:
				return true
			case !a.DueDate.Equal(*b.DueDate):
				if s.Order == OrderAscending {
					return a.DueDate.Before(*b.DueDate)
				}
				return a.DueDate.After(*b.DueDate)
			}
		case SortByPriority:
			if a.Priority.Rank() != b.Priority.Rank() {
				if s.Order == OrderAscending {
					return a.Priority.Rank() < b.Priority.Rank()
				}
				return a.Priority.Rank() > b.Priority.Rank()
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				if s.Order == OrderAscending {
					return a.CreatedAt.Before(b.CreatedAt)
				}
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.CreatedAt.After(b.CreatedAt)
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		return less(tasks[i], tasks[j])
	})
}
