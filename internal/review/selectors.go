package review

import "sort"

// All returns a defensive copy of the full collection in insertion order.
func (e *Engine) All() []Comment {
	e.mu.Lock()
	defer e.mu.Unlock()

	snapshot := make([]Comment, len(e.comments))
	copy(snapshot, e.comments)
	return snapshot
}

// Len returns the total number of comments, replies included.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.comments)
}

// Get returns the comment with the given id, if present.
func (e *Engine) Get(id string) (Comment, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lookupLocked(id)
}

// Roots returns the root comments ordered by creation time ascending.
func (e *Engine) Roots() []Comment {
	return e.filtered(func(comment Comment) bool {
		return !comment.IsReply()
	})
}

// Replies returns the replies of the given root ordered by creation time
// ascending.
func (e *Engine) Replies(parentID string) []Comment {
	return e.filtered(func(comment Comment) bool {
		return comment.ParentID != nil && *comment.ParentID == parentID
	})
}

// RootsByStatus returns root comments matching the filter, ordered by
// creation time ascending. Replies are never filtered on their own status:
// a reply is visible exactly when its root is. Unknown filters behave as
// FilterAll.
func (e *Engine) RootsByStatus(filter StatusFilter) []Comment {
	return e.filtered(func(comment Comment) bool {
		if comment.IsReply() {
			return false
		}
		switch filter {
		case FilterOpen:
			return comment.Status == StatusOpen
		case FilterResolved:
			return comment.Status == StatusResolved
		default:
			return true
		}
	})
}

// CountByStatus aggregates totals over root comments only.
func (e *Engine) CountByStatus() Counts {
	e.mu.Lock()
	defer e.mu.Unlock()

	counts := Counts{}
	for _, comment := range e.comments {
		if comment.IsReply() {
			continue
		}
		counts.Total++
		if comment.Status == StatusResolved {
			counts.Resolved++
		} else {
			counts.Open++
		}
	}
	return counts
}

func (e *Engine) filtered(include func(Comment) bool) []Comment {
	e.mu.Lock()
	selected := make([]Comment, 0, len(e.comments))
	for _, comment := range e.comments {
		if include(comment) {
			selected = append(selected, comment)
		}
	}
	e.mu.Unlock()

	sort.SliceStable(selected, func(left, right int) bool {
		return selected[left].CreatedAt.Before(selected[right].CreatedAt)
	})
	return selected
}
