// Package review implements the threaded comment domain: an in-memory
// ordered collection with create/reply/edit/delete/resolve/reopen operations
// and the derived views the UI renders. The engine is the single writer; all
// mutations replace the backing collection atomically.
package review

import (
	"errors"
	"time"
)

// Status tracks the review state of a comment thread.
type Status string

const (
	// StatusOpen marks a comment awaiting resolution.
	StatusOpen Status = "open"
	// StatusResolved marks a comment whose concern has been addressed.
	StatusResolved Status = "resolved"
)

// StatusFilter selects which root comments a filtered view includes.
type StatusFilter string

const (
	// FilterAll includes every root comment.
	FilterAll StatusFilter = "all"
	// FilterOpen includes only open root comments.
	FilterOpen StatusFilter = "open"
	// FilterResolved includes only resolved root comments.
	FilterResolved StatusFilter = "resolved"
)

var (
	// ErrAuthorRequired indicates no author identity was available for a mutation.
	ErrAuthorRequired = errors.New("review: author name required")
	// ErrContentRequired indicates the supplied content was empty after trimming.
	ErrContentRequired = errors.New("review: comment content is required")
	// ErrParentNotFound indicates a reply referenced a missing parent comment.
	ErrParentNotFound = errors.New("review: parent comment not found")
	// ErrReplyToReply indicates a reply targeted another reply; threads nest one level only.
	ErrReplyToReply = errors.New("review: can only reply to root comments")
	// ErrCommentNotFound indicates the referenced comment is not in the collection.
	ErrCommentNotFound = errors.New("review: comment not found")
)

// Comment is one review annotation. ComponentRef is absent (nil) for general
// comments that are not anchored to any schematic component; ParentID is
// present only on replies and always references a root comment.
type Comment struct {
	ID           string     `json:"id" validate:"required"`
	Author       string     `json:"author" validate:"required"`
	Content      string     `json:"content" validate:"required"`
	CreatedAt    time.Time  `json:"createdAt" validate:"required"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
	ComponentRef *string    `json:"componentRef,omitempty"`
	Status       Status     `json:"status" validate:"required,oneof=open resolved"`
	ParentID     *string    `json:"parentId,omitempty"`
}

// IsReply reports whether the comment is a reply to a root comment.
func (c Comment) IsReply() bool {
	return c.ParentID != nil
}

// AnchorRef returns the component ref the comment is anchored to, if any.
func (c Comment) AnchorRef() (string, bool) {
	if c.ComponentRef == nil {
		return "", false
	}
	return *c.ComponentRef, true
}

// Counts aggregates root comment totals per status. Replies never contribute.
type Counts struct {
	Total    int
	Open     int
	Resolved int
}
