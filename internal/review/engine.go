package review

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var noOpLogger = zap.NewNop()

const fieldCommentID = "comment_id"

// EngineConfig carries the injectable dependencies of the comment engine.
// Every field is optional; zero values fall back to wall-clock time, UUID
// identifiers, and a no-op logger.
type EngineConfig struct {
	Clock      func() time.Time
	IDProvider IDProvider
	Logger     *zap.Logger
}

// Engine owns the canonical ordered comment collection. Mutations read the
// current collection, compute its replacement, and swap it in one critical
// section; no mutation suspends mid-operation, so interleaved triggers can
// never observe a partially applied change.
type Engine struct {
	mu       sync.Mutex
	comments []Comment
	clock    func() time.Time
	ids      IDProvider
	logger   *zap.Logger
}

// NewEngine constructs an empty comment engine.
func NewEngine(cfg EngineConfig) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	ids := cfg.IDProvider
	if ids == nil {
		ids = NewUUIDProvider()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Engine{
		comments: make([]Comment, 0),
		clock:    clock,
		ids:      ids,
		logger:   logger,
	}
}

// ReplaceAll swaps in a freshly loaded collection, replacing whatever was
// held before. Used by the load flow; comments are stored in the given order.
func (e *Engine) ReplaceAll(comments []Comment) {
	replacement := make([]Comment, len(comments))
	copy(replacement, comments)

	e.mu.Lock()
	e.comments = replacement
	e.mu.Unlock()
}

// AddComment appends a new root comment anchored to a schematic component and
// returns it.
func (e *Engine) AddComment(author, content, componentRef string) (Comment, error) {
	return e.addRoot(author, content, &componentRef)
}

// AddGeneralComment appends a new root comment with no component anchor. The
// anchor field is absent on the stored comment, not empty, so general and
// anchored comments stay structurally distinguishable.
func (e *Engine) AddGeneralComment(author, content string) (Comment, error) {
	return e.addRoot(author, content, nil)
}

// AddReply appends a reply to an existing root comment. Replying to a reply
// is rejected; threads nest exactly one level.
func (e *Engine) AddReply(author, parentID, content string) (Comment, error) {
	trimmedAuthor := strings.TrimSpace(author)
	if trimmedAuthor == "" {
		return Comment{}, ErrAuthorRequired
	}
	trimmedContent := strings.TrimSpace(content)
	if trimmedContent == "" {
		return Comment{}, ErrContentRequired
	}

	identifier, err := e.ids.NewID()
	if err != nil {
		return Comment{}, fmt.Errorf("review: generate comment id: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	parent, found := e.lookupLocked(parentID)
	if !found {
		return Comment{}, ErrParentNotFound
	}
	if parent.IsReply() {
		return Comment{}, ErrReplyToReply
	}

	reply := Comment{
		ID:        identifier,
		Author:    trimmedAuthor,
		Content:   trimmedContent,
		CreatedAt: e.clock(),
		Status:    StatusOpen,
		ParentID:  &parentID,
	}
	e.comments = appendComment(e.comments, reply)
	return reply, nil
}

// Resolve marks the comment as resolved and stamps its update time. A missing
// id is a silent no-op: resolve buttons can race with a delete, and the stale
// control simply disappears on the next render.
func (e *Engine) Resolve(id string) {
	e.setStatus(id, StatusResolved)
}

// Reopen marks the comment as open again and stamps its update time. Missing
// ids are ignored, mirroring Resolve.
func (e *Engine) Reopen(id string) {
	e.setStatus(id, StatusOpen)
}

// Edit replaces the comment's content and stamps its update time. Every other
// field is preserved verbatim; roots and replies are treated identically.
func (e *Engine) Edit(id, newContent string) (Comment, error) {
	trimmedContent := strings.TrimSpace(newContent)
	if trimmedContent == "" {
		return Comment{}, ErrContentRequired
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	position := e.positionLocked(id)
	if position < 0 {
		return Comment{}, ErrCommentNotFound
	}

	replacement := make([]Comment, len(e.comments))
	copy(replacement, e.comments)

	updatedAt := e.clock()
	replacement[position].Content = trimmedContent
	replacement[position].UpdatedAt = &updatedAt

	e.comments = replacement
	return replacement[position], nil
}

// Delete removes the comment. Deleting a root also removes every reply whose
// parent is the deleted comment, in one atomic replacement of the collection;
// deleting a reply removes only that reply.
func (e *Engine) Delete(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	target, found := e.lookupLocked(id)
	if !found {
		return ErrCommentNotFound
	}

	cascade := !target.IsReply()
	replacement := make([]Comment, 0, len(e.comments))
	for _, comment := range e.comments {
		if comment.ID == id {
			continue
		}
		if cascade && comment.ParentID != nil && *comment.ParentID == id {
			continue
		}
		replacement = append(replacement, comment)
	}

	removed := len(e.comments) - len(replacement)
	e.comments = replacement
	e.logger.Debug("comment deleted",
		zap.String(fieldCommentID, id),
		zap.Int("removed", removed))
	return nil
}

func (e *Engine) addRoot(author, content string, componentRef *string) (Comment, error) {
	trimmedAuthor := strings.TrimSpace(author)
	if trimmedAuthor == "" {
		return Comment{}, ErrAuthorRequired
	}
	trimmedContent := strings.TrimSpace(content)
	if trimmedContent == "" {
		return Comment{}, ErrContentRequired
	}

	identifier, err := e.ids.NewID()
	if err != nil {
		return Comment{}, fmt.Errorf("review: generate comment id: %w", err)
	}

	comment := Comment{
		ID:        identifier,
		Author:    trimmedAuthor,
		Content:   trimmedContent,
		CreatedAt: e.clock(),
		Status:    StatusOpen,
	}
	if componentRef != nil {
		anchor := *componentRef
		comment.ComponentRef = &anchor
	}

	e.mu.Lock()
	e.comments = appendComment(e.comments, comment)
	e.mu.Unlock()
	return comment, nil
}

func (e *Engine) setStatus(id string, status Status) {
	e.mu.Lock()
	defer e.mu.Unlock()

	position := e.positionLocked(id)
	if position < 0 {
		e.logger.Debug("status change on missing comment", zap.String(fieldCommentID, id))
		return
	}

	replacement := make([]Comment, len(e.comments))
	copy(replacement, e.comments)

	updatedAt := e.clock()
	replacement[position].Status = status
	replacement[position].UpdatedAt = &updatedAt

	e.comments = replacement
}

func (e *Engine) lookupLocked(id string) (Comment, bool) {
	position := e.positionLocked(id)
	if position < 0 {
		return Comment{}, false
	}
	return e.comments[position], true
}

func (e *Engine) positionLocked(id string) int {
	for index, comment := range e.comments {
		if comment.ID == id {
			return index
		}
	}
	return -1
}

func appendComment(comments []Comment, comment Comment) []Comment {
	replacement := make([]Comment, len(comments), len(comments)+1)
	copy(replacement, comments)
	return append(replacement, comment)
}
