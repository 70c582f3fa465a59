package store

import (
	"github.com/kicadcollab/snapview/internal/review"
	"github.com/kicadcollab/snapview/internal/viewport"
)

// SetHoveredRef records the component currently under the pointer. Hover is
// driven by container-level event delegation and changes at pointer speed,
// so it deliberately publishes no event. Refs are not validated against the
// index; an unknown ref simply produces no highlight.
func (s *Store) SetHoveredRef(ref string) {
	s.mu.Lock()
	s.hoveredRef = ref
	s.mu.Unlock()
}

// ClearHoveredRef clears the hover state.
func (s *Store) ClearHoveredRef() {
	s.SetHoveredRef("")
}

// HoveredRef returns the hovered component ref, or "" when none.
func (s *Store) HoveredRef() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hoveredRef
}

// SetSelectedRef records the selected component. Selection is orthogonal to
// hover and is likewise not validated against the index.
func (s *Store) SetSelectedRef(ref string) {
	s.mu.Lock()
	changed := s.selectedRef != ref
	s.selectedRef = ref
	s.mu.Unlock()
	if changed {
		s.dispatcher.Publish(EventSelectionChanged)
	}
}

// ClearSelectedRef clears the selection.
func (s *Store) ClearSelectedRef() {
	s.SetSelectedRef("")
}

// SelectedRef returns the selected component ref, or "" when none.
func (s *Store) SelectedRef() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedRef
}

// FocusComment handles activation of a comment in the side panel. Anchored
// comments select their component and, when the ref resolves to a component
// with known position, recenter the viewport on it; the centering width
// excludes the fixed side panel. Unresolvable refs still select but skip the
// pan. General comments change nothing.
func (s *Store) FocusComment(id string, view viewport.Size) {
	comment, found := s.reviewEngine.Get(id)
	if !found {
		return
	}
	ref, anchored := comment.AnchorRef()
	if !anchored {
		return
	}

	s.SetSelectedRef(ref)

	s.mu.Lock()
	index := s.index
	panelWidth := s.sidePanelWidth
	s.mu.Unlock()

	component, resolved := index.Lookup(ref)
	if !resolved || !component.HasPosition() {
		return
	}

	availableWidth := view.Width - panelWidth
	if availableWidth < 0 {
		availableWidth = 0
	}
	s.viewportEngine.PanTo(
		viewport.Point{X: *component.PosX, Y: *component.PosY},
		viewport.Size{Width: availableWidth, Height: view.Height},
	)
	s.dispatcher.Publish(EventViewportChanged)
}

// AuthorName returns the persisted reviewer display name, or "" when unset.
func (s *Store) AuthorName() string {
	return s.identity.AuthorName()
}

// SetAuthorName persists the reviewer display name.
func (s *Store) SetAuthorName(name string) {
	s.identity.SetAuthorName(name)
}

// AddComment creates a root comment anchored to a component, authored by the
// current reviewer identity.
func (s *Store) AddComment(content, componentRef string) (review.Comment, error) {
	comment, err := s.reviewEngine.AddComment(s.identity.AuthorName(), content, componentRef)
	if err != nil {
		return review.Comment{}, err
	}
	s.dispatcher.Publish(EventCommentsChanged)
	return comment, nil
}

// AddGeneralComment creates an unanchored root comment.
func (s *Store) AddGeneralComment(content string) (review.Comment, error) {
	comment, err := s.reviewEngine.AddGeneralComment(s.identity.AuthorName(), content)
	if err != nil {
		return review.Comment{}, err
	}
	s.dispatcher.Publish(EventCommentsChanged)
	return comment, nil
}

// AddReply creates a reply under an existing root comment.
func (s *Store) AddReply(parentID, content string) (review.Comment, error) {
	reply, err := s.reviewEngine.AddReply(s.identity.AuthorName(), parentID, content)
	if err != nil {
		return review.Comment{}, err
	}
	s.dispatcher.Publish(EventCommentsChanged)
	return reply, nil
}

// ResolveComment marks a comment resolved; missing ids are ignored.
func (s *Store) ResolveComment(id string) {
	s.reviewEngine.Resolve(id)
	s.dispatcher.Publish(EventCommentsChanged)
}

// ReopenComment marks a comment open again; missing ids are ignored.
func (s *Store) ReopenComment(id string) {
	s.reviewEngine.Reopen(id)
	s.dispatcher.Publish(EventCommentsChanged)
}

// EditComment replaces a comment's content.
func (s *Store) EditComment(id, content string) (review.Comment, error) {
	comment, err := s.reviewEngine.Edit(id, content)
	if err != nil {
		return review.Comment{}, err
	}
	s.dispatcher.Publish(EventCommentsChanged)
	return comment, nil
}

// DeleteComment removes a comment, cascading to replies when it is a root.
func (s *Store) DeleteComment(id string) error {
	if err := s.reviewEngine.Delete(id); err != nil {
		return err
	}
	s.dispatcher.Publish(EventCommentsChanged)
	return nil
}
