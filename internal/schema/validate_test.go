package schema

import (
	"errors"
	"strings"
	"testing"

	"github.com/kicadcollab/snapview/internal/review"
)

func TestDecodeComponentsAcceptsValidPayload(t *testing.T) {
	payload := []byte(`[
		{"ref": "R1", "value": "10k", "footprint": "R_0402", "posX": 200, "posY": 150},
		{"ref": "U7"}
	]`)

	components, err := DecodeComponents(payload)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(components))
	}
	if components[0].PosX == nil || *components[0].PosX != 200 {
		t.Fatalf("expected posX 200, got %v", components[0].PosX)
	}
	if components[1].PosX != nil {
		t.Fatalf("absent position must decode as nil")
	}
}

func TestDecodeComponentsReportsFieldPath(t *testing.T) {
	payload := []byte(`[{"ref": "R1"}, {"value": "missing ref"}]`)

	_, err := DecodeComponents(payload)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validationErr.Issues) != 1 {
		t.Fatalf("expected one issue, got %v", validationErr.Issues)
	}
	if !strings.Contains(validationErr.Issues[0], "components[1].ref") {
		t.Fatalf("issue should carry the element path, got %q", validationErr.Issues[0])
	}
	if !strings.Contains(err.Error(), "schema validation failed") {
		t.Fatalf("formatted message missing prefix: %q", err.Error())
	}
}

func TestDecodeComponentsRejectsMalformedJSON(t *testing.T) {
	if _, err := DecodeComponents([]byte(`{"not": "an array"`)); err == nil {
		t.Fatalf("expected decode error for malformed JSON")
	}
}

func TestDecodeCommentsAcceptsValidPayload(t *testing.T) {
	payload := []byte(`[
		{"id": "r1", "author": "alice", "content": "Check value", "createdAt": "2026-02-10T09:00:00Z",
		 "componentRef": "C1", "status": "open"},
		{"id": "r2", "author": "bob", "content": "Looks fine", "createdAt": "2026-02-10T09:05:00Z",
		 "status": "resolved", "parentId": "r1"}
	]`)

	comments, err := DecodeComments(payload)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if anchor, ok := comments[0].AnchorRef(); !ok || anchor != "C1" {
		t.Fatalf("expected anchored comment, got %v", comments[0].ComponentRef)
	}
	if !comments[1].IsReply() {
		t.Fatalf("expected second comment to decode as a reply")
	}
	if comments[1].Status != review.StatusResolved {
		t.Fatalf("unexpected status %q", comments[1].Status)
	}
}

func TestDecodeCommentsRejectsUnknownStatus(t *testing.T) {
	payload := []byte(`[
		{"id": "r1", "author": "alice", "content": "x", "createdAt": "2026-02-10T09:00:00Z", "status": "pending"}
	]`)

	_, err := DecodeComments(payload)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if !strings.Contains(validationErr.Issues[0], "comments[0].status") {
		t.Fatalf("issue should name the status field, got %q", validationErr.Issues[0])
	}
	if !strings.Contains(validationErr.Issues[0], "open") {
		t.Fatalf("issue should list the allowed statuses, got %q", validationErr.Issues[0])
	}
}

func TestDecodeCommentsCollectsAllIssues(t *testing.T) {
	payload := []byte(`[
		{"id": "", "author": "", "content": "x", "createdAt": "2026-02-10T09:00:00Z", "status": "open"}
	]`)

	_, err := DecodeComments(payload)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validationErr.Issues) != 2 {
		t.Fatalf("expected issues for both empty fields, got %v", validationErr.Issues)
	}
}
