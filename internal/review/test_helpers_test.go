package review

import (
	"fmt"
	"testing"
	"time"
)

// sequenceIDProvider issues deterministic identifiers for tests.
type sequenceIDProvider struct {
	next int
}

func (p *sequenceIDProvider) NewID() (string, error) {
	p.next++
	return fmt.Sprintf("comment-%d", p.next), nil
}

// stepClock advances by a fixed step on every reading so consecutive
// mutations receive strictly increasing timestamps.
type stepClock struct {
	current time.Time
	step    time.Duration
}

func newStepClock(start time.Time) *stepClock {
	return &stepClock{current: start, step: time.Second}
}

func (c *stepClock) Now() time.Time {
	c.current = c.current.Add(c.step)
	return c.current
}

func newTestEngine(t *testing.T) (*Engine, *stepClock) {
	t.Helper()
	clock := newStepClock(time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC))
	engine := NewEngine(EngineConfig{
		Clock:      clock.Now,
		IDProvider: &sequenceIDProvider{},
	})
	return engine, clock
}

func mustAddComment(t *testing.T, engine *Engine, author, content, componentRef string) Comment {
	t.Helper()
	comment, err := engine.AddComment(author, content, componentRef)
	if err != nil {
		t.Fatalf("unexpected add comment error: %v", err)
	}
	return comment
}

func mustAddGeneralComment(t *testing.T, engine *Engine, author, content string) Comment {
	t.Helper()
	comment, err := engine.AddGeneralComment(author, content)
	if err != nil {
		t.Fatalf("unexpected add general comment error: %v", err)
	}
	return comment
}

func mustAddReply(t *testing.T, engine *Engine, author, parentID, content string) Comment {
	t.Helper()
	reply, err := engine.AddReply(author, parentID, content)
	if err != nil {
		t.Fatalf("unexpected add reply error: %v", err)
	}
	return reply
}
