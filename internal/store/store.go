// Package store is the single owner of all viewer state: the fetched SVG
// markup, the component list and its derived ref index, the threaded comment
// collection, viewport transforms, and hover/selection. Consumers read
// through accessors and mutate only through the store's operations; state
// changes are announced through the dispatcher.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"github.com/kicadcollab/snapview/internal/identity"
	"github.com/kicadcollab/snapview/internal/review"
	"github.com/kicadcollab/snapview/internal/schema"
	"github.com/kicadcollab/snapview/internal/schematic"
	"github.com/kicadcollab/snapview/internal/viewport"
)

// Well-known snapshot bundle paths, shared with internal/server.
const (
	SnapshotPath   = "/api/schematic"
	ComponentsPath = "/api/components"
	CommentsPath   = "/api/comments"
)

// DefaultSidePanelWidth is the fixed width of the comment side panel in
// pixels; centering math subtracts it from the available viewport width.
const DefaultSidePanelWidth = 320

var (
	// ErrLoadInProgress reports that the same flow is already fetching. This
	// is an expected, non-exceptional outcome of rapid re-invocation.
	ErrLoadInProgress = errors.New("store: load already in progress")

	errMissingBaseURL = errors.New("store: base url is required")

	noOpLogger = zap.NewNop()
)

// Config carries the store dependencies. BaseURL is required; everything
// else has a usable default.
type Config struct {
	BaseURL        string
	HTTPClient     *http.Client
	Identity       *identity.Service
	Clock          func() time.Time
	IDProvider     review.IDProvider
	Logger         *zap.Logger
	SidePanelWidth float64
}

type loadFlow struct {
	loading bool
	lastErr error
}

// FlowStatus is a read-only snapshot of one load flow's state machine.
type FlowStatus struct {
	Loading bool
	Err     error
}

// Store holds all viewer state behind one mutex. Load flows perform I/O
// outside the lock and commit results in a single critical section; comment
// and viewport mutations never suspend, so interleaved triggers always
// observe fully applied states.
type Store struct {
	mu     sync.Mutex
	logger *zap.Logger

	baseURL string
	client  *http.Client

	identity       *identity.Service
	reviewEngine   *review.Engine
	viewportEngine *viewport.Engine
	dispatcher     *Dispatcher
	sidePanelWidth float64

	svgMarkup   string
	initialized bool
	svgRefs     map[string]*etree.Element
	components  []schematic.Component
	index       schematic.Index

	hoveredRef  string
	selectedRef string

	snapshotFlow   loadFlow
	componentsFlow loadFlow
	commentsFlow   loadFlow
}

// New constructs a store rooted at the given snapshot base URL.
func New(cfg Config) (*Store, error) {
	if cfg.BaseURL == "" {
		return nil, errMissingBaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	authorIdentity := cfg.Identity
	if authorIdentity == nil {
		authorIdentity = identity.NewService(identity.ServiceConfig{Logger: logger})
	}
	panelWidth := cfg.SidePanelWidth
	if panelWidth == 0 {
		panelWidth = DefaultSidePanelWidth
	}

	return &Store{
		logger:  logger,
		baseURL: cfg.BaseURL,
		client:  client,

		identity: authorIdentity,
		reviewEngine: review.NewEngine(review.EngineConfig{
			Clock:      cfg.Clock,
			IDProvider: cfg.IDProvider,
			Logger:     logger,
		}),
		viewportEngine: viewport.NewEngine(),
		dispatcher:     NewDispatcher(),
		sidePanelWidth: panelWidth,

		svgRefs: make(map[string]*etree.Element),
		index:   schematic.BuildIndex(nil, nil),
	}, nil
}

// Review exposes the comment selectors. Mutations go through the store's
// own comment operations so author identity and change events are applied.
func (s *Store) Review() *review.Engine {
	return s.reviewEngine
}

// Viewport exposes the pan/zoom engine.
func (s *Store) Viewport() *viewport.Engine {
	return s.viewportEngine
}

// Subscribe registers a listener for store change events.
func (s *Store) Subscribe(ctx context.Context) (<-chan Event, func()) {
	return s.dispatcher.Subscribe(ctx)
}

// LoadSnapshot fetches the schematic SVG, extracts its ref markers, and
// rebuilds the component index. The first successful load flips the
// one-time initialized flag.
func (s *Store) LoadSnapshot(ctx context.Context) error {
	if err := s.beginLoad(&s.snapshotFlow); err != nil {
		return err
	}

	body, fetchErr := s.fetch(ctx, SnapshotPath)

	s.mu.Lock()
	s.snapshotFlow.loading = false
	if fetchErr != nil {
		s.snapshotFlow.lastErr = fetchErr
		s.mu.Unlock()
		s.logger.Warn("snapshot load failed", zap.Error(fetchErr))
		return fetchErr
	}

	s.svgMarkup = string(body)
	s.initialized = true
	s.svgRefs = schematic.ExtractRefs(s.svgMarkup)
	s.index = schematic.BuildIndex(s.components, s.svgRefs)
	s.snapshotFlow.lastErr = nil
	warnings := s.index.Warnings
	s.mu.Unlock()

	s.logIndexWarnings(warnings)
	s.dispatcher.Publish(EventSnapshotLoaded)
	return nil
}

// LoadComponents fetches and validates the component list, then rebuilds
// the index against the current SVG refs.
func (s *Store) LoadComponents(ctx context.Context) error {
	if err := s.beginLoad(&s.componentsFlow); err != nil {
		return err
	}

	body, fetchErr := s.fetch(ctx, ComponentsPath)
	var components []schematic.Component
	if fetchErr == nil {
		components, fetchErr = schema.DecodeComponents(body)
	}

	s.mu.Lock()
	s.componentsFlow.loading = false
	if fetchErr != nil {
		s.componentsFlow.lastErr = fetchErr
		s.mu.Unlock()
		s.logger.Warn("component load failed", zap.Error(fetchErr))
		return fetchErr
	}

	s.components = components
	s.index = schematic.BuildIndex(s.components, s.svgRefs)
	s.componentsFlow.lastErr = nil
	warnings := s.index.Warnings
	s.mu.Unlock()

	s.logIndexWarnings(warnings)
	s.dispatcher.Publish(EventComponentsLoaded)
	return nil
}

// LoadComments fetches and validates the comment list and replaces the
// comment collection wholesale.
func (s *Store) LoadComments(ctx context.Context) error {
	if err := s.beginLoad(&s.commentsFlow); err != nil {
		return err
	}

	body, fetchErr := s.fetch(ctx, CommentsPath)
	var comments []review.Comment
	if fetchErr == nil {
		comments, fetchErr = schema.DecodeComments(body)
	}

	s.mu.Lock()
	s.commentsFlow.loading = false
	if fetchErr != nil {
		s.commentsFlow.lastErr = fetchErr
		s.mu.Unlock()
		s.logger.Warn("comment load failed", zap.Error(fetchErr))
		return fetchErr
	}
	s.commentsFlow.lastErr = nil
	s.mu.Unlock()

	s.reviewEngine.ReplaceAll(comments)
	s.dispatcher.Publish(EventCommentsChanged)
	return nil
}

// SnapshotStatus reports the SVG load flow state.
func (s *Store) SnapshotStatus() FlowStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FlowStatus{Loading: s.snapshotFlow.loading, Err: s.snapshotFlow.lastErr}
}

// ComponentsStatus reports the component load flow state.
func (s *Store) ComponentsStatus() FlowStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FlowStatus{Loading: s.componentsFlow.loading, Err: s.componentsFlow.lastErr}
}

// CommentsStatus reports the comment load flow state.
func (s *Store) CommentsStatus() FlowStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return FlowStatus{Loading: s.commentsFlow.loading, Err: s.commentsFlow.lastErr}
}

// SVG returns the raw snapshot markup.
func (s *Store) SVG() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svgMarkup
}

// Initialized reports whether the snapshot has loaded at least once.
func (s *Store) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Components returns a copy of the loaded component list.
func (s *Store) Components() []schematic.Component {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]schematic.Component, len(s.components))
	copy(snapshot, s.components)
	return snapshot
}

// Index returns the current ref index. The index is replaced, never mutated,
// so the returned value is safe to read concurrently.
func (s *Store) Index() schematic.Index {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Store) beginLoad(flow *loadFlow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if flow.loading {
		return ErrLoadInProgress
	}
	flow.loading = true
	return nil
}

func (s *Store) fetch(ctx context.Context, path string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("store: build request for %s: %w", path, err)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("store: request %s: %w", path, err)
	}
	defer response.Body.Close() //nolint:errcheck

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("store: request %s failed with status %d", path, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("store: read %s response: %w", path, err)
	}
	return body, nil
}

func (s *Store) logIndexWarnings(warnings []string) {
	for _, warning := range warnings {
		s.logger.Warn("component index warning", zap.String("detail", warning))
	}
}
