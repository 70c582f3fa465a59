package integration_test

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kicadcollab/snapview/internal/identity"
	"github.com/kicadcollab/snapview/internal/review"
	"github.com/kicadcollab/snapview/internal/server"
	"github.com/kicadcollab/snapview/internal/store"
	"github.com/kicadcollab/snapview/internal/viewport"
)

const (
	bundleSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 400 300">
  <g data-ref="C1"><rect x="190" y="140" width="20" height="20"/></g>
  <g data-ref="R4"><rect x="40" y="60" width="20" height="8"/></g>
</svg>`
	bundleComponents = `[
  {"ref": "C1", "value": "100n", "footprint": "C_0402", "posX": 200, "posY": 150},
  {"ref": "R4", "value": "4k7"},
  {"ref": "U2", "value": "unplaced"}
]`
	bundleComments = `[
  {"id": "seed-1", "author": "alice", "content": "Check decoupling", "createdAt": "2026-02-10T09:00:00Z",
   "componentRef": "C1", "status": "open"}
]`
)

func TestSnapshotReviewFlow(testContext *testing.T) {
	gin.SetMode(gin.TestMode)

	bundleDir := testContext.TempDir()
	writeBundleFile(testContext, bundleDir, server.SchematicFileName, bundleSVG)
	writeBundleFile(testContext, bundleDir, server.ComponentsFileName, bundleComponents)
	writeBundleFile(testContext, bundleDir, server.CommentsFileName, bundleComments)

	handler, err := server.NewHTTPHandler(server.Dependencies{
		SnapshotDir: bundleDir,
		Logger:      zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build handler: %v", err)
	}
	bundleServer := httptest.NewServer(handler)
	defer bundleServer.Close()

	db, err := gorm.Open(sqlite.Open("file:snapshot_review?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		testContext.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&identity.Preference{}); err != nil {
		testContext.Fatalf("failed to migrate: %v", err)
	}
	identityService := identity.NewService(identity.ServiceConfig{Database: db, Logger: zap.NewNop()})
	identityService.SetAuthorName("bob")

	viewerStore, err := store.New(store.Config{
		BaseURL:  bundleServer.URL,
		Identity: identityService,
		Logger:   zap.NewNop(),
	})
	if err != nil {
		testContext.Fatalf("failed to build store: %v", err)
	}

	ctx := context.Background()
	if err := viewerStore.LoadSnapshot(ctx); err != nil {
		testContext.Fatalf("snapshot load failed: %v", err)
	}
	if err := viewerStore.LoadComponents(ctx); err != nil {
		testContext.Fatalf("component load failed: %v", err)
	}
	if err := viewerStore.LoadComments(ctx); err != nil {
		testContext.Fatalf("comment load failed: %v", err)
	}

	index := viewerStore.Index()
	if len(index.ByRef) != 3 {
		testContext.Fatalf("expected 3 indexed components, got %d", len(index.ByRef))
	}
	if len(index.Warnings) != 1 {
		testContext.Fatalf("expected one warning for the unplaced component, got %v", index.Warnings)
	}

	// Reply to the seeded thread, resolve it, and verify the derived views.
	reply, err := viewerStore.AddReply("seed-1", "Fixed in rev B")
	if err != nil {
		testContext.Fatalf("reply failed: %v", err)
	}
	if reply.Author != "bob" {
		testContext.Fatalf("expected persisted identity as reply author, got %q", reply.Author)
	}

	viewerStore.ResolveComment("seed-1")
	counts := viewerStore.Review().CountByStatus()
	if counts.Total != 1 || counts.Resolved != 1 || counts.Open != 0 {
		testContext.Fatalf("unexpected counts after resolve: %+v", counts)
	}
	if len(viewerStore.Review().RootsByStatus(review.FilterResolved)) != 1 {
		testContext.Fatalf("resolved thread missing from filtered view")
	}

	// Activating the anchored comment selects and centers its component.
	viewerStore.FocusComment("seed-1", viewport.Size{Width: 1000, Height: 800})
	if viewerStore.SelectedRef() != "C1" {
		testContext.Fatalf("expected C1 selected, got %q", viewerStore.SelectedRef())
	}
	expectedPan := viewport.Point{X: (1000-320)/2.0 - 200, Y: 800/2.0 - 150}
	if viewerStore.Viewport().Pan() != expectedPan {
		testContext.Fatalf("expected pan %+v, got %+v", expectedPan, viewerStore.Viewport().Pan())
	}

	// Cascade delete removes the thread and its reply together.
	if err := viewerStore.DeleteComment("seed-1"); err != nil {
		testContext.Fatalf("delete failed: %v", err)
	}
	if viewerStore.Review().Len() != 0 {
		testContext.Fatalf("expected empty collection after cascade delete, got %d", viewerStore.Review().Len())
	}
}

func writeBundleFile(testContext *testing.T, dir, name, content string) {
	testContext.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		testContext.Fatalf("failed to write %s: %v", name, err)
	}
}
