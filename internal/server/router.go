package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kicadcollab/snapview/internal/store"
)

// Bundle file names the snapshot generator writes into the snapshot
// directory.
const (
	SchematicFileName  = "schematic.svg"
	ComponentsFileName = "components.json"
	CommentsFileName   = "comments.json"
)

var errMissingSnapshotDir = errors.New("snapshot directory dependency required")

// Dependencies carries the handler's collaborators.
type Dependencies struct {
	SnapshotDir string
	Logger      *zap.Logger
}

// NewHTTPHandler builds the router serving a snapshot bundle directory: the
// schematic SVG, the component list, and the seeded comment list, at the
// well-known paths the store's load flows fetch.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.SnapshotDir == "" {
		return nil, errMissingSnapshotDir
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		snapshotDir: deps.SnapshotDir,
		logger:      logger,
	}

	router.GET("/healthz", handler.handleHealth)
	router.GET(store.SnapshotPath, handler.handleSchematic)
	router.GET(store.ComponentsPath, handler.handleComponents)
	router.GET(store.CommentsPath, handler.handleComments)

	return router, nil
}

type httpHandler struct {
	snapshotDir string
	logger      *zap.Logger
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *httpHandler) handleSchematic(c *gin.Context) {
	h.serveBundleFile(c, SchematicFileName, "image/svg+xml")
}

func (h *httpHandler) handleComponents(c *gin.Context) {
	h.serveBundleFile(c, ComponentsFileName, "application/json")
}

func (h *httpHandler) handleComments(c *gin.Context) {
	h.serveBundleFile(c, CommentsFileName, "application/json")
}

// serveBundleFile reads the file on every request so a regenerated snapshot
// shows up without restarting the server.
func (h *httpHandler) serveBundleFile(c *gin.Context, fileName, contentType string) {
	path := filepath.Join(h.snapshotDir, fileName)
	payload, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "bundle_file_missing"})
			return
		}
		h.logger.Error("failed to read bundle file", zap.String("path", path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "bundle_read_failed"})
		return
	}
	c.Data(http.StatusOK, contentType, payload)
}
