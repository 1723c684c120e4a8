package controller

import (
	"encoding/json"
	"net/http"

	"github.com/bereanapp/berean/internal/logger"
	"github.com/bereanapp/berean/internal/manifest"
	"github.com/gin-gonic/gin"
)

// ManifestController serves the web app manifest. The manifest must carry
// its own media type and stay revalidatable so installability metadata is
// never pinned by intermediate caches.
type ManifestController struct {
	path string
}

// NewManifestController creates a controller serving the manifest at path.
func NewManifestController(path string) *ManifestController {
	return &ManifestController{path: path}
}

// Get validates and returns the web app manifest.
func (mc *ManifestController) Get(c *gin.Context) {
	m, err := manifest.LoadWebManifest(mc.path)
	if err != nil {
		logger.WithComponent("api").Errorf("web manifest unavailable: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "manifest unavailable"})
		return
	}

	payload, err := json.Marshal(m)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "manifest unavailable"})
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/manifest+json", payload)
}
