package controller

import (
	"net/http"
	"strings"

	"github.com/bereanapp/berean/internal/logger"
	"github.com/bereanapp/berean/internal/registry"
	"github.com/bereanapp/berean/internal/resource"
	"github.com/gin-gonic/gin"
)

// GatewayController serves every app resource through the offline cache
// engine: the request is intercepted, routed to a retrieval strategy and
// answered from cache or network.
type GatewayController struct {
	registration *registry.Registration
}

// NewGatewayController creates a new GatewayController.
func NewGatewayController(reg *registry.Registration) *GatewayController {
	return &GatewayController{registration: reg}
}

// Serve answers one intercepted request.
func (gc *GatewayController) Serve(c *gin.Context) {
	if c.Request.Method != http.MethodGet {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "only GET is served offline"})
		return
	}

	req := &resource.Request{
		Method: c.Request.Method,
		URL:    c.Request.URL.RequestURI(),
		Mode:   requestMode(c.Request),
	}

	res, err := gc.registration.HandleFetch(c.Request.Context(), req)
	if err != nil {
		logger.WithComponent("api").Warnf("fetch %s failed: %v", req.URL, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "resource unavailable"})
		return
	}

	for key, values := range res.Header {
		for _, v := range values {
			c.Writer.Header().Add(key, v)
		}
	}
	c.Data(res.Status, res.Header.Get("Content-Type"), res.Body)
}

// requestMode classifies the request purpose. Browsers mark navigations
// with Sec-Fetch-Mode; an Accept preferring HTML is the fallback signal.
func requestMode(r *http.Request) resource.Mode {
	if r.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return resource.ModeNavigate
	}
	if r.Header.Get("Sec-Fetch-Mode") == "" && strings.Contains(r.Header.Get("Accept"), "text/html") {
		return resource.ModeNavigate
	}
	return resource.ModeResource
}
