package controller

import (
	"net/http"

	"github.com/bereanapp/berean/internal/registry"
	"github.com/bereanapp/berean/internal/worker"
	"github.com/gin-gonic/gin"
)

// StatusResponse describes the offline engine for the frontend.
type StatusResponse struct {
	State          string `json:"state"`
	Version        string `json:"version"`
	CacheName      string `json:"cacheName"`
	CachedEntries  int    `json:"cachedEntries"`
	WaitingVersion string `json:"waitingVersion,omitempty"`
}

// WorkerController exposes the engine lifecycle to the page: status,
// manual update checks and the skip-waiting signal.
type WorkerController struct {
	registration *registry.Registration
}

// NewWorkerController creates a new WorkerController.
func NewWorkerController(reg *registry.Registration) *WorkerController {
	return &WorkerController{registration: reg}
}

// Status returns the controller and waiting versions.
func (wc *WorkerController) Status(c *gin.Context) {
	controller := wc.registration.Controller()
	if controller == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no active cache worker"})
		return
	}

	res := StatusResponse{
		State:         string(controller.State()),
		Version:       controller.Version(),
		CacheName:     controller.CacheName(),
		CachedEntries: wc.registration.ControllerStoreLen(),
	}
	if waiting := wc.registration.Waiting(); waiting != nil {
		res.WaitingVersion = waiting.Version()
	}
	c.JSON(http.StatusOK, res)
}

// Update triggers a manual update check.
func (wc *WorkerController) Update(c *gin.Context) {
	if err := wc.registration.Update(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	waiting := ""
	if w := wc.registration.Waiting(); w != nil {
		waiting = w.Version()
	}
	c.JSON(http.StatusOK, gin.H{"waitingVersion": waiting})
}

// Message accepts a control message from the page. The only defined kind
// is skip-waiting.
func (wc *WorkerController) Message(c *gin.Context) {
	var msg worker.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message"})
		return
	}
	if err := wc.registration.PostMessage(c.Request.Context(), msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusAccepted)
}
