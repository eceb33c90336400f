package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/service"
	"github.com/gabrielsapucaia/trackingnew-sub000/pkg/response"
)

// EventHandler handles HTTP requests for detected events, cycles and
// anomalies
type EventHandler struct {
	service *service.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(service *service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

// GetEvents handles GET /api/v1/events
func (h *EventHandler) GetEvents(c *gin.Context) {
	var filter models.EventFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	events, total, err := h.service.GetEvents(filter)
	if err != nil {
		response.InternalError(c, "failed to get events")
		return
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}
	response.Paginated(c, events, total, page, pageSize)
}

// GetCycles handles GET /api/v1/sessions/:id/cycles
func (h *EventHandler) GetCycles(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return
	}

	cycles, err := h.service.GetCycles(models.CycleFilter{SessionID: sessionID})
	if err != nil {
		response.InternalError(c, "failed to get cycles")
		return
	}

	response.Success(c, cycles)
}

// GetAnomalies handles GET /api/v1/sessions/:id/anomalies
func (h *EventHandler) GetAnomalies(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return
	}

	anomalies, err := h.service.GetAnomalies(sessionID)
	if err != nil {
		response.InternalError(c, "failed to get anomalies")
		return
	}

	response.Success(c, anomalies)
}
