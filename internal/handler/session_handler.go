package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/models"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/service"
	"github.com/gabrielsapucaia/trackingnew-sub000/pkg/response"
)

// SessionHandler handles HTTP requests for telemetry sessions
type SessionHandler struct {
	sessions  *service.SessionService
	detection *service.DetectionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService, detection *service.DetectionService) *SessionHandler {
	return &SessionHandler{sessions: sessions, detection: detection}
}

// Ingest handles POST /api/v1/sessions
// The session CSV is uploaded as the multipart field "file".
func (h *SessionHandler) Ingest(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing session file")
		return
	}
	defer file.Close()

	name := c.PostForm("name")
	if name == "" {
		name = header.Filename
	}

	session, err := h.sessions.Ingest(name, c.PostForm("vehicleId"), file)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, session)
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(c *gin.Context) {
	var filter models.SessionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	sessions, total, err := h.sessions.List(filter)
	if err != nil {
		response.InternalError(c, "failed to list sessions")
		return
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}
	response.Paginated(c, sessions, total, page, pageSize)
}

// Get handles GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return
	}

	session, err := h.sessions.GetByID(id)
	if err != nil {
		response.NotFound(c, "session not found")
		return
	}

	response.Success(c, session)
}

// Detect handles POST /api/v1/sessions/:id/detect
func (h *SessionHandler) Detect(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid session id")
		return
	}

	result, err := h.detection.Run(id)
	if err != nil {
		// Fatal detection states (no stops, no anchor) are client-visible
		// conditions of the uploaded data, not server faults.
		response.Error(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	response.Success(c, result)
}
