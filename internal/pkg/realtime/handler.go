package realtime

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/campushub/registrar/internal/app/models"
	"github.com/campushub/registrar/internal/app/repositories"
)

// Handler upgrades HTTP requests to websocket subscriptions for course
// availability events.
type Handler struct {
	hub     *Hub
	courses repositories.CourseStore
	logger  zerolog.Logger
}

// NewHandler creates a new websocket subscription handler
func NewHandler(hub *Hub, courses repositories.CourseStore, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:     hub,
		courses: courses,
		logger:  logger,
	}
}

// HandleConnection godoc
// @Summary Subscribe to real-time course availability events
// @Description Upgrades the HTTP connection to a WebSocket that pushes seat_available and course_updated events for one course
// @Tags courses, websocket
// @Produce json
// @Security BearerAuth
// @Param id path int true "Course ID"
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 400 {object} gin.H "Invalid course ID"
// @Failure 401 {object} gin.H "Unauthorized: JWT token missing or invalid"
// @Failure 404 {object} gin.H "Course not found"
// @Router /ws/courses/{id} [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	courseID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course ID"})
		return
	}

	callerValue, exists := c.Get("caller")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}
	caller, ok := callerValue.(models.Caller)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid caller in context"})
		return
	}

	if _, err := h.courses.GetByID(c, courseID); err != nil {
		if errors.Is(err, repositories.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
			return
		}
		h.logger.Error().Err(err).Int64("courseID", courseID).Msg("Failed to load course for subscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load course"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("courseID", courseID).
			Int64("userID", caller.UserID).
			Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:      h.hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		userID:   caller.UserID,
		courseID: courseID,
		logger:   h.logger,
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
