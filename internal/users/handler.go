package users

import (
	"net/http"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func getAccountID(c *gin.Context) uuid.UUID {
	return uuid.MustParse(c.GetString("account_id"))
}

func renderError(c *gin.Context, err error) {
	c.JSON(apperrors.Status(err), apperrors.Response(err))
}

type userResponse struct {
	*models.User
	DisplayStatus string `json:"display_status"`
}

func (h *Handler) respond(c *gin.Context, user *models.User) {
	c.JSON(http.StatusOK, userResponse{User: user, DisplayStatus: DisplayStatus(user, h.svc.now())})
}

// --- Player-facing endpoints ---

func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.svc.Get(c.Request.Context(), getAccountID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	h.respond(c, user)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid settings",
		})
		return
	}

	user, err := h.svc.UpdateSettings(c.Request.Context(), getAccountID(c), req)
	if err != nil {
		renderError(c, err)
		return
	}
	h.respond(c, user)
}

func (h *Handler) Heartbeat(c *gin.Context) {
	var req struct {
		Status   string `json:"status"`
		Activity string `json:"activity"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_request",
				Message: "Invalid heartbeat",
			})
			return
		}
	}

	if err := h.svc.Heartbeat(c.Request.Context(), getAccountID(c), req.Status, req.Activity); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Internal endpoints (service-to-service) ---

func (h *Handler) SyncUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "userId must be a UUID",
		})
		return
	}

	var req Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "username and display_name are required",
		})
		return
	}
	req.ID = userID

	user, err := h.svc.Sync(c.Request.Context(), req)
	if err != nil {
		renderError(c, err)
		return
	}
	h.respond(c, user)
}
