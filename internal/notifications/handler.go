package notifications

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

func notificationID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "id must be a UUID",
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) ListNotifications(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), getAccountID(c), c.Query("unread") == "true")
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := notificationID(c)
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), id, getAccountID(c)); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Accept(c *gin.Context) {
	id, ok := notificationID(c)
	if !ok {
		return
	}
	partyID, err := h.svc.Accept(c.Request.Context(), id, getAccountID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"party_id": partyID})
}

func (h *Handler) Decline(c *gin.Context) {
	id, ok := notificationID(c)
	if !ok {
		return
	}
	if err := h.svc.Decline(c.Request.Context(), id, getAccountID(c)); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
