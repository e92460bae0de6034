package friends

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

func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: name + " must be a UUID",
		})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) ListFriends(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), getAccountID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": list})
}

func (h *Handler) ListRequests(c *gin.Context) {
	reqs, err := h.svc.Pending(c.Request.Context(), getAccountID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

func (h *Handler) SendRequest(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "username is required",
		})
		return
	}

	fr, err := h.svc.SendRequest(c.Request.Context(), getAccountID(c), req.Username)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fr)
}

func (h *Handler) AcceptRequest(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Accept(c.Request.Context(), id, getAccountID(c)); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Friend request accepted"})
}

func (h *Handler) DeclineRequest(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Decline(c.Request.Context(), id, getAccountID(c)); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Friend request declined"})
}

func (h *Handler) RemoveFriend(c *gin.Context) {
	friendID, ok := paramUUID(c, "friendId")
	if !ok {
		return
	}
	if err := h.svc.Remove(c.Request.Context(), getAccountID(c), friendID); err != nil {
		renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
