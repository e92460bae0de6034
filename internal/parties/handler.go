package parties

import (
	"context"
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

type accountRequest struct {
	AccountID uuid.UUID `json:"account_id" binding:"required"`
}

// --- Player-facing endpoints ---

func (h *Handler) CreateParty(c *gin.Context) {
	party, err := h.svc.Create(c.Request.Context(), getAccountID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, party)
}

func (h *Handler) JoinParty(c *gin.Context) {
	ctx := c.Request.Context()
	accountID := getAccountID(c)

	var req struct {
		PartyID uuid.UUID `json:"party_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "party_id is required",
		})
		return
	}

	name, err := h.svc.DisplayName(ctx, accountID)
	if err != nil {
		renderError(c, err)
		return
	}
	if err := h.svc.Join(ctx, req.PartyID, accountID, name); err != nil {
		renderError(c, err)
		return
	}

	party, err := h.svc.Get(ctx, req.PartyID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, party)
}

func (h *Handler) LeaveParty(c *gin.Context) {
	ctx := c.Request.Context()
	accountID := getAccountID(c)

	party, err := h.svc.Mine(ctx, accountID)
	if err != nil {
		renderError(c, err)
		return
	}
	name, err := h.svc.DisplayName(ctx, accountID)
	if err != nil {
		renderError(c, err)
		return
	}
	if err := h.svc.Leave(ctx, party.ID, accountID, name); err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Left party"})
}

func (h *Handler) KickMember(c *gin.Context) {
	ctx := c.Request.Context()
	accountID := getAccountID(c)

	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "account_id is required",
		})
		return
	}

	party, err := h.svc.Mine(ctx, accountID)
	if err != nil {
		renderError(c, err)
		return
	}
	actor, err := h.svc.Principal(ctx, accountID)
	if err != nil {
		renderError(c, err)
		return
	}
	if err := h.svc.Kick(ctx, party.ID, req.AccountID, actor); err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member kicked"})
}

func (h *Handler) PromoteMember(c *gin.Context) {
	ctx := c.Request.Context()
	accountID := getAccountID(c)

	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "account_id is required",
		})
		return
	}

	party, err := h.svc.Mine(ctx, accountID)
	if err != nil {
		renderError(c, err)
		return
	}
	actor, err := h.svc.Principal(ctx, accountID)
	if err != nil {
		renderError(c, err)
		return
	}
	if err := h.svc.Promote(ctx, party.ID, req.AccountID, actor); err != nil {
		renderError(c, err)
		return
	}

	party, err = h.svc.Get(ctx, party.ID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, party)
}

func (h *Handler) InviteFriend(c *gin.Context) {
	var req accountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "account_id is required",
		})
		return
	}

	n, err := h.svc.Invite(c.Request.Context(), getAccountID(c), req.AccountID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

// RequestJoin accepts either a party_id or the account_id of a friend whose
// party the caller wants to join.
func (h *Handler) RequestJoin(c *gin.Context) {
	ctx := c.Request.Context()
	accountID := getAccountID(c)

	var req struct {
		PartyID   uuid.UUID `json:"party_id"`
		AccountID uuid.UUID `json:"account_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || (req.PartyID == uuid.Nil && req.AccountID == uuid.Nil) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "party_id or account_id is required",
		})
		return
	}

	var (
		n   *models.Notification
		err error
	)
	if req.PartyID != uuid.Nil {
		n, err = h.svc.RequestToJoin(ctx, req.PartyID, accountID)
	} else {
		n, err = h.svc.RequestToJoinFriend(ctx, req.AccountID, accountID)
	}
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *Handler) GetMessages(c *gin.Context) {
	ctx := c.Request.Context()
	accountID := getAccountID(c)

	party, err := h.svc.Mine(ctx, accountID)
	if err != nil {
		renderError(c, err)
		return
	}
	msgs, err := h.svc.Messages(ctx, party.ID, accountID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) PostMessage(c *gin.Context) {
	ctx := c.Request.Context()
	accountID := getAccountID(c)

	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "message is required",
		})
		return
	}

	party, err := h.svc.Mine(ctx, accountID)
	if err != nil {
		renderError(c, err)
		return
	}
	msg, err := h.svc.SendMessage(ctx, party.ID, accountID, req.Message)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// --- Admin endpoints (RequireAdmin) ---

func (h *Handler) adminPrincipal(c *gin.Context) Principal {
	return Principal{ID: getAccountID(c), Admin: c.GetBool("is_admin")}
}

func (h *Handler) ListParties(c *gin.Context) {
	parties, err := h.svc.List(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"parties": parties})
}

func (h *Handler) AdminJoin(c *gin.Context) {
	h.adminAction(c, h.svc.AdminJoin)
}

func (h *Handler) AdminTakeover(c *gin.Context) {
	h.adminAction(c, h.svc.AdminTakeover)
}

func (h *Handler) adminAction(c *gin.Context, action func(ctx context.Context, partyID uuid.UUID, admin Principal, displayName string) error) {
	ctx := c.Request.Context()

	partyID, ok := paramUUID(c, "partyId")
	if !ok {
		return
	}
	admin := h.adminPrincipal(c)
	name, err := h.svc.DisplayName(ctx, admin.ID)
	if err != nil {
		renderError(c, err)
		return
	}
	if err := action(ctx, partyID, admin, name); err != nil {
		renderError(c, err)
		return
	}

	party, err := h.svc.Get(ctx, partyID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, party)
}

// --- Internal endpoints (service-to-service) ---

func (h *Handler) GetPartyByID(c *gin.Context) {
	partyID, ok := paramUUID(c, "partyId")
	if !ok {
		return
	}
	party, err := h.svc.Get(c.Request.Context(), partyID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, party)
}

func (h *Handler) GetPlayerParty(c *gin.Context) {
	userID, ok := paramUUID(c, "userId")
	if !ok {
		return
	}
	party, err := h.svc.Mine(c.Request.Context(), userID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, party)
}
