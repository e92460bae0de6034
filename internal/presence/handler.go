package presence

import (
	"io"
	"net/http"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	projector *Projector
}

func NewHandler(projector *Projector) *Handler {
	return &Handler{projector: projector}
}

func getAccountID(c *gin.Context) uuid.UUID {
	return uuid.MustParse(c.GetString("account_id"))
}

// GetMyParty returns the caller's view once.
func (h *Handler) GetMyParty(c *gin.Context) {
	view, err := h.projector.Current(c.Request.Context(), getAccountID(c))
	if err != nil {
		c.JSON(apperrors.Status(err), apperrors.Response(err))
		return
	}
	c.JSON(http.StatusOK, view)
}

// StreamMyParty pushes the caller's view as server-sent "party" events until
// the client goes away.
func (h *Handler) StreamMyParty(c *gin.Context) {
	ctx := c.Request.Context()

	sub, err := h.projector.Subscribe(ctx, getAccountID(c))
	if err != nil {
		c.JSON(apperrors.Status(err), apperrors.Response(err))
		return
	}
	defer sub.Close()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case view, ok := <-sub.Updates():
			if !ok {
				return false
			}
			c.SSEvent("party", view)
			return true
		}
	})
}
