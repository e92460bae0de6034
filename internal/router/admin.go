package router

import (
	"context"

	"github.com/bananalabs-oss/lobby/internal/apperrors"
	"github.com/bananalabs-oss/lobby/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type userLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RequireAdmin lets the request through only if the caller's stored user
// document has is_admin set. Whatever the client claims is ignored.
func RequireAdmin(users userLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetString("account_id"))
		if err != nil {
			c.AbortWithStatusJSON(apperrors.Status(apperrors.ErrNotAdmin), apperrors.Response(apperrors.ErrNotAdmin))
			return
		}

		user, err := users.Get(c.Request.Context(), id)
		if errors.Is(err, apperrors.ErrUserNotFound) || (err == nil && !user.IsAdmin) {
			c.AbortWithStatusJSON(apperrors.Status(apperrors.ErrNotAdmin), apperrors.Response(apperrors.ErrNotAdmin))
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(apperrors.Status(err), apperrors.Response(err))
			return
		}

		c.Set("is_admin", true)
		c.Next()
	}
}
