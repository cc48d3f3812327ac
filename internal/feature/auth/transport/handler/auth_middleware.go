package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"broker_backend/internal/api"
	"broker_backend/internal/feature/auth/usecase"
)

// RequireActiveUser はJWT検証後にユーザーの現在の状態を検証するミドルウェアです。
// トークンの有効期限内でもアカウントは削除・無効化されている可能性があるため、
// リクエストごとにユーザーを再取得します。
// - 削除済みユーザーは401
// - 無効化されたユーザーは403
func (h *AuthHandler) RequireActiveUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
			return
		}

		user, err := h.auth.CurrentUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, usecase.ErrUserNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
				return
			}
			slog.Error("failed to verify user", "user_id", userID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
			return
		}

		if user.Disabled {
			c.AbortWithStatusJSON(http.StatusForbidden, api.ErrorResponse{Error: "account disabled"})
			return
		}

		c.Next()
	}
}
