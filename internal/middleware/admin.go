package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/biasdetektiv/study-backend/internal/handlers"
	"github.com/biasdetektiv/study-backend/internal/logger"
	"github.com/biasdetektiv/study-backend/internal/services"
)

type AdminMiddleware struct {
	log   *logger.Logger
	admin services.AdminService
}

func NewAdminMiddleware(baseLog *logger.Logger, admin services.AdminService) *AdminMiddleware {
	return &AdminMiddleware{
		log:   baseLog.With("middleware", "AdminMiddleware"),
		admin: admin,
	}
}

func (m *AdminMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			handlers.RespondError(c, http.StatusUnauthorized, "missing_token", errors.New("missing bearer token"))
			c.Abort()
			return
		}
		if err := m.admin.VerifyToken(token); err != nil {
			handlers.RespondError(c, http.StatusUnauthorized, "invalid_token", err)
			c.Abort()
			return
		}
		c.Next()
	}
}
