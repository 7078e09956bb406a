package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/blog-rbac/internal/auth"
	"github.com/d60-Lab/blog-rbac/internal/repository"
	"github.com/d60-Lab/blog-rbac/pkg/response"
)

const sessionCookie = "token"

// ExtractCredential 从 Authorization: Bearer 或 cookie 取会话令牌。
func ExtractCredential(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if raw, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(raw)
		}
		return ""
	}
	if raw, err := c.Cookie(sessionCookie); err == nil {
		return raw
	}
	return ""
}

// Authenticate 身份解析中间件：凭证 -> 用户 -> 请求身份。
// 角色从用户记录现读，凭证里不存角色，降级下一个请求即生效。
// 凭证缺失/伪造/过期/已注销/用户已删除一律 401 短路，
// 角色与所有权逻辑在此之前绝不执行。
func Authenticate(tokens *auth.TokenManager, users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ExtractCredential(c)
		if raw == "" {
			response.Unauthorized(c, "authentication required")
			return
		}
		userID, err := tokens.Verify(c.Request.Context(), raw)
		if errors.Is(err, auth.ErrInvalidCredential) {
			response.Unauthorized(c, "authentication required")
			return
		}
		if err != nil {
			response.InternalError(c, err)
			c.Abort()
			return
		}
		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			response.InternalError(c, err)
			c.Abort()
			return
		}
		if user == nil {
			response.Unauthorized(c, "authentication required")
			return
		}
		auth.WithIdentity(c, auth.Identity{UserID: user.ID, Role: user.Role})
		c.Next()
	}
}

// RequireRoles 路由级角色闸门。未知角色同样拒绝。
func RequireRoles(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.FromContext(c)
		if !ok {
			response.Unauthorized(c, "authentication required")
			return
		}
		if dec := auth.AuthorizeRole(id, roles...); !dec.Allowed {
			response.Forbidden(c, "permission denied")
			return
		}
		c.Next()
	}
}
