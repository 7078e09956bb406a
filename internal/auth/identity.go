package auth

import "github.com/gin-gonic/gin"

// Identity 请求级认证身份。每个请求由中间件重新解析，
// 角色取自当前用户记录而非凭证内容，降级立刻生效。
type Identity struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
}

const identityKey = "auth.identity"

// WithIdentity 将身份写入当前请求的 gin 上下文。
func WithIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// FromContext 取出请求身份；未经过认证中间件时 ok=false。
func FromContext(c *gin.Context) (Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}
