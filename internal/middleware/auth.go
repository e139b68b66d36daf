package middleware

import (
	"strings"

	"ingest-console/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// UserInfo 反向代理 (Authelia) 注入的登录用户信息
type UserInfo struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Groups   []string `json:"groups"`
}

// AuthMiddleware 代理头认证中间件。控制台部署在 Authelia 之后，
// 信任 X-Remote-* 头；debug 模式下无头请求放行为开发用户。
func AuthMiddleware(mode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.GetHeader("X-Remote-User")

		if user == "" {
			if mode == "debug" {
				c.Set("user", UserInfo{
					Username: "dev-user",
					Email:    "dev@localhost",
					Name:     "Developer",
					Groups:   []string{"admins"},
				})
				c.Next()
				return
			}
			response.Unauthorized(c, "please login via authelia")
			c.Abort()
			return
		}

		c.Set("user", UserInfo{
			Username: user,
			Email:    c.GetHeader("X-Remote-Email"),
			Name:     c.GetHeader("X-Remote-Name"),
			Groups:   parseGroups(c.GetHeader("X-Remote-Groups")),
		})
		c.Next()
	}
}

// GetUser 从上下文取当前用户，未认证时返回 nil
func GetUser(c *gin.Context) *UserInfo {
	if v, exists := c.Get("user"); exists {
		if u, ok := v.(UserInfo); ok {
			return &u
		}
	}
	return nil
}

func parseGroups(header string) []string {
	if header == "" {
		return []string{}
	}
	groups := strings.Split(header, ",")
	for i, g := range groups {
		groups[i] = strings.TrimSpace(g)
	}
	return groups
}
