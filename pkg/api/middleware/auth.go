package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"bendcalc/pkg/models"
)

// AuthRequired rejects requests with no logged-in session.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get("user_id") == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Next()
	}
}

// EditorRequired allows editors and admins through.
func EditorRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		role := sessionRole(c)
		if role != models.RoleEditor && role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "editor role required"})
			return
		}
		c.Next()
	}
}

// AdminRequired allows admins only.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionRole(c) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

func sessionRole(c *gin.Context) string {
	role, _ := sessions.Default(c).Get("role").(string)
	return role
}

// Username returns the logged-in user's name, or empty.
func Username(c *gin.Context) string {
	name, _ := sessions.Default(c).Get("username").(string)
	return name
}
