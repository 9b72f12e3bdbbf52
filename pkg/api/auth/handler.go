package auth

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"bendcalc/pkg/core/store"
	"bendcalc/pkg/models"
)

// Handler serves login, logout and user administration.
type Handler struct {
	users *store.UserStore
}

func NewHandler(users *store.UserStore) *Handler {
	return &Handler{users: users}
}

type credentials struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates and opens a session. When the account is under
// an admin-requested reset it answers 409 so the client runs the
// new-password flow instead.
func (h *Handler) Login(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and password are required"})
		return
	}

	u, err := h.users.Authenticate(req.Name, req.Password)
	if errors.Is(err, store.ErrPasswordReset) {
		c.JSON(http.StatusConflict, gin.H{"reset_required": true})
		return
	}
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user or password"})
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", u.ID)
	session.Set("username", u.Name)
	session.Set("role", u.Role)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save session"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Status(http.StatusNoContent)
}

// NewPassword completes the reset flow: it is only honored while the
// reset sentinel is stored, never as a way around authentication.
func (h *Handler) NewPassword(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and password are required"})
		return
	}

	u, err := h.users.UserByName(req.Name)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user"})
		return
	}
	if u.PasswordHash != store.ResetSentinel {
		c.JSON(http.StatusForbidden, gin.H{"error": "no reset pending for this user"})
		return
	}
	if err := h.users.SetPassword(req.Name, req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

type newUser struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// CreateUser registers an account. Admin only.
func (h *Handler) CreateUser(c *gin.Context) {
	var req newUser
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and password are required"})
		return
	}
	switch req.Role {
	case "":
		req.Role = models.RoleViewer
	case models.RoleViewer, models.RoleEditor, models.RoleAdmin:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown role"})
		return
	}

	u, err := h.users.Create(req.Name, req.Password, req.Role)
	if errors.Is(err, store.ErrDuplicate) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, u)
}

// ResetUser stores the reset sentinel for an account. Admin only.
func (h *Handler) ResetUser(c *gin.Context) {
	if err := h.users.RequestReset(c.Param("name")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteUser removes an account. Admin only.
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.users.Delete(c.Param("name")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
