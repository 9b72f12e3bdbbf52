package reference

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bendcalc/pkg/api/middleware"
	"bendcalc/pkg/core/store"
	"bendcalc/pkg/models"
)

// Handler serves the reference-data CRUD endpoints. Mutations go to
// the audit log; an audit failure is logged but never rolls back the
// change that already committed.
type Handler struct {
	repo  store.ReferenceRepository
	audit *store.AuditLog
}

func NewHandler(repo store.ReferenceRepository, audit *store.AuditLog) *Handler {
	return &Handler{repo: repo, audit: audit}
}

func (h *Handler) record(c *gin.Context, action, table string, id int64, details string) {
	if h.audit == nil {
		return
	}
	if err := h.audit.Append(middleware.Username(c), action, table, id, details); err != nil {
		log.Printf("audit append failed: %v", err)
	}
}

func writeList[T any](c *gin.Context, items []T, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) ListMaterials(c *gin.Context) {
	if prefix := c.Query("prefix"); prefix != "" {
		items, err := h.repo.SearchMaterials(prefix)
		writeList(c, items, err)
		return
	}
	items, err := h.repo.ListMaterials()
	writeList(c, items, err)
}

func (h *Handler) ListThicknesses(c *gin.Context) {
	items, err := h.repo.ListThicknesses()
	writeList(c, items, err)
}

func (h *Handler) ListChannels(c *gin.Context) {
	if prefix := c.Query("prefix"); prefix != "" {
		items, err := h.repo.SearchChannels(prefix)
		writeList(c, items, err)
		return
	}
	items, err := h.repo.ListChannels()
	writeList(c, items, err)
}

func (h *Handler) ListDeductions(c *gin.Context) {
	items, err := h.repo.ListDeductions()
	writeList(c, items, err)
}

func (h *Handler) CreateMaterial(c *gin.Context) {
	var m models.Material
	if err := c.ShouldBindJSON(&m); err != nil || m.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if err := h.repo.CreateMaterial(&m); err != nil {
		writeMutationError(c, err)
		return
	}
	h.record(c, "create", "material", m.ID, m.Name)
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) CreateThickness(c *gin.Context) {
	var t models.Thickness
	if err := c.ShouldBindJSON(&t); err != nil || t.Value <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a positive value is required"})
		return
	}
	if err := h.repo.CreateThickness(&t); err != nil {
		writeMutationError(c, err)
		return
	}
	h.record(c, "create", "thickness", t.ID, strconv.FormatFloat(t.Value, 'f', -1, 64))
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) CreateChannel(c *gin.Context) {
	var ch models.Channel
	if err := c.ShouldBindJSON(&ch); err != nil || ch.Value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}
	if err := h.repo.CreateChannel(&ch); err != nil {
		writeMutationError(c, err)
		return
	}
	h.record(c, "create", "channel", ch.ID, ch.Value)
	c.JSON(http.StatusCreated, ch)
}

func (h *Handler) CreateDeduction(c *gin.Context) {
	var d models.Deduction
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if d.MaterialID == 0 || d.ThicknessID == 0 || d.ChannelID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "material, thickness and channel are required"})
		return
	}
	if err := h.repo.CreateDeduction(&d); err != nil {
		writeMutationError(c, err)
		return
	}
	h.record(c, "create", "deduction", d.ID, strconv.FormatFloat(d.Value, 'f', -1, 64))
	c.JSON(http.StatusCreated, d)
}

func (h *Handler) UpdateMaterial(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var m models.Material
	if err := c.ShouldBindJSON(&m); err != nil || m.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	m.ID = id
	if err := h.repo.UpdateMaterial(&m); err != nil {
		writeMutationError(c, err)
		return
	}
	h.record(c, "update", "material", id, m.Name)
	c.JSON(http.StatusOK, m)
}

func (h *Handler) UpdateChannel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var ch models.Channel
	if err := c.ShouldBindJSON(&ch); err != nil || ch.Value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "value is required"})
		return
	}
	ch.ID = id
	if err := h.repo.UpdateChannel(&ch); err != nil {
		writeMutationError(c, err)
		return
	}
	h.record(c, "update", "channel", id, ch.Value)
	c.JSON(http.StatusOK, ch)
}

func (h *Handler) UpdateDeduction(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var d models.Deduction
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	d.ID = id
	if err := h.repo.UpdateDeduction(&d); err != nil {
		writeMutationError(c, err)
		return
	}
	h.record(c, "update", "deduction", id, strconv.FormatFloat(d.Value, 'f', -1, 64))
	c.JSON(http.StatusOK, d)
}

func (h *Handler) DeleteMaterial(c *gin.Context)  { h.delete(c, "material", h.repo.DeleteMaterial) }
func (h *Handler) DeleteThickness(c *gin.Context) { h.delete(c, "thickness", h.repo.DeleteThickness) }
func (h *Handler) DeleteChannel(c *gin.Context)   { h.delete(c, "channel", h.repo.DeleteChannel) }
func (h *Handler) DeleteDeduction(c *gin.Context) { h.delete(c, "deduction", h.repo.DeleteDeduction) }

// delete removes a row. Dependent deductions go with it, so the audit
// entry names the table the user acted on.
func (h *Handler) delete(c *gin.Context, table string, fn func(int64) error) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := fn(id); err != nil {
		writeMutationError(c, err)
		return
	}
	h.record(c, "delete", table, id, "")
	c.Status(http.StatusNoContent)
}

// AuditRecent returns the latest audit entries. Admin only.
func (h *Handler) AuditRecent(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("n", "50"))
	if err != nil || n <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
		return
	}
	entries, err := h.audit.Recent(n)
	writeList(c, entries, err)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func writeMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
