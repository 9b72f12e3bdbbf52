package store

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"bendcalc/pkg/models"
)

// Memory is an in-memory ReferenceRepository used by tests and by the
// server when no database path is configured.
type Memory struct {
	mu          sync.RWMutex
	nextID      int64
	materials   map[int64]models.Material
	thicknesses map[int64]models.Thickness
	channels    map[int64]models.Channel
	deductions  map[int64]models.Deduction
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{
		nextID:      1,
		materials:   make(map[int64]models.Material),
		thicknesses: make(map[int64]models.Thickness),
		channels:    make(map[int64]models.Channel),
		deductions:  make(map[int64]models.Deduction),
	}
}

func (m *Memory) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *Memory) MaterialByName(name string) (*models.Material, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mat := range m.materials {
		if mat.Name == name {
			out := mat
			return &out, nil
		}
	}
	return nil, fmt.Errorf("material %q: %w", name, ErrNotFound)
}

func (m *Memory) ThicknessByValue(value float64) (*models.Thickness, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.thicknesses {
		if t.Value == value {
			out := t
			return &out, nil
		}
	}
	return nil, fmt.Errorf("thickness %v: %w", value, ErrNotFound)
}

func (m *Memory) ChannelByValue(value string) (*models.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.channels {
		if c.Value == value {
			out := c
			return &out, nil
		}
	}
	return nil, fmt.Errorf("channel %q: %w", value, ErrNotFound)
}

func (m *Memory) DeductionFor(materialID, thicknessID, channelID int64) (*models.Deduction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, d := range m.deductions {
		if d.MaterialID == materialID && d.ThicknessID == thicknessID && d.ChannelID == channelID {
			out := d
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) ListMaterials() ([]models.Material, error) {
	return m.SearchMaterials("")
}

func (m *Memory) SearchMaterials(prefix string) ([]models.Material, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Material
	for _, mat := range m.materials {
		if strings.HasPrefix(mat.Name, prefix) {
			out = append(out, mat)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) ListThicknesses() ([]models.Thickness, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Thickness
	for _, t := range m.thicknesses {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out, nil
}

func (m *Memory) ListChannels() ([]models.Channel, error) {
	return m.SearchChannels("")
}

func (m *Memory) SearchChannels(prefix string) ([]models.Channel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Channel
	for _, c := range m.channels {
		if strings.HasPrefix(c.Value, prefix) {
			out = append(out, c)
		}
	}
	SortChannels(out)
	return out, nil
}

func (m *Memory) ListDeductions() ([]models.DeductionRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.DeductionRow
	for _, d := range m.deductions {
		row := models.DeductionRow{Deduction: d}
		if mat, ok := m.materials[d.MaterialID]; ok {
			row.MaterialName = mat.Name
		}
		if t, ok := m.thicknesses[d.ThicknessID]; ok {
			row.ThicknessValue = t.Value
		}
		if c, ok := m.channels[d.ChannelID]; ok {
			row.ChannelValue = c.Value
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MaterialName != out[j].MaterialName {
			return out[i].MaterialName < out[j].MaterialName
		}
		return out[i].ThicknessValue < out[j].ThicknessValue
	})
	return out, nil
}

func (m *Memory) CreateMaterial(mat *models.Material) error {
	if _, err := m.MaterialByName(mat.Name); err == nil {
		return fmt.Errorf("material %q %w", mat.Name, ErrDuplicate)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mat.ID = m.id()
	m.materials[mat.ID] = *mat
	return nil
}

func (m *Memory) CreateThickness(t *models.Thickness) error {
	if _, err := m.ThicknessByValue(t.Value); err == nil {
		return fmt.Errorf("thickness %v %w", t.Value, ErrDuplicate)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	m.thicknesses[t.ID] = *t
	return nil
}

func (m *Memory) CreateChannel(c *models.Channel) error {
	if _, err := m.ChannelByValue(c.Value); err == nil {
		return fmt.Errorf("channel %q %w", c.Value, ErrDuplicate)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id()
	m.channels[c.ID] = *c
	return nil
}

func (m *Memory) CreateDeduction(d *models.Deduction) error {
	if _, err := m.DeductionFor(d.MaterialID, d.ThicknessID, d.ChannelID); err == nil {
		return fmt.Errorf("deduction for this combination %w", ErrDuplicate)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = m.id()
	m.deductions[d.ID] = *d
	return nil
}

func (m *Memory) UpdateMaterial(mat *models.Material) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.materials[mat.ID]; !ok {
		return ErrNotFound
	}
	for id, other := range m.materials {
		if id != mat.ID && other.Name == mat.Name {
			return fmt.Errorf("material %q %w", mat.Name, ErrDuplicate)
		}
	}
	m.materials[mat.ID] = *mat
	return nil
}

func (m *Memory) UpdateChannel(c *models.Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.channels[c.ID]; !ok {
		return ErrNotFound
	}
	for id, other := range m.channels {
		if id != c.ID && other.Value == c.Value {
			return fmt.Errorf("channel %q %w", c.Value, ErrDuplicate)
		}
	}
	m.channels[c.ID] = *c
	return nil
}

func (m *Memory) UpdateDeduction(d *models.Deduction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deductions[d.ID]; !ok {
		return ErrNotFound
	}
	m.deductions[d.ID] = *d
	return nil
}

func (m *Memory) DeleteMaterial(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cascade(func(d models.Deduction) bool { return d.MaterialID == id })
	delete(m.materials, id)
	return nil
}

func (m *Memory) DeleteThickness(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cascade(func(d models.Deduction) bool { return d.ThicknessID == id })
	delete(m.thicknesses, id)
	return nil
}

func (m *Memory) DeleteChannel(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cascade(func(d models.Deduction) bool { return d.ChannelID == id })
	delete(m.channels, id)
	return nil
}

func (m *Memory) DeleteDeduction(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.deductions, id)
	return nil
}

func (m *Memory) cascade(refs func(models.Deduction) bool) {
	for id, d := range m.deductions {
		if refs(d) {
			delete(m.deductions, id)
		}
	}
}
