package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"bendcalc/pkg/models"
)

// ReferenceRepository is the query and mutation surface over the bend
// reference data. The resolver and the HTTP handlers depend on this
// interface, never on sqlite directly, so tests substitute the
// in-memory implementation.
type ReferenceRepository interface {
	MaterialByName(name string) (*models.Material, error)
	ThicknessByValue(value float64) (*models.Thickness, error)
	ChannelByValue(value string) (*models.Channel, error)
	DeductionFor(materialID, thicknessID, channelID int64) (*models.Deduction, error)

	ListMaterials() ([]models.Material, error)
	ListThicknesses() ([]models.Thickness, error)
	ListChannels() ([]models.Channel, error)
	ListDeductions() ([]models.DeductionRow, error)

	SearchMaterials(prefix string) ([]models.Material, error)
	SearchChannels(prefix string) ([]models.Channel, error)

	CreateMaterial(m *models.Material) error
	CreateThickness(t *models.Thickness) error
	CreateChannel(c *models.Channel) error
	CreateDeduction(d *models.Deduction) error

	UpdateMaterial(m *models.Material) error
	UpdateChannel(c *models.Channel) error
	UpdateDeduction(d *models.Deduction) error

	DeleteMaterial(id int64) error
	DeleteThickness(id int64) error
	DeleteChannel(id int64) error
	DeleteDeduction(id int64) error
}

// ReferenceStore is the sqlite-backed ReferenceRepository.
type ReferenceStore struct {
	db *DB
}

// NewReferenceStore creates a repository over an open database.
func NewReferenceStore(db *DB) *ReferenceStore {
	return &ReferenceStore{db: db}
}

func (s *ReferenceStore) MaterialByName(name string) (*models.Material, error) {
	var m models.Material
	err := s.db.conn.QueryRow(
		`SELECT id, name, density, yield_strength, elastic_modulus FROM material WHERE name = ?`, name,
	).Scan(&m.ID, &m.Name, &m.Density, &m.YieldStrength, &m.ElasticModulus)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("material %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *ReferenceStore) ThicknessByValue(value float64) (*models.Thickness, error) {
	var t models.Thickness
	err := s.db.conn.QueryRow(
		`SELECT id, value FROM thickness WHERE value = ?`, value,
	).Scan(&t.ID, &t.Value)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("thickness %v: %w", value, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *ReferenceStore) ChannelByValue(value string) (*models.Channel, error) {
	var c models.Channel
	err := s.db.conn.QueryRow(
		`SELECT id, value, width, height, total_length, note FROM channel WHERE value = ?`, value,
	).Scan(&c.ID, &c.Value, &c.Width, &c.Height, &c.TotalLength, &c.Note)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("channel %q: %w", value, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ReferenceStore) DeductionFor(materialID, thicknessID, channelID int64) (*models.Deduction, error) {
	var d models.Deduction
	err := s.db.conn.QueryRow(
		`SELECT id, material_id, thickness_id, channel_id, value, note, force
		 FROM deduction WHERE material_id = ? AND thickness_id = ? AND channel_id = ?`,
		materialID, thicknessID, channelID,
	).Scan(&d.ID, &d.MaterialID, &d.ThicknessID, &d.ChannelID, &d.Value, &d.Note, &d.Force)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *ReferenceStore) ListMaterials() ([]models.Material, error) {
	return s.queryMaterials(`SELECT id, name, density, yield_strength, elastic_modulus FROM material ORDER BY name`)
}

func (s *ReferenceStore) SearchMaterials(prefix string) ([]models.Material, error) {
	return s.queryMaterials(
		`SELECT id, name, density, yield_strength, elastic_modulus FROM material WHERE name LIKE ? ORDER BY name`,
		prefix+"%",
	)
}

func (s *ReferenceStore) queryMaterials(query string, args ...any) ([]models.Material, error) {
	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Material
	for rows.Next() {
		var m models.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.Density, &m.YieldStrength, &m.ElasticModulus); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *ReferenceStore) ListThicknesses() ([]models.Thickness, error) {
	rows, err := s.db.conn.Query(`SELECT id, value FROM thickness ORDER BY value`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Thickness
	for rows.Next() {
		var t models.Thickness
		if err := rows.Scan(&t.ID, &t.Value); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *ReferenceStore) ListChannels() ([]models.Channel, error) {
	channels, err := s.queryChannels(`SELECT id, value, width, height, total_length, note FROM channel`)
	if err != nil {
		return nil, err
	}
	SortChannels(channels)
	return channels, nil
}

func (s *ReferenceStore) SearchChannels(prefix string) ([]models.Channel, error) {
	channels, err := s.queryChannels(
		`SELECT id, value, width, height, total_length, note FROM channel WHERE value LIKE ?`,
		prefix+"%",
	)
	if err != nil {
		return nil, err
	}
	SortChannels(channels)
	return channels, nil
}

func (s *ReferenceStore) queryChannels(query string, args ...any) ([]models.Channel, error) {
	rows, err := s.db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Channel
	for rows.Next() {
		var c models.Channel
		if err := rows.Scan(&c.ID, &c.Value, &c.Width, &c.Height, &c.TotalLength, &c.Note); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *ReferenceStore) ListDeductions() ([]models.DeductionRow, error) {
	rows, err := s.db.conn.Query(
		`SELECT d.id, d.material_id, d.thickness_id, d.channel_id, d.value, d.note, d.force,
		        m.name, t.value, c.value
		 FROM deduction d
		 JOIN material m ON m.id = d.material_id
		 JOIN thickness t ON t.id = d.thickness_id
		 JOIN channel c ON c.id = d.channel_id
		 ORDER BY m.name, t.value`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DeductionRow
	for rows.Next() {
		var r models.DeductionRow
		if err := rows.Scan(&r.ID, &r.MaterialID, &r.ThicknessID, &r.ChannelID, &r.Value, &r.Note, &r.Force,
			&r.MaterialName, &r.ThicknessValue, &r.ChannelValue); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ReferenceStore) CreateMaterial(m *models.Material) error {
	if _, err := s.MaterialByName(m.Name); err == nil {
		return fmt.Errorf("material %q %w", m.Name, ErrDuplicate)
	}
	res, err := s.db.conn.Exec(
		`INSERT INTO material (name, density, yield_strength, elastic_modulus) VALUES (?, ?, ?, ?)`,
		m.Name, m.Density, m.YieldStrength, m.ElasticModulus)
	if err != nil {
		return err
	}
	m.ID, err = res.LastInsertId()
	return err
}

func (s *ReferenceStore) CreateThickness(t *models.Thickness) error {
	if _, err := s.ThicknessByValue(t.Value); err == nil {
		return fmt.Errorf("thickness %v %w", t.Value, ErrDuplicate)
	}
	res, err := s.db.conn.Exec(`INSERT INTO thickness (value) VALUES (?)`, t.Value)
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

func (s *ReferenceStore) CreateChannel(c *models.Channel) error {
	if _, err := s.ChannelByValue(c.Value); err == nil {
		return fmt.Errorf("channel %q %w", c.Value, ErrDuplicate)
	}
	res, err := s.db.conn.Exec(
		`INSERT INTO channel (value, width, height, total_length, note) VALUES (?, ?, ?, ?, ?)`,
		c.Value, c.Width, c.Height, c.TotalLength, c.Note)
	if err != nil {
		return err
	}
	c.ID, err = res.LastInsertId()
	return err
}

func (s *ReferenceStore) CreateDeduction(d *models.Deduction) error {
	if _, err := s.DeductionFor(d.MaterialID, d.ThicknessID, d.ChannelID); err == nil {
		return fmt.Errorf("deduction for this combination %w", ErrDuplicate)
	}
	res, err := s.db.conn.Exec(
		`INSERT INTO deduction (material_id, thickness_id, channel_id, value, note, force) VALUES (?, ?, ?, ?, ?, ?)`,
		d.MaterialID, d.ThicknessID, d.ChannelID, d.Value, d.Note, d.Force)
	if err != nil {
		return err
	}
	d.ID, err = res.LastInsertId()
	return err
}

func (s *ReferenceStore) UpdateMaterial(m *models.Material) error {
	res, err := s.db.conn.Exec(
		`UPDATE material SET name = ?, density = ?, yield_strength = ?, elastic_modulus = ? WHERE id = ?`,
		m.Name, m.Density, m.YieldStrength, m.ElasticModulus, m.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("material %q %w", m.Name, ErrDuplicate)
	}
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *ReferenceStore) UpdateChannel(c *models.Channel) error {
	res, err := s.db.conn.Exec(
		`UPDATE channel SET value = ?, width = ?, height = ?, total_length = ?, note = ? WHERE id = ?`,
		c.Value, c.Width, c.Height, c.TotalLength, c.Note, c.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("channel %q %w", c.Value, ErrDuplicate)
	}
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *ReferenceStore) UpdateDeduction(d *models.Deduction) error {
	res, err := s.db.conn.Exec(
		`UPDATE deduction SET value = ?, note = ?, force = ? WHERE id = ?`,
		d.Value, d.Note, d.Force, d.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow turns an update that touched no row into ErrNotFound, so
// the boundary answers 404 instead of fabricating a success.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// DeleteMaterial removes a material and, first, every deduction that
// references it. The cascade runs in one transaction so a failure
// leaves both tables untouched.
func (s *ReferenceStore) DeleteMaterial(id int64) error {
	return s.deleteWithCascade(`material`, `material_id`, id)
}

func (s *ReferenceStore) DeleteThickness(id int64) error {
	return s.deleteWithCascade(`thickness`, `thickness_id`, id)
}

func (s *ReferenceStore) DeleteChannel(id int64) error {
	return s.deleteWithCascade(`channel`, `channel_id`, id)
}

func (s *ReferenceStore) deleteWithCascade(table, fk string, id int64) error {
	tx, err := s.db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM deduction WHERE `+fk+` = ?`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *ReferenceStore) DeleteDeduction(id int64) error {
	_, err := s.db.conn.Exec(`DELETE FROM deduction WHERE id = ?`, id)
	return err
}
