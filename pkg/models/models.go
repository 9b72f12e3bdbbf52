package models

import "time"

// Material is a sheet-metal material. Mechanical properties are
// optional: many shops only register the name and fill the rest in as
// the data sheet arrives.
type Material struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Density        *float64 `json:"density,omitempty"`         // g/cm3
	YieldStrength  *float64 `json:"yield_strength,omitempty"`  // MPa
	ElasticModulus *float64 `json:"elastic_modulus,omitempty"` // GPa
}

// Thickness is a registered sheet thickness in millimeters.
type Thickness struct {
	ID    int64   `json:"id"`
	Value float64 `json:"value"`
}

// Channel is a press-brake V-die. Value is the nominal designation and
// may mix digits and letters ("35", "50R8"), so it is stored as text.
type Channel struct {
	ID          int64    `json:"id"`
	Value       string   `json:"value"`
	Width       *float64 `json:"width,omitempty"`
	Height      *float64 `json:"height,omitempty"`
	TotalLength *float64 `json:"total_length,omitempty"`
	Note        *string  `json:"note,omitempty"`
}

// Deduction is the empirically measured material loss per 90-degree
// bend for one material + thickness + channel combination. The triple
// is unique. Force, when present, is the press force per meter needed
// for the bend (ton/m).
type Deduction struct {
	ID          int64    `json:"id"`
	MaterialID  int64    `json:"material_id"`
	ThicknessID int64    `json:"thickness_id"`
	ChannelID   int64    `json:"channel_id"`
	Value       float64  `json:"value"`
	Note        *string  `json:"note,omitempty"`
	Force       *float64 `json:"force,omitempty"`
}

// DeductionRow is a Deduction joined with the rows it references, the
// shape listing and search endpoints return.
type DeductionRow struct {
	Deduction
	MaterialName   string  `json:"material_name"`
	ThicknessValue float64 `json:"thickness_value"`
	ChannelValue   string  `json:"channel_value"`
}

// Roles accepted for User.Role. Editors may add reference data; only
// admins may edit or delete it.
const (
	RoleViewer = "viewer"
	RoleEditor = "editor"
	RoleAdmin  = "admin"
)

// User is an authentication record. PasswordHash holds a bcrypt hash,
// or the reset sentinel when an admin has forced a password reset.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"`
}

// IsAdmin reports whether the user may edit or delete reference data.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// LogEntry records one mutation of reference data.
type LogEntry struct {
	ID       int64     `json:"id"`
	UserName string    `json:"user_name"`
	Action   string    `json:"action"`
	Table    string    `json:"table"`
	RecordID int64     `json:"record_id"`
	Details  string    `json:"details"`
	At       time.Time `json:"at"`
}
