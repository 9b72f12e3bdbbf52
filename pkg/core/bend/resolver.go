package bend

import (
	"errors"

	"bendcalc/pkg/core/store"
	"bendcalc/pkg/models"
)

// ReferenceLookup is the slice of the repository the resolver needs.
// store.ReferenceStore and store.Memory both satisfy it.
type ReferenceLookup interface {
	MaterialByName(name string) (*models.Material, error)
	ThicknessByValue(value float64) (*models.Thickness, error)
	ChannelByValue(value string) (*models.Channel, error)
	DeductionFor(materialID, thicknessID, channelID int64) (*models.Deduction, error)
}

// Source says where the effective deduction value came from.
type Source int

const (
	// SourceUnavailable means a required selection is missing or
	// unparsable, so no lookup was attempted.
	SourceUnavailable Source = iota
	// SourceNotFound means the triple resolved but no deduction row
	// exists for it. Callers show N/A, never zero.
	SourceNotFound
	// SourceLookup means the value came from the deduction table.
	SourceLookup
	// SourceManual means a user-supplied override is in effect.
	SourceManual
)

func (s Source) String() string {
	switch s {
	case SourceNotFound:
		return "not_found"
	case SourceLookup:
		return "lookup"
	case SourceManual:
		return "manual"
	default:
		return "unavailable"
	}
}

// DeductionResult is the resolver output. Value is nil unless Source
// is lookup or manual. UsedOverride is set whenever the manual value
// takes precedence, so the boundary can style the result differently.
type DeductionResult struct {
	Value        *float64
	Note         string
	Force        *float64
	Source       Source
	UsedOverride bool

	// Resolved rows, when the triple matched. The engine reads channel
	// geometry from here instead of querying again.
	Material  *models.Material
	Thickness *models.Thickness
	Channel   *models.Channel
}

// Effective returns the deduction value downstream computations use,
// or nil when none is available.
func (r DeductionResult) Effective() *float64 { return r.Value }

// Resolver looks up deduction values for material/thickness/channel
// selections, honoring manual overrides.
type Resolver struct {
	refs ReferenceLookup
}

func NewResolver(refs ReferenceLookup) *Resolver {
	return &Resolver{refs: refs}
}

// Resolve finds the deduction for the given selections. Selections are
// the raw strings from the boundary; thickness accepts comma decimals.
// A non-blank manual override always wins, even over a successful
// lookup, and is reflected in Source and UsedOverride.
func (r *Resolver) Resolve(material, thickness, channel, manualOverride string) (DeductionResult, error) {
	res := DeductionResult{Source: SourceUnavailable}

	override, haveOverride, overrideErr := ParseDecimal(manualOverride)

	if IsBlank(material) || IsBlank(thickness) || IsBlank(channel) {
		return r.applyOverride(res, override, haveOverride, overrideErr), nil
	}
	thickVal, ok, err := ParseDecimal(thickness)
	if err != nil || !ok {
		return r.applyOverride(res, override, haveOverride, overrideErr), nil
	}

	mat, err := r.refs.MaterialByName(material)
	if err != nil {
		return r.lookupMiss(res, override, haveOverride, overrideErr, err)
	}
	thick, err := r.refs.ThicknessByValue(thickVal)
	if err != nil {
		return r.lookupMiss(res, override, haveOverride, overrideErr, err)
	}
	ch, err := r.refs.ChannelByValue(channel)
	if err != nil {
		return r.lookupMiss(res, override, haveOverride, overrideErr, err)
	}
	res.Material, res.Thickness, res.Channel = mat, thick, ch

	ded, err := r.refs.DeductionFor(mat.ID, thick.ID, ch.ID)
	switch {
	case err == nil:
		v := ded.Value
		res.Value = &v
		res.Source = SourceLookup
		res.Force = ded.Force
		if ded.Note != nil {
			res.Note = *ded.Note
		}
	case errors.Is(err, store.ErrNotFound):
		res.Source = SourceNotFound
	default:
		return res, err
	}

	return r.applyOverride(res, override, haveOverride, overrideErr), nil
}

func (r *Resolver) lookupMiss(res DeductionResult, override float64, haveOverride bool, overrideErr, cause error) (DeductionResult, error) {
	if errors.Is(cause, store.ErrNotFound) {
		res.Source = SourceNotFound
		return r.applyOverride(res, override, haveOverride, overrideErr), nil
	}
	return res, cause
}

func (r *Resolver) applyOverride(res DeductionResult, override float64, have bool, parseErr error) DeductionResult {
	if parseErr != nil {
		// Garbage in the override field invalidates the effective value
		// entirely; the lookup value must not silently win.
		res.Value = nil
		res.Source = SourceUnavailable
		return res
	}
	if have {
		res.Value = &override
		res.Source = SourceManual
		res.UsedOverride = true
	}
	return res
}
