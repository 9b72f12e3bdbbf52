package bend

import "math"

// MaxFlanges is the number of flange rows a part can carry.
const MaxFlanges = 5

// safetyMargin is the fixed allowance, in mm, added to the minimum
// external flange and minimum Z checks.
const safetyMargin = 2.0

// Quantity is a derived value that may be unavailable. Unavailable is
// never rendered as zero.
type Quantity struct {
	Value float64 `json:"value"`
	Valid bool    `json:"valid"`
}

func quantity(v float64) Quantity { return Quantity{Value: v, Valid: true} }

// FlangeResult is the outcome for one flange row.
type FlangeResult struct {
	Entered      string   `json:"entered"`
	Net          Quantity `json:"net"`
	Half         Quantity `json:"half"`
	BelowMinimum bool     `json:"below_minimum"`
}

// Input carries the raw form values for one calculation pass. All
// numeric fields are strings as typed, comma decimals included; blank
// means not filled in.
type Input struct {
	Material       string              `json:"material"`
	Thickness      string              `json:"thickness"`
	Channel        string              `json:"channel"`
	Override       string              `json:"override"`
	InternalRadius string              `json:"internal_radius"`
	PartLength     string              `json:"part_length"`
	Flanges        [MaxFlanges]string  `json:"flanges"`
}

// Result is everything the boundary displays. Each quantity stands on
// its own: one missing input invalidates only its dependents.
type Result struct {
	Deduction DeductionResult `json:"-"`

	DeductionValue  Quantity `json:"deduction"`
	DeductionSource string   `json:"deduction_source"`
	UsedOverride    bool     `json:"used_override"`
	DeductionNote   string   `json:"deduction_note,omitempty"`

	KFactor     Quantity `json:"k_factor"`
	Offset      Quantity `json:"offset"`
	RadiusRatio Quantity `json:"radius_ratio"`
	MinFlange   Quantity `json:"min_flange"`
	MinZ        Quantity `json:"min_z"`
	Tonnage     Quantity `json:"tonnage"`

	Flanges   [MaxFlanges]FlangeResult `json:"flanges"`
	Blank     Quantity                 `json:"blank"`
	HalfBlank Quantity                 `json:"half_blank"`

	// ChannelFits reports whether the part length fits the die's total
	// length; nil when either length is unknown.
	ChannelFits *bool `json:"channel_fits,omitempty"`
}

// Engine derives bend quantities from reference data and form input.
type Engine struct {
	resolver *Resolver
	ktable   KTable
}

// NewEngine builds an engine over a reference lookup. A zero-entry
// table argument selects the built-in reference K table.
func NewEngine(refs ReferenceLookup, table KTable) *Engine {
	if len(table.ratios) == 0 {
		table = NewKTable(nil)
	}
	return &Engine{resolver: NewResolver(refs), ktable: table}
}

// Resolver exposes the deduction resolver for callers that only need
// the lookup.
func (e *Engine) Resolver() *Resolver { return e.resolver }

// KFactor computes the empirical K-factor from thickness, effective
// deduction and internal radius:
//
//	k = (4*(t - d/2 + r) - pi*r) / (pi*t)
//
// clamped to [0, 0.5].
func KFactor(t, d, r float64) float64 {
	k := (4*(t-d/2+r) - math.Pi*r) / (math.Pi * t)
	return math.Max(0.0, math.Min(k, 0.5))
}

// Offset is the neutral-axis offset for a K-factor and thickness.
func Offset(k, t float64) float64 { return k * t }

// MinExternalFlange is the smallest external flange the die can form.
func MinExternalFlange(channelNominal, t float64) float64 {
	return channelNominal/2 + t + safetyMargin
}

// MinZ is the smallest Z dimension for an offset bend.
func MinZ(t, d, channelWidth float64) float64 {
	return t + d/2 + channelWidth/2 + safetyMargin
}

// TonnagePerMeter converts a per-meter force and optional part length
// into required press tonnage. A nil length means the force already is
// per meter.
func TonnagePerMeter(force float64, length *float64) float64 {
	if length == nil {
		return force
	}
	return force * *length / 1000
}

// Compute runs the full calculation for one input snapshot. The only
// error returned is a repository failure; every data problem surfaces
// as an unavailable quantity instead.
func (e *Engine) Compute(in Input) (Result, error) {
	var out Result

	ded, err := e.resolver.Resolve(in.Material, in.Thickness, in.Channel, in.Override)
	if err != nil {
		return out, err
	}
	out.Deduction = ded
	out.DeductionSource = ded.Source.String()
	out.UsedOverride = ded.UsedOverride
	out.DeductionNote = ded.Note
	if ded.Value != nil {
		out.DeductionValue = quantity(*ded.Value)
	}

	t, haveT, errT := ParseDecimal(in.Thickness)
	r, haveR, errR := ParseDecimal(in.InternalRadius)
	haveT = haveT && errT == nil && t > 0
	haveR = haveR && errR == nil && r > 0

	if haveT && haveR {
		ratio := math.Min(r/t, 10.0)
		out.RadiusRatio = quantity(ratio)
		if ded.Value != nil && *ded.Value > 0 {
			out.KFactor = quantity(KFactor(t, *ded.Value, r))
		} else {
			// No measured deduction: fall back to the reference table.
			out.KFactor = quantity(e.ktable.Lookup(ratio))
		}
		out.Offset = quantity(Offset(out.KFactor.Value, t))
	}

	if nominal, ok := ChannelNominal(in.Channel); ok && haveT {
		out.MinFlange = quantity(MinExternalFlange(nominal, t))
	}

	if ded.Channel != nil && ded.Channel.Width != nil && ded.Value != nil && *ded.Value > 0 && haveT {
		out.MinZ = quantity(MinZ(t, *ded.Value, *ded.Channel.Width))
	}

	length, haveLength, errLength := ParseDecimal(in.PartLength)
	haveLength = haveLength && errLength == nil
	if ded.Force != nil {
		if haveLength {
			out.Tonnage = quantity(TonnagePerMeter(*ded.Force, &length))
		} else if errLength == nil {
			out.Tonnage = quantity(TonnagePerMeter(*ded.Force, nil))
		}
	}
	if haveLength && ded.Channel != nil && ded.Channel.TotalLength != nil {
		fits := length < *ded.Channel.TotalLength
		out.ChannelFits = &fits
	}

	e.computeFlanges(&out, in, ded)
	return out, nil
}

// computeFlanges applies the per-flange deduction rule and aggregates
// the blank length. Filled rows form contiguous blocks: the ends of a
// block lose half a deduction (one adjacent bend line), interior
// positions lose a full one (bend lines on both sides). A gap splits
// the sequence into independent blocks; it never shifts length onto a
// neighboring row.
func (e *Engine) computeFlanges(out *Result, in Input, ded DeductionResult) {
	filled := [MaxFlanges]bool{}
	for i, raw := range in.Flanges {
		filled[i] = !IsBlank(raw)
		out.Flanges[i].Entered = in.Flanges[i]
	}

	var blank float64
	var any bool
	for i, raw := range in.Flanges {
		if !filled[i] {
			continue
		}
		v, ok, err := ParseDecimal(raw)
		if !ok || err != nil {
			continue // this row unavailable, neighbors unaffected
		}
		if out.MinFlange.Valid && v < out.MinFlange.Value {
			out.Flanges[i].BelowMinimum = true
		}
		if ded.Value == nil {
			continue // no effective deduction, net length is N/A
		}
		net := v - deductionShare(filled, i)*(*ded.Value)
		out.Flanges[i].Net = quantity(net)
		out.Flanges[i].Half = quantity(net / 2)
		blank += net
		any = true
	}
	if any {
		out.Blank = quantity(blank)
		out.HalfBlank = quantity(blank / 2)
	}
}

// deductionShare returns the fraction of the deduction subtracted from
// flange i: 0.5 at a block end, 1.0 inside a block.
func deductionShare(filled [MaxFlanges]bool, i int) float64 {
	prev := i > 0 && filled[i-1]
	next := i < MaxFlanges-1 && filled[i+1]
	if prev && next {
		return 1.0
	}
	return 0.5
}
