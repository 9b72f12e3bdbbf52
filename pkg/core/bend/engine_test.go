package bend

import (
	"math"
	"testing"

	"bendcalc/pkg/core/store"
	"bendcalc/pkg/models"
)

const eps = 1e-9

func f64(v float64) *float64 { return &v }

// seededRepo builds an in-memory reference set with one registered
// combination: material "Aço 1020", thickness 2, channel "35"
// (width 35, total length 3000), deduction 4.0 with force 12 ton/m.
func seededRepo(t *testing.T) *store.Memory {
	t.Helper()
	repo := store.NewMemory()

	mat := &models.Material{Name: "Aço 1020", Density: f64(7.85)}
	if err := repo.CreateMaterial(mat); err != nil {
		t.Fatal(err)
	}
	thick := &models.Thickness{Value: 2}
	if err := repo.CreateThickness(thick); err != nil {
		t.Fatal(err)
	}
	ch := &models.Channel{Value: "35", Width: f64(35), TotalLength: f64(3000)}
	if err := repo.CreateChannel(ch); err != nil {
		t.Fatal(err)
	}
	ded := &models.Deduction{
		MaterialID:  mat.ID,
		ThicknessID: thick.ID,
		ChannelID:   ch.ID,
		Value:       4.0,
		Force:       f64(12),
	}
	if err := repo.CreateDeduction(ded); err != nil {
		t.Fatal(err)
	}
	return repo
}

func TestKFactorFormula(t *testing.T) {
	// t=2, d=4, r=1:
	// k = (4*(2 - 2 + 1) - pi*1) / (pi*2)
	//   = (4 - pi) / (2*pi)
	expected := (4 - math.Pi) / (2 * math.Pi)
	if got := KFactor(2, 4, 1); math.Abs(got-expected) > eps {
		t.Errorf("KFactor(2,4,1) = %f, want %f", got, expected)
	}

	// Determinism: same inputs, same output.
	if KFactor(2, 4, 1) != KFactor(2, 4, 1) {
		t.Error("KFactor is not deterministic")
	}

	// Clamp: a tiny deduction pushes the raw value above 0.5.
	if got := KFactor(1, 0.1, 5); got != 0.5 {
		t.Errorf("KFactor should clamp to 0.5, got %f", got)
	}
	// Clamp low: a huge deduction goes negative.
	if got := KFactor(1, 50, 0.1); got != 0.0 {
		t.Errorf("KFactor should clamp to 0, got %f", got)
	}
}

func TestComputeKOffsetAndMinimums(t *testing.T) {
	engine := NewEngine(seededRepo(t), KTable{})

	res, err := engine.Compute(Input{
		Material:       "Aço 1020",
		Thickness:      "2",
		Channel:        "35",
		InternalRadius: "1",
	})
	if err != nil {
		t.Fatal(err)
	}

	wantK := (4*(2.0-2.0+1.0) - math.Pi) / (math.Pi * 2)
	if !res.KFactor.Valid || math.Abs(res.KFactor.Value-wantK) > eps {
		t.Errorf("KFactor = %+v, want %f", res.KFactor, wantK)
	}
	if !res.Offset.Valid || math.Abs(res.Offset.Value-wantK*2) > eps {
		t.Errorf("Offset = %+v, want %f", res.Offset, wantK*2)
	}
	// MinFlange = 35/2 + 2 + 2 = 21.5
	if !res.MinFlange.Valid || math.Abs(res.MinFlange.Value-21.5) > eps {
		t.Errorf("MinFlange = %+v, want 21.5", res.MinFlange)
	}
	// MinZ = 2 + 4/2 + 35/2 + 2 = 23.5
	if !res.MinZ.Valid || math.Abs(res.MinZ.Value-23.5) > eps {
		t.Errorf("MinZ = %+v, want 23.5", res.MinZ)
	}
	if res.DeductionSource != "lookup" {
		t.Errorf("source = %s, want lookup", res.DeductionSource)
	}
	if res.UsedOverride {
		t.Error("UsedOverride should be false without an override")
	}
}

func TestComputeCommaDecimals(t *testing.T) {
	engine := NewEngine(seededRepo(t), KTable{})

	res, err := engine.Compute(Input{
		Material:       "Aço 1020",
		Thickness:      "2,0",
		Channel:        "35",
		InternalRadius: "1,5",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.KFactor.Valid {
		t.Fatal("comma-separated decimals should parse")
	}
	wantK := KFactor(2.0, 4.0, 1.5)
	if math.Abs(res.KFactor.Value-wantK) > eps {
		t.Errorf("KFactor = %f, want %f", res.KFactor.Value, wantK)
	}
}

func TestComputeKTableFallback(t *testing.T) {
	repo := seededRepo(t)
	engine := NewEngine(repo, KTable{})

	// Channel "50" exists in no deduction row, so the K-factor comes
	// from the r/t reference table: r=1, t=2, ratio 0.5 -> 0.37.
	if err := repo.CreateChannel(&models.Channel{Value: "50"}); err != nil {
		t.Fatal(err)
	}
	res, err := engine.Compute(Input{
		Material:       "Aço 1020",
		Thickness:      "2",
		Channel:        "50",
		InternalRadius: "1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.DeductionSource != "not_found" {
		t.Fatalf("source = %s, want not_found", res.DeductionSource)
	}
	if res.DeductionValue.Valid {
		t.Error("deduction value must be unavailable, not zero")
	}
	if !res.KFactor.Valid || math.Abs(res.KFactor.Value-0.37) > eps {
		t.Errorf("table fallback KFactor = %+v, want 0.37", res.KFactor)
	}
	// MinZ depends on the deduction, so it stays unavailable.
	if res.MinZ.Valid {
		t.Error("MinZ must be unavailable without a deduction")
	}
}

func TestComputeFlangesWorkedExample(t *testing.T) {
	engine := NewEngine(seededRepo(t), KTable{})

	// Deduction 4.0 via lookup is overridden to 2.0.
	// Flanges [10, 20, 15]:
	//   f1 = 10 - 2/2 = 9.00   (block start)
	//   f2 = 20 - 2.0 = 18.00  (interior, bends on both sides)
	//   f3 = 15 - 2/2 = 14.00  (block end)
	// blank = 41.00, half = 20.50
	in := Input{
		Material:  "Aço 1020",
		Thickness: "2",
		Channel:   "35",
		Override:  "2",
	}
	in.Flanges[0] = "10"
	in.Flanges[1] = "20"
	in.Flanges[2] = "15"

	res, err := engine.Compute(in)
	if err != nil {
		t.Fatal(err)
	}
	if !res.UsedOverride || res.DeductionSource != "manual" {
		t.Fatalf("override not honored: source=%s used=%v", res.DeductionSource, res.UsedOverride)
	}
	wantNet := []float64{9, 18, 14}
	for i, want := range wantNet {
		got := res.Flanges[i]
		if !got.Net.Valid || math.Abs(got.Net.Value-want) > eps {
			t.Errorf("flange %d net = %+v, want %f", i+1, got.Net, want)
		}
		if !got.Half.Valid || math.Abs(got.Half.Value-want/2) > eps {
			t.Errorf("flange %d half = %+v, want %f", i+1, got.Half, want/2)
		}
	}
	if !res.Blank.Valid || math.Abs(res.Blank.Value-41) > eps {
		t.Errorf("blank = %+v, want 41", res.Blank)
	}
	if !res.HalfBlank.Valid || math.Abs(res.HalfBlank.Value-20.5) > eps {
		t.Errorf("half blank = %+v, want 20.5", res.HalfBlank)
	}
}

func TestComputeFlangeGapSplitsBlocks(t *testing.T) {
	engine := NewEngine(seededRepo(t), KTable{})

	// Flanges [10, 20, _, 15] with deduction 2:
	// blocks are {1,2} and {4}. Flange 2 ends its block, so it loses
	// d/2 like a terminal flange; flange 4 is a singleton.
	//   f1 = 10 - 1 = 9, f2 = 20 - 1 = 19, f4 = 15 - 1 = 14
	// blank keeps aggregating across the gap: 42.
	in := Input{
		Material:  "Aço 1020",
		Thickness: "2",
		Channel:   "35",
		Override:  "2",
	}
	in.Flanges[0] = "10"
	in.Flanges[1] = "20"
	in.Flanges[3] = "15"

	res, err := engine.Compute(in)
	if err != nil {
		t.Fatal(err)
	}
	if res.Flanges[2].Net.Valid {
		t.Error("blank row must produce no result")
	}
	checks := map[int]float64{0: 9, 1: 19, 3: 14}
	for i, want := range checks {
		if got := res.Flanges[i].Net; !got.Valid || math.Abs(got.Value-want) > eps {
			t.Errorf("flange %d net = %+v, want %f", i+1, got, want)
		}
	}
	if !res.Blank.Valid || math.Abs(res.Blank.Value-42) > eps {
		t.Errorf("blank = %+v, want 42", res.Blank)
	}
}

func TestComputeFlangeParseFailureIsLocal(t *testing.T) {
	engine := NewEngine(seededRepo(t), KTable{})

	in := Input{
		Material:  "Aço 1020",
		Thickness: "2",
		Channel:   "35",
		Override:  "2",
	}
	in.Flanges[0] = "10"
	in.Flanges[1] = "abc"
	in.Flanges[2] = "15"

	res, err := engine.Compute(in)
	if err != nil {
		t.Fatal(err)
	}
	if res.Flanges[1].Net.Valid {
		t.Error("unparsable row must be unavailable")
	}
	// The broken row still counts as filled for its neighbors, so
	// flange 1 and 3 both sit at a block end and lose d/2.
	if got := res.Flanges[0].Net; !got.Valid || math.Abs(got.Value-9) > eps {
		t.Errorf("flange 1 net = %+v, want 9", got)
	}
	if got := res.Flanges[2].Net; !got.Valid || math.Abs(got.Value-14) > eps {
		t.Errorf("flange 3 net = %+v, want 14", got)
	}
	// Blank sums only the numeric rows.
	if !res.Blank.Valid || math.Abs(res.Blank.Value-23) > eps {
		t.Errorf("blank = %+v, want 23", res.Blank)
	}
}

func TestComputeFlangeNeedsDeduction(t *testing.T) {
	repo := seededRepo(t)
	if err := repo.CreateChannel(&models.Channel{Value: "50"}); err != nil {
		t.Fatal(err)
	}
	engine := NewEngine(repo, KTable{})

	in := Input{
		Material:  "Aço 1020",
		Thickness: "2",
		Channel:   "50", // no deduction row
	}
	in.Flanges[0] = "10"

	res, err := engine.Compute(in)
	if err != nil {
		t.Fatal(err)
	}
	if res.Flanges[0].Net.Valid {
		t.Error("net length must be N/A while the deduction is unavailable")
	}
	if res.Blank.Valid {
		t.Error("blank must stay empty with no computed rows")
	}
}

func TestComputeBelowMinimumFlag(t *testing.T) {
	engine := NewEngine(seededRepo(t), KTable{})

	// MinFlange = 35/2 + 2 + 2 = 21.5; a 10 mm flange is too short.
	in := Input{
		Material:  "Aço 1020",
		Thickness: "2",
		Channel:   "35",
	}
	in.Flanges[0] = "10"
	in.Flanges[1] = "30"

	res, err := engine.Compute(in)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Flanges[0].BelowMinimum {
		t.Error("10 mm flange should be flagged below the 21.5 minimum")
	}
	if res.Flanges[1].BelowMinimum {
		t.Error("30 mm flange should not be flagged")
	}
}

func TestComputeTonnage(t *testing.T) {
	engine := NewEngine(seededRepo(t), KTable{})

	base := Input{
		Material:  "Aço 1020",
		Thickness: "2",
		Channel:   "35",
	}

	// force=12, length=2500 -> 12*2500/1000 = 30
	in := base
	in.PartLength = "2500"
	res, err := engine.Compute(in)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Tonnage.Valid || math.Abs(res.Tonnage.Value-30) > eps {
		t.Errorf("tonnage = %+v, want 30", res.Tonnage)
	}
	if res.ChannelFits == nil || !*res.ChannelFits {
		t.Error("2500 mm part should fit a 3000 mm die")
	}

	// Blank length: force is already per meter.
	res, err = engine.Compute(base)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Tonnage.Valid || math.Abs(res.Tonnage.Value-12) > eps {
		t.Errorf("tonnage without length = %+v, want 12", res.Tonnage)
	}
	if res.ChannelFits != nil {
		t.Error("fit check needs a part length")
	}

	// Part longer than the die.
	in.PartLength = "3500"
	res, err = engine.Compute(in)
	if err != nil {
		t.Fatal(err)
	}
	if res.ChannelFits == nil || *res.ChannelFits {
		t.Error("3500 mm part must not fit a 3000 mm die")
	}
}

func TestComputeMissingSelections(t *testing.T) {
	engine := NewEngine(seededRepo(t), KTable{})

	res, err := engine.Compute(Input{Thickness: "2", InternalRadius: "1"})
	if err != nil {
		t.Fatal(err)
	}
	if res.DeductionSource != "unavailable" {
		t.Errorf("source = %s, want unavailable", res.DeductionSource)
	}
	// K still resolves via the table: independent computations proceed.
	if !res.KFactor.Valid {
		t.Error("K-factor from table should still compute")
	}
	if res.MinFlange.Valid {
		t.Error("MinFlange needs a channel selection")
	}
	if res.MinZ.Valid || res.Tonnage.Valid {
		t.Error("deduction-dependent outputs must be unavailable")
	}
}
