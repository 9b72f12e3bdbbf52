package compare

import (
	"strings"
	"testing"
)

// dxfFixture is a minimal drawing with a LINE from (0,0) to (100,50)
// and a CIRCLE centred at (25,25).
func dxfFixture() []byte {
	pairs := []string{
		"0", "SECTION",
		"2", "HEADER",
		"0", "ENDSEC",
		"0", "SECTION",
		"2", "ENTITIES",
		"0", "LINE",
		"10", "0.0",
		"20", "0.0",
		"11", "100.0",
		"21", "50.0",
		"0", "CIRCLE",
		"10", "25.0",
		"20", "25.0",
		"0", "ENDSEC",
		"0", "EOF",
	}
	return []byte(strings.Join(pairs, "\n") + "\n")
}

func TestDXFEntityCountAndBox(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "part.dxf", dxfFixture())

	props, status := dxfExtractor{}.Extract(path)
	if status != StatusOK {
		t.Fatalf("status = %q", status)
	}
	want := Properties{"2 entidades", "(0.000, 0.000)", "(100.000, 50.000)"}
	if !props.Equal(want) {
		t.Errorf("props = %v, want %v", props, want)
	}
}

func TestDXFMalformedEntityIsSkipped(t *testing.T) {
	// The POINT carries a garbage ordinate: its coordinates must not
	// reach the global box, but it still counts as an entity and the
	// LINE's box survives.
	pairs := []string{
		"0", "SECTION",
		"2", "ENTITIES",
		"0", "POINT",
		"10", "999.0",
		"20", "not-a-number",
		"0", "LINE",
		"10", "1.0",
		"20", "2.0",
		"11", "3.0",
		"21", "4.0",
		"0", "ENDSEC",
		"0", "EOF",
	}
	dir := t.TempDir()
	path := writeFile(t, dir, "part.dxf", []byte(strings.Join(pairs, "\n")+"\n"))

	props, status := dxfExtractor{}.Extract(path)
	if status != StatusOK {
		t.Fatalf("status = %q", status)
	}
	want := Properties{"2 entidades", "(1.000, 2.000)", "(3.000, 4.000)"}
	if !props.Equal(want) {
		t.Errorf("props = %v, want %v", props, want)
	}
}

func TestDXFNoGeometryYieldsZeroBox(t *testing.T) {
	pairs := []string{
		"0", "SECTION",
		"2", "HEADER",
		"0", "ENDSEC",
		"0", "EOF",
	}
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.dxf", []byte(strings.Join(pairs, "\n")+"\n"))

	props, status := dxfExtractor{}.Extract(path)
	if status != StatusOK {
		t.Fatalf("status = %q", status)
	}
	want := Properties{"0 entidades", "(0.000, 0.000)", "(0.000, 0.000)"}
	if !props.Equal(want) {
		t.Errorf("props = %v, want %v", props, want)
	}
}
