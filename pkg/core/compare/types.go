package compare

// FileType is a declared comparison format. The declared type drives
// extractor dispatch; it is never sniffed from content.
type FileType string

const (
	TypeSTEP FileType = "STEP"
	TypeIGES FileType = "IGES"
	TypeDXF  FileType = "DXF"
	TypePDF  FileType = "PDF"
	TypeDWG  FileType = "DWG"
)

// Extensions maps each declared type to its file-picker filters.
func (t FileType) Extensions() []string {
	switch t {
	case TypeSTEP:
		return []string{".step", ".stp"}
	case TypeIGES:
		return []string{".igs", ".iges"}
	case TypeDXF:
		return []string{".dxf"}
	case TypePDF:
		return []string{".pdf"}
	case TypeDWG:
		return []string{".dwg"}
	default:
		return nil
	}
}

// Properties is the ordered fingerprint tuple for one file. Entries
// are pre-formatted strings so equality is plain tuple equality.
type Properties []string

// Equal reports exact tuple equality. Both sides must be non-nil;
// comparability of error results is the caller's concern.
func (p Properties) Equal(other Properties) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Statuses reported per side of a pair.
const (
	StatusOK     = "OK"
	StatusNoPair = "Sem par"
)
