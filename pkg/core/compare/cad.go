package compare

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// solid is the lightweight shape model both CAD readers produce:
// topology counts plus the defining point cloud. The fingerprint
// measures derive from it without a geometry kernel.
type solid struct {
	faces    int
	edges    int
	vertices int
	points   [][3]float64
}

func (s *solid) empty() bool {
	return s.faces == 0 && s.edges == 0 && s.vertices == 0 && len(s.points) == 0
}

// solidReader reads one CAD file into the shared shape model. STEP and
// IGES each provide an implementation.
type solidReader interface {
	read(path string) (*solid, error)
}

// cadExtractor turns a parsed solid into the comparable tuple:
// topology counts, bounding volume and surface, centroid and principal
// second moments of the point cloud, each at fixed precision.
type cadExtractor struct {
	reader solidReader
}

func (e *cadExtractor) Extract(path string) (Properties, string) {
	shape, err := e.reader.read(path)
	if err != nil {
		return nil, "Erro ao ler o arquivo"
	}
	if shape.empty() {
		return nil, "Nenhuma geometria encontrada"
	}

	volume, area := boundingMeasures(shape.points)
	cx, cy, cz := centroid(shape.points)
	m1, m2, m3 := principalMoments(shape.points, cx, cy, cz)

	return Properties{
		fmt.Sprintf("%d F, %d A, %d V", shape.faces, shape.edges, shape.vertices),
		strconv.FormatFloat(round(volume, 6), 'f', -1, 64),
		strconv.FormatFloat(round(area, 6), 'f', -1, 64),
		fmt.Sprintf("(%.3f, %.3f, %.3f)", cx, cy, cz),
		fmt.Sprintf("(%.3f, %.3f, %.3f)", m1, m2, m3),
	}, StatusOK
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}

// boundingMeasures returns the volume and surface area of the axis-
// aligned box enclosing the points.
func boundingMeasures(points [][3]float64) (volume, area float64) {
	if len(points) == 0 {
		return 0, 0
	}
	min := points[0]
	max := points[0]
	for _, p := range points[1:] {
		for a := 0; a < 3; a++ {
			if p[a] < min[a] {
				min[a] = p[a]
			}
			if p[a] > max[a] {
				max[a] = p[a]
			}
		}
	}
	dx, dy, dz := max[0]-min[0], max[1]-min[1], max[2]-min[2]
	return dx * dy * dz, 2 * (dx*dy + dx*dz + dy*dz)
}

func centroid(points [][3]float64) (cx, cy, cz float64) {
	if len(points) == 0 {
		return 0, 0, 0
	}
	for _, p := range points {
		cx += p[0]
		cy += p[1]
		cz += p[2]
	}
	n := float64(len(points))
	return cx / n, cy / n, cz / n
}

// principalMoments returns the per-axis second moments of the point
// cloud about its centroid, ascending.
func principalMoments(points [][3]float64, cx, cy, cz float64) (float64, float64, float64) {
	if len(points) == 0 {
		return 0, 0, 0
	}
	var ixx, iyy, izz float64
	for _, p := range points {
		dx, dy, dz := p[0]-cx, p[1]-cy, p[2]-cz
		ixx += dy*dy + dz*dz
		iyy += dx*dx + dz*dz
		izz += dx*dx + dy*dy
	}
	n := float64(len(points))
	m := []float64{ixx / n, iyy / n, izz / n}
	sort.Float64s(m)
	return m[0], m[1], m[2]
}

// stepReader parses the DATA section of an ISO 10303-21 (STEP) file.
// Records may span lines; they are reassembled up to the closing
// semicolon before matching.
type stepReader struct{}

var stepPoint = regexp.MustCompile(`CARTESIAN_POINT\s*\(\s*'[^']*'\s*,\s*\(([^)]*)\)`)

func (stepReader) read(path string) (*solid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s solid
	var record strings.Builder
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		record.WriteString(strings.TrimSpace(scanner.Text()))
		if !strings.HasSuffix(record.String(), ";") {
			continue
		}
		line := record.String()
		record.Reset()

		switch {
		case strings.Contains(line, "ADVANCED_FACE"), strings.Contains(line, "FACE_SURFACE"):
			s.faces++
		case strings.Contains(line, "EDGE_CURVE"):
			s.edges++
		case strings.Contains(line, "VERTEX_POINT"):
			s.vertices++
		}
		if m := stepPoint.FindStringSubmatch(line); m != nil {
			if p, ok := parseTriple(m[1]); ok {
				s.points = append(s.points, p)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}

func parseTriple(csv string) ([3]float64, bool) {
	parts := strings.Split(csv, ",")
	var p [3]float64
	for i := 0; i < len(parts) && i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return p, false
		}
		p[i] = v
	}
	return p, len(parts) > 0
}

// IGES entity type numbers carried in the directory section.
const (
	igesVertexList = 502
	igesEdgeList   = 504
	igesFace       = 510
	igesPoint      = 116
)

// igesReader parses the fixed-column IGES record format: column 73
// carries the section letter, directory entries span two lines with
// the entity type in the first 8 columns.
type igesReader struct{}

func (igesReader) read(path string) (*solid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s solid
	pointEntries := make(map[int]bool) // directory sequence numbers of 116 entities
	directoryLine := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) < 73 {
			continue
		}
		switch line[72] {
		case 'D':
			directoryLine++
			if directoryLine%2 == 1 { // first line of each entry pair
				entityType, _ := strconv.Atoi(strings.TrimSpace(line[0:8]))
				switch entityType {
				case igesFace:
					s.faces++
				case igesEdgeList:
					s.edges++
				case igesVertexList:
					s.vertices++
				case igesPoint:
					// Its own sequence number sits after the section letter.
					seq, err := strconv.Atoi(strings.TrimSpace(line[73:]))
					if err == nil {
						pointEntries[seq] = true
					}
				}
			}
		case 'P':
			de, _ := strconv.Atoi(strings.TrimSpace(line[64:72]))
			if !pointEntries[de] {
				continue
			}
			fields := strings.FieldsFunc(strings.TrimSpace(line[:64]), func(r rune) bool {
				return r == ',' || r == ';'
			})
			// 116,x,y,z,...
			if len(fields) >= 4 {
				var p [3]float64
				ok := true
				for i := 0; i < 3; i++ {
					v, err := strconv.ParseFloat(strings.TrimSpace(fields[i+1]), 64)
					if err != nil {
						ok = false
						break
					}
					p[i] = v
				}
				if ok {
					s.points = append(s.points, p)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &s, nil
}
