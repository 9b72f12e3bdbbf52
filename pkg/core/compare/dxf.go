package compare

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// dxfExtractor fingerprints a DXF drawing by entity count and the 2D
// bounding box of its model space. Coordinates are accumulated per
// entity, so one malformed entity is skipped without losing the box
// contributed by the rest. No contributing geometry yields a
// degenerate zero box, not a failure.
type dxfExtractor struct{}

type dxfBox struct {
	minX, minY float64
	maxX, maxY float64
	hasData    bool
}

func (b *dxfBox) extend(x, y float64) {
	if !b.hasData {
		b.minX, b.maxX, b.minY, b.maxY = x, x, y, y
		b.hasData = true
		return
	}
	if x < b.minX {
		b.minX = x
	}
	if x > b.maxX {
		b.maxX = x
	}
	if y < b.minY {
		b.minY = y
	}
	if y > b.maxY {
		b.maxY = y
	}
}

func (b *dxfBox) merge(other dxfBox) {
	if !other.hasData {
		return
	}
	b.extend(other.minX, other.minY)
	b.extend(other.maxX, other.maxY)
}

func (dxfExtractor) Extract(path string) (Properties, string) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "Erro ao ler o arquivo"
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	readPair := func() (code int, value string, ok bool) {
		if !scanner.Scan() {
			return 0, "", false
		}
		codeStr := strings.TrimSpace(scanner.Text())
		if !scanner.Scan() {
			return 0, "", false
		}
		c, err := strconv.Atoi(codeStr)
		if err != nil {
			return 0, "", false
		}
		return c, strings.TrimSpace(scanner.Text()), true
	}

	inEntities := false
	entityCount := 0
	var box dxfBox
	var entityBox dxfBox
	entityBad := false

	flushEntity := func() {
		if !entityBad {
			box.merge(entityBox)
		}
		entityBox = dxfBox{}
		entityBad = false
	}

	var pendingX float64
	var haveX bool

	for {
		code, value, ok := readPair()
		if !ok {
			break
		}
		switch {
		case code == 0 && value == "SECTION":
			code, value, ok = readPair()
			if !ok {
				break
			}
			inEntities = code == 2 && value == "ENTITIES"
		case code == 0 && value == "ENDSEC":
			if inEntities {
				flushEntity()
			}
			inEntities = false
		case code == 0 && inEntities:
			flushEntity()
			entityCount++
			haveX = false
		case inEntities && code >= 10 && code <= 18:
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				entityBad = true
				continue
			}
			pendingX, haveX = v, true
		case inEntities && code >= 20 && code <= 28:
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				entityBad = true
				continue
			}
			if haveX {
				entityBox.extend(pendingX, v)
				haveX = false
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Sprintf("Erro: %v", err)
	}
	flushEntity()

	if !box.hasData {
		box = dxfBox{} // degenerate zero box
	}
	return Properties{
		fmt.Sprintf("%d entidades", entityCount),
		fmt.Sprintf("(%.3f, %.3f)", box.minX, box.minY),
		fmt.Sprintf("(%.3f, %.3f)", box.maxX, box.maxY),
	}, StatusOK
}
