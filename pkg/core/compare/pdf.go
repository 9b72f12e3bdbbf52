package compare

import (
	"bytes"
	"compress/zlib"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
)

// pdfExtractor fingerprints a PDF by page count, author/creator
// metadata, a hash of the visible text operators, the count and hash
// of embedded images, and the whole-file hash. It reads the PDF
// structures it needs directly; damaged streams are skipped rather
// than failing the file.
type pdfExtractor struct{}

var (
	pdfPage    = regexp.MustCompile(`/Type\s*/Page`)
	pdfPages   = regexp.MustCompile(`/Type\s*/Pages`)
	pdfAuthor  = regexp.MustCompile(`/Author\s*\(([^)]*)\)`)
	pdfCreator = regexp.MustCompile(`/Creator\s*\(([^)]*)\)`)
	pdfStream  = regexp.MustCompile(`(?s)stream\r?\n`)
	pdfText    = regexp.MustCompile(`(?s)BT(.*?)ET`)
)

func (pdfExtractor) Extract(path string) (Properties, string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "Erro ao ler o arquivo"
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, "Arquivo não é um PDF"
	}

	pageCount := len(pdfPage.FindAll(data, -1)) - len(pdfPages.FindAll(data, -1))
	if pageCount < 0 {
		pageCount = 0
	}

	author, creator := "N/A", "N/A"
	if m := pdfAuthor.FindSubmatch(data); m != nil && len(m[1]) > 0 {
		author = string(m[1])
	}
	if m := pdfCreator.FindSubmatch(data); m != nil && len(m[1]) > 0 {
		creator = string(m[1])
	}

	textHash := sha256.New()
	imageHash := sha256.New()
	imageCount := 0

	for _, loc := range pdfStream.FindAllIndex(data, -1) {
		start := loc[1]
		end := bytes.Index(data[start:], []byte("endstream"))
		if end < 0 {
			continue
		}
		raw := data[start : start+end]

		// The stream dictionary sits just before the keyword.
		dictFrom := loc[0] - 512
		if dictFrom < 0 {
			dictFrom = 0
		}
		dict := data[dictFrom:loc[0]]

		if bytes.Contains(dict, []byte("/Subtype/Image")) || bytes.Contains(dict, []byte("/Subtype /Image")) {
			imageHash.Write(raw)
			imageCount++
			continue
		}

		content := raw
		if bytes.Contains(dict, []byte("FlateDecode")) {
			decoded, err := inflate(raw)
			if err != nil {
				continue // damaged stream, skip it
			}
			content = decoded
		}
		for _, m := range pdfText.FindAllSubmatch(content, -1) {
			textHash.Write(m[1])
		}
	}

	fileHash, err := FileSHA256(path)
	if err != nil {
		return nil, "Erro ao calcular hash"
	}

	imageDigest := ""
	if imageCount > 0 {
		imageDigest = hex.EncodeToString(imageHash.Sum(nil))
	}
	return Properties{
		strconv.Itoa(pageCount),
		author,
		creator,
		hex.EncodeToString(textHash.Sum(nil)),
		strconv.Itoa(imageCount),
		imageDigest,
		fileHash,
	}, StatusOK
}

func inflate(raw []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	return out, nil
}

// rawExtractor covers formats with no parser (DWG): the whole-file
// hash is the entire fingerprint.
type rawExtractor struct{}

func (rawExtractor) Extract(path string) (Properties, string) {
	hash, err := FileSHA256(path)
	if err != nil {
		return nil, "Erro ao calcular hash"
	}
	return Properties{hash}, StatusOK
}
