package compare

import (
	"testing"
)

func pdfFixture(author, creator, text string) []byte {
	body := "%PDF-1.4\n" +
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n" +
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n" +
		"3 0 obj\n<< /Type /Page /Parent 2 0 R /Contents 4 0 R >>\nendobj\n" +
		"4 0 obj\n<< /Length 0 >>\nstream\n" +
		"BT /F1 12 Tf 72 720 Td (" + text + ") Tj ET\n" +
		"endstream\nendobj\n" +
		"5 0 obj\n<< /Author (" + author + ") /Creator (" + creator + ") >>\nendobj\n" +
		"%%EOF\n"
	return []byte(body)
}

func TestPDFMetadataAndPageCount(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.pdf", pdfFixture("Maria", "bendcalc", "Hello"))

	props, status := pdfExtractor{}.Extract(path)
	if status != StatusOK {
		t.Fatalf("status = %q", status)
	}
	if len(props) != 7 {
		t.Fatalf("props = %v", props)
	}
	if props[0] != "1" {
		t.Errorf("page count = %q, want 1", props[0])
	}
	if props[1] != "Maria" || props[2] != "bendcalc" {
		t.Errorf("author/creator = %q, %q", props[1], props[2])
	}
	if props[4] != "0" || props[5] != "" {
		t.Errorf("image props = %q, %q", props[4], props[5])
	}
}

func TestPDFMissingMetadataDefaults(t *testing.T) {
	content := []byte("%PDF-1.4\n1 0 obj\n<< /Type /Page >>\nendobj\n%%EOF\n")
	dir := t.TempDir()
	path := writeFile(t, dir, "bare.pdf", content)

	props, status := pdfExtractor{}.Extract(path)
	if status != StatusOK {
		t.Fatalf("status = %q", status)
	}
	if props[1] != "N/A" || props[2] != "N/A" {
		t.Errorf("author/creator = %q, %q, want N/A", props[1], props[2])
	}
}

func TestPDFTextHashIgnoresMetadata(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.pdf", pdfFixture("Maria", "bendcalc", "Hello"))
	b := writeFile(t, dir, "b.pdf", pdfFixture("João", "other", "Hello"))
	c := writeFile(t, dir, "c.pdf", pdfFixture("Maria", "bendcalc", "Goodbye"))

	propsA, _ := pdfExtractor{}.Extract(a)
	propsB, _ := pdfExtractor{}.Extract(b)
	propsC, _ := pdfExtractor{}.Extract(c)

	if propsA[3] != propsB[3] {
		t.Error("same text must hash the same regardless of metadata")
	}
	if propsA[3] == propsC[3] {
		t.Error("different text must hash differently")
	}
}

func TestPDFEmbeddedImage(t *testing.T) {
	body := string(pdfFixture("A", "B", "x"))
	body += "6 0 obj\n<< /Subtype /Image /Length 4 >>\nstream\n\x01\x02\x03\x04\nendstream\nendobj\n"
	dir := t.TempDir()
	path := writeFile(t, dir, "img.pdf", []byte(body))

	props, status := pdfExtractor{}.Extract(path)
	if status != StatusOK {
		t.Fatalf("status = %q", status)
	}
	if props[4] != "1" {
		t.Errorf("image count = %q, want 1", props[4])
	}
	if props[5] == "" {
		t.Error("image digest must be set when images exist")
	}
}

func TestPDFRejectsNonPDF(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "not.pdf", []byte("plain text"))

	props, status := pdfExtractor{}.Extract(path)
	if props != nil || status != "Arquivo não é um PDF" {
		t.Errorf("props=%v status=%q", props, status)
	}
}
