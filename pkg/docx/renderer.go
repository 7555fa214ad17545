// Package docx fills {{ placeholder }} fields of Word templates.
//
// Placeholders may be split across runs by Word; the XML between "{{" and
// "}}" is dropped together with the placeholder, which merges the runs.
// Dotted keys ({{ employee.last_name }}) walk nested maps.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Render reads the template at templatePath, substitutes placeholders with
// values from data and writes the result to outPath.
func Render(templatePath, outPath string, data map[string]interface{}) error {
	src, err := zip.OpenReader(templatePath)
	if err != nil {
		return fmt.Errorf("failed to open template %s: %w", templatePath, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	tmp := outPath + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}

	if err := renderTo(out, &src.Reader, data); err != nil {
		out.Close()
		os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, outPath)
}

// RenderBytes renders an in-memory template.
func RenderBytes(template []byte, data map[string]interface{}) ([]byte, error) {
	r, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("invalid docx: %w", err)
	}
	var buf bytes.Buffer
	if err := renderTo(&buf, r, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderTo(w io.Writer, src *zip.Reader, data map[string]interface{}) error {
	zw := zip.NewWriter(w)
	for _, f := range src.File {
		if err := copyEntry(zw, f, data); err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}

func copyEntry(zw *zip.Writer, f *zip.File, data map[string]interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	defer rc.Close()

	header := f.FileHeader
	dst, err := zw.CreateHeader(&header)
	if err != nil {
		return err
	}

	if !isTextPart(f.Name) {
		_, err = io.Copy(dst, rc)
		return err
	}

	content, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	_, err = dst.Write([]byte(Fill(string(content), data)))
	return err
}

// isTextPart selects the parts of the package that can hold placeholders.
func isTextPart(name string) bool {
	if !strings.HasPrefix(name, "word/") || !strings.HasSuffix(name, ".xml") {
		return false
	}
	base := strings.TrimSuffix(strings.TrimPrefix(name, "word/"), ".xml")
	return base == "document" || strings.HasPrefix(base, "header") ||
		strings.HasPrefix(base, "footer") || base == "footnotes" || base == "endnotes"
}

// Fill replaces every {{ key }} in an XML part. Unknown keys render empty.
func Fill(part string, data map[string]interface{}) string {
	var b strings.Builder
	for {
		open := strings.Index(part, "{{")
		if open < 0 {
			b.WriteString(part)
			return b.String()
		}
		end := strings.Index(part[open+2:], "}}")
		if end < 0 {
			b.WriteString(part)
			return b.String()
		}
		end += open + 2

		key := strings.TrimSpace(tagPattern.ReplaceAllString(part[open+2:end], ""))
		b.WriteString(part[:open])
		b.WriteString(escape(Lookup(data, key)))
		part = part[end+2:]
	}
}

// Lookup resolves a dotted key against nested maps and formats the value.
func Lookup(data map[string]interface{}, key string) string {
	var cur interface{} = data
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return ""
		}
		cur, ok = m[part]
		if !ok {
			return ""
		}
	}
	switch v := cur.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "так"
		}
		return "ні"
	default:
		return fmt.Sprint(v)
	}
}

func escape(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
