package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml":   documentXML,
		"word/styles.xml":     `<w:styles>{{ untouched }}</w:styles>`,
	} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readPart(t *testing.T, docx []byte, name string) string {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	require.NoError(t, err)
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			return string(b)
		}
	}
	t.Fatalf("part %s not found", name)
	return ""
}

func TestFill(t *testing.T) {
	data := map[string]interface{}{
		"order_number": "3/2025",
		"employee":     map[string]interface{}{"last_name": "Коваль"},
		"note":         "A & B <C>",
		"severance":    true,
		"days":         10,
	}

	t.Run("Simple", func(t *testing.T) {
		assert.Equal(t, "<w:t>№ 3/2025</w:t>", Fill("<w:t>№ {{ order_number }}</w:t>", data))
	})

	t.Run("SplitAcrossRuns", func(t *testing.T) {
		in := `<w:r><w:t>{{ order_</w:t></w:r><w:r><w:rPr><w:b/></w:rPr><w:t>number }}</w:t></w:r>`
		assert.Equal(t, `<w:r><w:t>3/2025</w:t></w:r>`, Fill(in, data))
	})

	t.Run("Dotted", func(t *testing.T) {
		assert.Equal(t, "Коваль", Fill("{{employee.last_name}}", data))
	})

	t.Run("EscapesAndFormats", func(t *testing.T) {
		assert.Equal(t, "A &amp; B &lt;C&gt;", Fill("{{ note }}", data))
		assert.Equal(t, "так 10", Fill("{{ severance }} {{ days }}", data))
	})

	t.Run("UnknownAndUnclosed", func(t *testing.T) {
		assert.Equal(t, "[]", Fill("[{{ missing }}]", data))
		assert.Equal(t, "{{ open", Fill("{{ open", data))
	})
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	tpl := filepath.Join(dir, "tpl.docx")
	require.NoError(t, os.WriteFile(tpl, buildDocx(t, `<w:t>{{ full_name }}</w:t>`), 0o644))

	out := filepath.Join(dir, "out", "emp_0001_doc_000001_preview.docx")
	require.NoError(t, Render(tpl, out, map[string]interface{}{"full_name": "Коваль Олена"}))

	rendered, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "<w:t>Коваль Олена</w:t>", readPart(t, rendered, "word/document.xml"))
	assert.Equal(t, "<w:styles>{{ untouched }}</w:styles>", readPart(t, rendered, "word/styles.xml"))

	_, err = os.Stat(out + ".part")
	assert.True(t, os.IsNotExist(err))
}

func TestRenderMissingTemplate(t *testing.T) {
	err := Render(filepath.Join(t.TempDir(), "nope.docx"), filepath.Join(t.TempDir(), "o.docx"), nil)
	assert.Error(t, err)
}

func TestLoadManifest(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		m, err := LoadManifest(t.TempDir())
		require.NoError(t, err)
		spec, ok := m.Lookup("HIRE")
		require.True(t, ok)
		assert.Equal(t, "hire_order_P1.docx", spec.File)
	})

	t.Run("Override", func(t *testing.T) {
		dir := t.TempDir()
		yml := "templates:\n  VACATION:\n    file: vacation_v2.docx\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(yml), 0o644))

		m, err := LoadManifest(dir)
		require.NoError(t, err)
		spec, _ := m.Lookup("VACATION")
		assert.Equal(t, "vacation_v2.docx", spec.File)
		assert.Equal(t, "Наказ про надання відпустки", spec.Title)
		spec, _ = m.Lookup("TRAINING")
		assert.Equal(t, "training_referral.docx", spec.File)
	})

	t.Run("Malformed", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte("templates: ["), 0o644))
		_, err := LoadManifest(dir)
		assert.Error(t, err)
	})
}
