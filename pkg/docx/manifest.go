package docx

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ManifestFile is the manifest name looked up in the templates directory.
const ManifestFile = "manifest.yaml"

// TemplateSpec describes one template entry
type TemplateSpec struct {
	File  string `yaml:"file"`
	Title string `yaml:"title"`
}

// Manifest maps a document type code to its template
type Manifest struct {
	Templates map[string]TemplateSpec `yaml:"templates"`
}

// DefaultManifest is used when no manifest file exists.
func DefaultManifest() *Manifest {
	return &Manifest{Templates: map[string]TemplateSpec{
		"HIRE":                {File: "hire_order_P1.docx", Title: "Наказ про прийняття на роботу (П-1)"},
		"DISMISSAL":           {File: "dismissal_order_P4.docx", Title: "Наказ про припинення трудового договору (П-4)"},
		"VACATION":            {File: "vacation_order.docx", Title: "Наказ про надання відпустки"},
		"TRAINING":            {File: "training_referral.docx", Title: "Направлення на підвищення кваліфікації"},
		"INTERNSHIP_REFERRAL": {File: "internship_assignment.docx", Title: "Наказ про стажування"},
	}}
}

// LoadManifest reads dir/manifest.yaml. Entries missing from the file fall
// back to DefaultManifest.
func LoadManifest(dir string) (*Manifest, error) {
	m := DefaultManifest()

	raw, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read template manifest: %w", err)
	}

	var file Manifest
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse template manifest: %w", err)
	}
	for code, spec := range file.Templates {
		def := m.Templates[code]
		if spec.File == "" {
			spec.File = def.File
		}
		if spec.Title == "" {
			spec.Title = def.Title
		}
		m.Templates[code] = spec
	}
	return m, nil
}

// Lookup returns the template entry for a type code
func (m *Manifest) Lookup(code string) (TemplateSpec, bool) {
	spec, ok := m.Templates[code]
	return spec, ok
}
