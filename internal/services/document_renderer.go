package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hrdocs/personnel-backend/internal/config"
	"github.com/hrdocs/personnel-backend/internal/models"
	"github.com/hrdocs/personnel-backend/pkg/docx"
)

// DocumentRenderer turns stored contexts into DOCX artifacts
type DocumentRenderer struct {
	manifest     *docx.Manifest
	templatesDir string
	previewDir   string
	documentsDir string
}

// NewDocumentRenderer loads the template manifest and prepares output directories
func NewDocumentRenderer(cfg config.StorageConfig) (*DocumentRenderer, error) {
	manifest, err := docx.LoadManifest(cfg.TemplatesDir)
	if err != nil {
		return nil, err
	}
	for _, dir := range []string{cfg.PreviewDir, cfg.DocumentsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return &DocumentRenderer{
		manifest:     manifest,
		templatesDir: cfg.TemplatesDir,
		previewDir:   cfg.PreviewDir,
		documentsDir: cfg.DocumentsDir,
	}, nil
}

// Title returns the default title for a document type
func (r *DocumentRenderer) Title(docType models.DocumentType) string {
	if spec, ok := r.manifest.Lookup(string(docType)); ok && spec.Title != "" {
		return spec.Title
	}
	return string(docType)
}

func (r *DocumentRenderer) templatePath(docType models.DocumentType) (string, error) {
	spec, ok := r.manifest.Lookup(string(docType))
	if !ok {
		return "", fmt.Errorf("no template registered for %s", docType)
	}
	path := filepath.Join(r.templatesDir, spec.File)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("template for %s: %w", docType, err)
	}
	return path, nil
}

// PreviewPath is where drafts and previews of a document are written
func (r *DocumentRenderer) PreviewPath(doc *models.Document) string {
	return filepath.Join(r.previewDir, fmt.Sprintf("emp_%04d_doc_%06d_preview.docx", doc.EmployeeID, doc.ID))
}

// FinalPath is where the signed render of a document is written
func (r *DocumentRenderer) FinalPath(doc *models.Document) string {
	return filepath.Join(r.documentsDir, fmt.Sprintf("emp_%04d_doc_%06d_signed.docx", doc.EmployeeID, doc.ID))
}

// RenderPreview renders the current context into the preview directory
func (r *DocumentRenderer) RenderPreview(doc *models.Document) (string, error) {
	path := r.PreviewPath(doc)
	if err := r.render(doc, path); err != nil {
		return "", err
	}
	return path, nil
}

// RenderFinal renders the signed artifact and returns its path and SHA-256
func (r *DocumentRenderer) RenderFinal(doc *models.Document) (string, string, error) {
	path := r.FinalPath(doc)
	if err := r.render(doc, path); err != nil {
		return "", "", err
	}
	sum, err := fileSHA256(path)
	if err != nil {
		os.Remove(path)
		return "", "", err
	}
	return path, sum, nil
}

func (r *DocumentRenderer) render(doc *models.Document, out string) error {
	tpl, err := r.templatePath(doc.Type)
	if err != nil {
		return err
	}
	if err := docx.Render(tpl, out, doc.Context.TemplateData()); err != nil {
		return fmt.Errorf("failed to render document %d: %w", doc.ID, err)
	}
	return nil
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// removeFiles deletes artifacts written by a failed operation
func removeFiles(paths []string) {
	for _, p := range paths {
		if p != "" {
			os.Remove(p)
		}
	}
}
