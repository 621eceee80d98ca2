package services

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"gorm.io/gorm"

	"stories-platform-api/models"
)

// MaterialIngestor turns PDF files into education_materials rows. Runs are
// idempotent: a file whose hash is already stored is skipped.
type MaterialIngestor struct {
	DB          *gorm.DB
	SectionSize int // approximate characters per material section
}

const defaultSectionSize = 4000

type IngestStats struct {
	FilesSeen    int
	FilesSkipped int
	Sections     int
}

// IngestDir walks dir for *.pdf files and ingests each one.
func (m *MaterialIngestor) IngestDir(dir string) (IngestStats, error) {
	var stats IngestStats
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return nil
		}
		stats.FilesSeen++
		sections, err := m.IngestFile(path)
		if err != nil {
			log.Printf("ingest %s failed: %v", path, err)
			return nil
		}
		if sections == 0 {
			stats.FilesSkipped++
		}
		stats.Sections += sections
		return nil
	})
	return stats, err
}

// IngestFile parses one PDF and inserts its sections. Returns the number
// of sections written (0 when the file was already ingested).
func (m *MaterialIngestor) IngestFile(path string) (int, error) {
	hash, err := fileHash(path)
	if err != nil {
		return 0, fmt.Errorf("hash %s: %w", path, err)
	}

	var existing models.EducationMaterial
	err = m.DB.Where("source_hash = ?", hash).First(&existing).Error
	if err == nil {
		return 0, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	pages, err := extractPDFPages(path)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", path, err)
	}

	sectionSize := m.SectionSize
	if sectionSize <= 0 {
		sectionSize = defaultSectionSize
	}
	sections := SplitIntoSections(pages, sectionSize)
	if len(sections) == 0 {
		return 0, fmt.Errorf("no text extracted from %s", path)
	}

	title := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	now := time.Now()

	err = m.DB.Transaction(func(tx *gorm.DB) error {
		for i, section := range sections {
			material := models.EducationMaterial{
				Title:      title,
				SourceFile: filepath.Base(path),
				SourceHash: hash,
				Section:    i + 1,
				Content:    section.Text,
				PageStart:  section.PageStart,
				PageEnd:    section.PageEnd,
				CreatedAt:  now,
			}
			if err := tx.Create(&material).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(sections), nil
}

// MaterialSection is a contiguous run of page text sized for reading units.
type MaterialSection struct {
	Text      string
	PageStart int
	PageEnd   int
}

// SplitIntoSections groups page texts into sections of roughly sectionSize
// characters, never splitting inside a page.
func SplitIntoSections(pages []string, sectionSize int) []MaterialSection {
	var sections []MaterialSection
	var buf bytes.Buffer
	pageStart := 0

	flush := func(pageEnd int) {
		text := strings.TrimSpace(buf.String())
		if text == "" {
			buf.Reset()
			return
		}
		sections = append(sections, MaterialSection{
			Text:      text,
			PageStart: pageStart + 1,
			PageEnd:   pageEnd + 1,
		})
		buf.Reset()
	}

	for i, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		if buf.Len() == 0 {
			pageStart = i
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(page)
		if buf.Len() >= sectionSize {
			flush(i)
		}
	}
	if buf.Len() > 0 {
		flush(len(pages) - 1)
	}
	return sections
}

func extractPDFPages(path string) ([]string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
