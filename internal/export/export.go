// Package export serializes the wing and step definitions into a portable
// JSON document.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/raidtracker/internal/services"
	"github.com/dmitrijs2005/raidtracker/internal/timex"
)

// test seam
var newExportID = uuid.NewString

// Wing is the exported form of a wing together with its ordered steps.
type Wing struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Bosses      []string `json:"bosses"`
	ImageURL    string   `json:"imageUrl,omitempty"`
	Steps       []Step   `json:"steps"`
}

// Step is the exported form of a step definition.
type Step struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Position    int    `json:"position"`
}

// Document is the top-level export payload. Runs and death events are
// deliberately not included; the document carries reference data only.
type Document struct {
	ExportID   string `json:"exportId"`
	ExportDate string `json:"exportDate"`
	Wings      []Wing `json:"wings"`
}

// Service assembles export documents from the record services.
type Service struct {
	wings *services.WingService
	steps *services.StepService

	now func() time.Time
}

// NewService returns an export service over the wing and step services.
func NewService(wings *services.WingService, steps *services.StepService) *Service {
	return &Service{wings: wings, steps: steps, now: time.Now}
}

// Build collects all wings and their steps into a Document.
func (s *Service) Build(ctx context.Context) (*Document, error) {
	wings, err := s.wings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list wings: %w", err)
	}

	doc := &Document{
		ExportID:   newExportID(),
		ExportDate: s.now().UTC().Format(time.RFC3339),
		Wings:      []Wing{},
	}

	for _, w := range wings {
		steps, err := s.steps.ListForWing(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list steps for wing %d: %w", w.ID, err)
		}

		ew := Wing{
			ID:          w.ID,
			Name:        w.Name,
			Description: w.Description,
			Bosses:      w.Bosses,
			ImageURL:    w.ImageURL,
			Steps:       []Step{},
		}
		for _, st := range steps {
			ew.Steps = append(ew.Steps, Step{
				ID:          st.ID,
				Name:        st.Name,
				Description: st.Description,
				Position:    st.Position,
			})
		}
		doc.Wings = append(doc.Wings, ew)
	}

	return doc, nil
}

// Write builds the document and writes it to w as indented JSON.
func (s *Service) Write(ctx context.Context, w io.Writer) error {
	doc, err := s.Build(ctx)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export document: %w", err)
	}
	data = append(data, '\n')

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export document: %w", err)
	}
	return nil
}

// DefaultFileName returns the suggested file name for an export taken now.
func (s *Service) DefaultFileName() string {
	return fmt.Sprintf("raidtracker-export-%s.json", timex.DayOnly(s.now()))
}

// SaveToFile writes the export document to the file at path, creating or
// truncating it.
func (s *Service) SaveToFile(ctx context.Context, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := s.Write(ctx, f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
