package pipeline

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"slidemovie/internal/buildstate"
	"slidemovie/internal/fileutil"
	"slidemovie/internal/history"
	"slidemovie/internal/slides"
	"slidemovie/internal/textutil"
)

var reportHeader = []string{"slide_id", "title", "notes_length", "duration_sec"}

// ReportRow is one line of the duration report.
type ReportRow struct {
	SlideID     string
	Title       string
	NotesLength int
	DurationSec float64
}

// writeReport lists every slide with a finished clip, in source order.
func (b *Builder) writeReport(r *run, store *buildstate.Store, parsed []slides.Slide) error {
	r.beginStage(StageReport)
	defer r.endStage()

	started := b.now()
	rows := make([]ReportRow, 0, len(parsed))
	for _, slide := range parsed {
		rec := store.Slide(slide.ID)
		clip := b.layout.Artifact(slide.ID + ".mp4")
		if rec == nil || rec.Video == nil || rec.Video.Status != buildstate.StatusGenerated || !fileutil.Exists(clip) {
			continue
		}
		duration := rec.Video.DurationSec
		if probed, err := b.deps.Prober.Duration(r.ctx, clip); err == nil {
			duration = probed
		}
		rows = append(rows, ReportRow{
			SlideID:     slide.ID,
			Title:       textutil.PlainText(slide.Title),
			NotesLength: utf8.RuneCountInString(slides.NormalizeNotes(slide.Notes)),
			DurationSec: duration,
		})
	}

	data, err := RenderReport(rows)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(b.layout.ReportFile, data, fileutil.FileMode(b.layout.ReportFile, 0o644)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	r.unit(filepath.Base(b.layout.ReportFile), history.OutcomeGenerated, fmt.Sprintf("%d rows", len(rows)), started, nil)
	return nil
}

// RenderReport encodes rows as CSV in UTF-8 with a byte order mark, the form
// spreadsheet applications detect as Unicode.
func RenderReport(rows []ReportRow) ([]byte, error) {
	var buf bytes.Buffer
	encoded := transform.NewWriter(&buf, unicode.UTF8BOM.NewEncoder())
	w := csv.NewWriter(encoded)
	w.UseCRLF = true
	if err := w.Write(reportHeader); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.SlideID,
			row.Title,
			strconv.Itoa(row.NotesLength),
			strconv.FormatFloat(row.DurationSec, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("encode report: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	if err := encoded.Close(); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}
