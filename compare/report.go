// MODUL: report
// ZWECK: Ausgabe von Vergleichs-Ergebnissen (Tabelle, CSV, JSON)
// INPUT: Report
// OUTPUT: Formatierte Ausgabe auf einem io.Writer
// NEBENEFFEKTE: Dateisystem-Schreibzugriff bei Export
// ABHAENGIGKEITEN: github.com/olekukonko/tablewriter, encoding/csv, encoding/json
// HINWEISE: Werte mit 6 Nachkommastellen wie in der Konsolen-Ausgabe

package compare

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

// Report enthaelt alle Ergebnisse eines Vergleichslaufs.
type Report struct {
	RunID     string        `json:"run_id"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration_ns"`
	Config    Config        `json:"config"`
	Patches   int           `json:"patches"`
	Dim       int           `json:"dim"`
	Frames    []FrameResult `json:"frames"`
}

// Format ist ein Ausgabeformat fuer Reports.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
)

// ErrUnknownFormat wird bei unbekanntem Ausgabeformat zurueckgegeben
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat parst ein Ausgabeformat.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatCSV, FormatJSON:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Write schreibt den Report im angegebenen Format.
func (r *Report) Write(w io.Writer, f Format) error {
	switch f {
	case FormatTable:
		return r.WriteTable(w)
	case FormatCSV:
		return r.WriteCSV(w)
	case FormatJSON:
		return r.WriteJSON(w)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Export schreibt den Report in eine Datei.
func (r *Report) Export(path string, f Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report-datei erstellen: %w", err)
	}
	defer file.Close()

	if err := r.Write(file, f); err != nil {
		return err
	}
	return file.Close()
}

var columns = []string{"FRAME", "REUSED", "MAX DIFF", "MEAN DIFF", "REUSED MAX", "NEW MAX"}

func (r *Report) rows() [][]string {
	rows := make([][]string, 0, len(r.Frames))
	for _, f := range r.Frames {
		rows = append(rows, []string{
			strconv.Itoa(f.Index),
			strconv.Itoa(f.Reused),
			formatDiff(f.MaxDiff),
			formatDiff(f.MeanDiff),
			formatDiff(f.ReusedMax),
			formatDiff(f.NewMax),
		})
	}
	return rows
}

func formatDiff(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteTable schreibt die Ergebnisse als Tabelle.
func (r *Report) WriteTable(w io.Writer) error {
	fmt.Fprintf(w, "run %s: %d frames, %d patches, reuse %d, device %s\n\n",
		r.RunID, len(r.Frames), r.Patches, r.Config.ReuseCount, r.Config.Device)

	table := tablewriter.NewWriter(w)
	table.SetHeader(columns)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(r.rows())
	table.Render()
	return nil
}

// WriteCSV schreibt die Ergebnisse als CSV mit Kopfzeile.
func (r *Report) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	if err := cw.WriteAll(r.rows()); err != nil {
		return fmt.Errorf("csv schreiben: %w", err)
	}
	return nil
}

// WriteJSON schreibt den Report als JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Worst gibt den Frame mit der groessten Abweichung zurueck.
func (r *Report) Worst() (FrameResult, bool) {
	if len(r.Frames) == 0 {
		return FrameResult{}, false
	}

	worst := r.Frames[0]
	for _, f := range r.Frames[1:] {
		if f.MaxDiff > worst.MaxDiff {
			worst = f
		}
	}
	return worst, true
}

func (r *Report) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("run", r.RunID),
		slog.Int("frames", len(r.Frames)),
		slog.Int("patches", r.Patches),
	}
	if worst, ok := r.Worst(); ok {
		attrs = append(attrs, slog.Int("worst_frame", worst.Index), slog.Float64("worst_max", worst.MaxDiff))
	}
	return slog.GroupValue(attrs...)
}
