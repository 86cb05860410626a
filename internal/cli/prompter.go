package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/camin-energy/tankflow/internal/engine"
	"github.com/camin-energy/tankflow/internal/model"
)

// ImportPrompter walks a reconciliation session interactively, asking the
// user to resolve every record the matcher could not settle on its own.
type ImportPrompter struct {
	writer io.Writer
	reader *LineReader
}

// NewImportPrompter creates a prompter over the given streams. Nil defaults
// to stdin/stdout.
func NewImportPrompter(reader io.Reader, writer io.Writer) *ImportPrompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &ImportPrompter{
		reader: NewLineReader(reader),
		writer: writer,
	}
}

// Review presents every extracted record. Exact matches are reported as
// already selected; records without candidates are reported as skipped;
// everything else prompts for a candidate choice. The user can stop the
// review early, keeping decisions made so far.
func (p *ImportPrompter) Review(ctx context.Context, rec *engine.Reconciler) error {
	for fileIdx, res := range rec.Results() {
		fmt.Fprintln(p.writer, FormatTitle("Document: "+res.Filename))
		for _, extractErr := range res.ExtractionErrors {
			fmt.Fprintln(p.writer, FormatWarning(extractErr))
		}

		for recIdx, record := range res.Records {
			key := engine.RecordKey{File: fileIdx, Record: recIdx}

			if rec.IsSelected(key) {
				sel, _ := rec.Selected(key)
				fmt.Fprintln(p.writer, FormatSuccess(fmt.Sprintf(
					"%q matched %s (%.0f%% confidence), %s of %.1f bbl on %s",
					record.Extracted.TankName, record.BestMatch.TankName,
					record.BestMatch.Confidence, sel.Type, sel.Volume, sel.Date)))
				continue
			}
			if !rec.IsSelectable(key) {
				fmt.Fprintln(p.writer, FormatWarning(fmt.Sprintf(
					"%q has no tank candidates; record skipped", record.Extracted.TankName)))
				continue
			}

			stop, err := p.resolveRecord(ctx, rec, key, record)
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
	}
	return nil
}

// resolveRecord prompts for one ambiguous record. It reports whether the
// user asked to stop the review.
func (p *ImportPrompter) resolveRecord(ctx context.Context, rec *engine.Reconciler, key engine.RecordKey, record model.RecordWithMatches) (bool, error) {
	fmt.Fprintln(p.writer, RenderBox("Unmatched Record", p.formatRecord(record)))

	for i, cand := range record.Candidates {
		fmt.Fprintf(p.writer, "  [%d] %s (%.0f%% confidence)\n", i+1, cand.TankName, cand.Confidence)
	}
	fmt.Fprintln(p.writer, "  [S] Skip this record")
	fmt.Fprintln(p.writer, "  [Q] Stop review, keep decisions so far")
	fmt.Fprintln(p.writer)

	for {
		fmt.Fprint(p.writer, FormatPrompt("Choice"))
		line, err := p.reader.ReadLine(ctx)
		if err != nil {
			return false, err
		}

		switch choice := strings.ToLower(strings.TrimSpace(line)); choice {
		case "s":
			rec.Deselect(key)
			return false, nil
		case "q":
			return true, nil
		default:
			idx, convErr := strconv.Atoi(choice)
			if convErr != nil || idx < 1 || idx > len(record.Candidates) {
				fmt.Fprintln(p.writer, FormatError("Invalid choice, try again"))
				continue
			}
			cand := record.Candidates[idx-1]
			if err := rec.ChangeTank(key, cand.TankID); err != nil {
				return false, fmt.Errorf("failed to select tank: %w", err)
			}
			fmt.Fprintln(p.writer, FormatSuccess("Assigned to "+cand.TankName))
			return false, nil
		}
	}
}

// ConfirmImport asks for a final yes/no before writing to the store.
func (p *ImportPrompter) ConfirmImport(ctx context.Context, count int) (bool, error) {
	fmt.Fprint(p.writer, FormatPrompt(fmt.Sprintf("Import %d selected movement(s)? [y/N]", count)))
	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		return false, err
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

func (p *ImportPrompter) formatRecord(record model.RecordWithMatches) string {
	date := string(record.Extracted.Date)
	if date == "" {
		date = "(no date)"
	}
	return fmt.Sprintf("Tank name: %s\nRow: %d\nType: %s\nQuantity: %.1f bbl\nLevels: %.1f → %.1f\nDate: %s",
		record.Extracted.TankName, record.Extracted.RowIndex, record.Type,
		record.Extracted.Quantity, record.Extracted.LevelBefore, record.Extracted.LevelAfter, date)
}
