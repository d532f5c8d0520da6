package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Spor195/tablerointraoperatorio/internal/model"
)

// WriteCSV streams the annotated report as a CSV table, header first.
func WriteCSV(w io.Writer, reports []model.CaseReport) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ReportHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range reports {
		if err := cw.Write(reportRow(&reports[i])); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
