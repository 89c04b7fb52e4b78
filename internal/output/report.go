package output

import (
	"fmt"
	"io"

	"github.com/rpgo/withholding-calculator/internal/domain"
)

// Render formats the report with the named formatter and writes it to w.
func Render(w io.Writer, report *domain.Report, format string) error {
	f, err := ResolveFormatter(format)
	if err != nil {
		return err
	}
	data, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("%s formatter failed: %w", f.Name(), err)
	}
	_, err = w.Write(data)
	return err
}

// GenerateReport renders to w and, when dir is non-empty, also saves a
// timestamped copy there. It returns the saved filename, if any.
func GenerateReport(w io.Writer, report *domain.Report, format, dir string) (string, error) {
	if err := Render(w, report, format); err != nil {
		return "", err
	}
	if dir == "" {
		return "", nil
	}
	f, _ := ResolveFormatter(format)
	return WriteFormatted(f, report, dir)
}
