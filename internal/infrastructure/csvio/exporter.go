package csvio

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cobmax/batimento/internal/domain/dataset"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ColumnMapping maps one output column to its source. When Source is empty
// the Default constant is emitted for every row (e.g. a fixed creditor CNPJ).
type ColumnMapping struct {
	Output  string
	Source  string
	Default string
}

// FormatLayout renames, reorders and injects constant columns, producing a
// dataset in the fixed external layout.
func FormatLayout(ds *dataset.Dataset, layout []ColumnMapping) *dataset.Dataset {
	columns := make([]string, len(layout))
	for i, m := range layout {
		columns[i] = m.Output
	}
	out := dataset.New(columns...)
	for _, row := range ds.Rows {
		cells := make(map[string]string, len(layout))
		for _, m := range layout {
			if m.Source == "" {
				cells[m.Output] = m.Default
				continue
			}
			v := row.Get(m.Source)
			if v == "" && m.Default != "" {
				v = m.Default
			}
			cells[m.Output] = v
		}
		out.Append(dataset.Row{Index: row.Index, Cells: cells})
	}
	return out
}

// ExportOptions controls serialization of output CSVs.
type ExportOptions struct {
	// Separator defaults to ';'.
	Separator rune
	// Encoding defaults to utf-8; utf-8-sig writes a BOM, latin-1 encodes
	// through charmap.
	Encoding Encoding
	// MoneyColumns hold canonical dot-decimal values and are re-rendered
	// with a decimal comma.
	MoneyColumns []string
}

// Exporter writes formatted datasets to disk.
type Exporter struct {
	log *zap.Logger
	now func() time.Time
}

// NewExporter creates an exporter. The clock is injectable so archive names
// are deterministic in tests.
func NewExporter(log *zap.Logger, now func() time.Time) *Exporter {
	if now == nil {
		now = time.Now
	}
	return &Exporter{log: log, now: now}
}

// ExportZip writes each named dataset as <name>.csv inside a single archive
// dir/<prefix>_YYYYMMDD_HHMMSS.zip and returns the archive path. File order
// inside the archive is the sorted name order, for reproducible output.
func (e *Exporter) ExportZip(dir, prefix string, files map[string]*dataset.Dataset, opts ExportOptions) (string, error) {
	if len(files) == 0 {
		return "", fmt.Errorf("%w: nothing to export for %q", dataset.ErrConfiguration, prefix)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("cannot create output dir %q: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.zip", prefix, e.now().Format("20060102_150405")))
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("cannot create archive %q: %w", path, err)
	}
	defer out.Close()

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(out)
	for _, name := range names {
		w, err := zw.Create(name + ".csv")
		if err != nil {
			return "", fmt.Errorf("cannot add %q to archive: %w", name, err)
		}
		if err := writeCSV(w, files[name], opts); err != nil {
			return "", fmt.Errorf("cannot write %q: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("cannot finish archive %q: %w", path, err)
	}

	if e.log != nil {
		e.log.Info("archive written", zap.String("path", path), zap.Strings("files", names))
	}
	return path, nil
}

// ExportCSV writes a single dataset as a bare CSV file, overwriting any
// previous file of the same name. Used for the inconsistencies side-output.
func (e *Exporter) ExportCSV(path string, ds *dataset.Dataset, opts ExportOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("cannot create output dir for %q: %w", path, err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %q: %w", path, err)
	}
	defer out.Close()

	if err := writeCSV(out, ds, opts); err != nil {
		return fmt.Errorf("cannot write %q: %w", path, err)
	}
	if e.log != nil {
		e.log.Info("file written", zap.String("path", path), zap.Int("rows", ds.Len()))
	}
	return nil
}

// writeCSV serializes a dataset with the configured separator and encoding.
func writeCSV(w io.Writer, ds *dataset.Dataset, opts ExportOptions) error {
	var tw *transform.Writer
	switch opts.Encoding {
	case EncodingUTF8Sig:
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return err
		}
	case EncodingLatin1:
		tw = transform.NewWriter(w, charmap.ISO8859_1.NewEncoder())
		w = tw
	}

	money := make(map[string]bool, len(opts.MoneyColumns))
	for _, c := range opts.MoneyColumns {
		money[c] = true
	}

	cw := csv.NewWriter(w)
	cw.Comma = opts.Separator
	if cw.Comma == 0 {
		cw.Comma = ';'
	}

	if err := cw.Write(ds.Columns); err != nil {
		return err
	}
	record := make([]string, len(ds.Columns))
	for _, row := range ds.Rows {
		for i, col := range ds.Columns {
			v := row.Get(col)
			if money[col] && v != "" {
				if d, err := decimal.NewFromString(v); err == nil {
					v = dataset.FormatMoney(d)
				}
			}
			record[i] = v
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	if tw != nil {
		return tw.Close()
	}
	return nil
}
