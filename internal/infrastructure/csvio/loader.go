package csvio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cobmax/batimento/internal/domain/dataset"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Format is the kind of data file inside (or instead of) the archive.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// IsValid reports whether the format is supported.
func (f Format) IsValid() bool {
	switch f {
	case FormatCSV, FormatXLSX, "":
		return true
	}
	return false
}

// ext returns the data-file extension for the format.
func (f Format) ext() string {
	if f == FormatXLSX {
		return ".xlsx"
	}
	return ".csv"
}

// Source describes one input dataset on disk.
type Source struct {
	// Path is a concrete file path or a glob.
	Path string
	// Format of the data file; defaults to CSV.
	Format Format
	// Separator for CSV files; defaults to ';'.
	Separator rune
	// Encoding of CSV files; defaults to utf-8.
	Encoding Encoding
	// Password opens AES-protected archives via the external 7z tool.
	Password string
	// Resolution picks among several glob matches; defaults to strict.
	Resolution Resolution
}

// LoaderOption is a functional option for Loader configuration
type LoaderOption func(*Loader)

// WithSevenZip overrides the 7z binary used for protected archives.
func WithSevenZip(path string) LoaderOption {
	return func(l *Loader) { l.sevenZip = path }
}

// Loader reads Sources into datasets.
type Loader struct {
	log      *zap.Logger
	sevenZip string
}

// NewLoader creates a loader.
func NewLoader(log *zap.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{log: log}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load resolves, extracts and parses one input source. Loading failures are
// always fatal for the run; there is no silent skip.
func (l *Loader) Load(src Source) (*dataset.Dataset, error) {
	path, err := Resolve(src.Path, src.Resolution, l.log)
	if err != nil {
		return nil, err
	}

	format := src.Format
	if format == "" {
		format = FormatCSV
	}

	var content []byte
	name := path
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		content, name, err = extractArchive(path, format.ext(), src.Password, l.sevenZip)
		if err != nil {
			return nil, err
		}
	} else {
		content, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot read input file %q: %v", dataset.ErrExtraction, path, err)
		}
	}

	var ds *dataset.Dataset
	switch format {
	case FormatXLSX:
		ds, err = parseXLSX(bytes.NewReader(content))
	default:
		sep := src.Separator
		if sep == 0 {
			sep = ';'
		}
		ds, err = ParseCSV(bytes.NewReader(content), sep, src.Encoding)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", dataset.ErrExtraction, name, err)
	}
	if ds.Len() == 0 {
		return nil, fmt.Errorf("%w: %q: %v", dataset.ErrExtraction, name, ErrNoDataRows)
	}

	if l.log != nil {
		l.log.Info("input loaded",
			zap.String("file", path),
			zap.String("entry", name),
			zap.Int("rows", ds.Len()),
			zap.Int("columns", len(ds.Columns)))
	}
	return ds, nil
}

// parseXLSX reads the first sheet of a workbook; the first row is the header.
func parseXLSX(r io.Reader) (*dataset.Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("cannot open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("cannot read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrMissingHeader
	}

	header := rows[0]
	ds := dataset.New(header...)
	for _, record := range rows[1:] {
		cells := make(map[string]string, len(header))
		empty := true
		for i, col := range header {
			var v string
			if i < len(record) {
				v = record[i]
			}
			if v != "" {
				empty = false
			}
			cells[col] = v
		}
		if empty {
			continue
		}
		ds.AppendCells(cells)
	}
	return ds, nil
}
