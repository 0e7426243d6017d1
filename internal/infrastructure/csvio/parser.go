package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/cobmax/batimento/internal/domain/dataset"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Encoding names accepted by the loader.
type Encoding string

const (
	EncodingUTF8    Encoding = "utf-8"
	EncodingUTF8Sig Encoding = "utf-8-sig"
	EncodingLatin1  Encoding = "latin-1"
)

// IsValid reports whether the encoding name is supported.
func (e Encoding) IsValid() bool {
	switch e {
	case EncodingUTF8, EncodingUTF8Sig, EncodingLatin1, "":
		return true
	}
	return false
}

// decodeReader wraps r so the bytes coming out are UTF-8. A UTF-8 BOM is
// stripped regardless of the declared encoding; legacy exports flip between
// utf-8 and utf-8-sig from one delivery to the next.
func decodeReader(r io.Reader, enc Encoding) (io.Reader, error) {
	if enc == EncodingLatin1 {
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	}

	buf := bufio.NewReader(r)
	head, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = buf.Discard(3)
	}
	if err := validateUTF8(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// validateUTF8 checks that the leading content is valid UTF-8.
func validateUTF8(r *bufio.Reader) error {
	const checkSize = 4096
	content, err := r.Peek(checkSize)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read file for encoding validation: %w", err)
	}
	if len(content) == 0 {
		return ErrEmptyFile
	}
	// Drop a multi-byte rune split by the peek window before validating.
	if len(content) == checkSize {
		trim := 0
		for trim < utf8.UTFMax && trim < len(content) && !utf8.RuneStart(content[len(content)-1-trim]) {
			trim++
		}
		content = content[:len(content)-trim-1]
	}
	if !utf8.Valid(content) {
		return ErrInvalidEncoding
	}
	return nil
}

// ParseCSV reads an entire delimited file into a dataset. The first record is
// the header; short records are padded with empty cells and completely empty
// rows are skipped.
func ParseCSV(r io.Reader, separator rune, enc Encoding) (*dataset.Dataset, error) {
	decoded, err := decodeReader(r, enc)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	if separator != 0 {
		reader.Comma = separator
	}
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	ds := dataset.New(header...)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", line, err)
		}
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
