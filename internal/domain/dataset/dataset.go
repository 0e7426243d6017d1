// Package dataset provides the tabular data model shared by every pipeline
// stage. A Dataset is an ordered set of columns plus rows of string cells;
// type coercion (dates, monetary values) happens in the stages that need it,
// never in the model itself.
package dataset

// KeyColumn is the canonical name of the derived join-key column.
const KeyColumn = "CHAVE"

// ReasonColumn is the column carrying the rejection reason on the
// inconsistencies side-output.
const ReasonColumn = "MOTIVO_INCONSISTENCIA"

// Row is a single record. Index is the zero-based position of the row in the
// originally loaded file and is the row's identity for partition checks.
type Row struct {
	Index int
	Cells map[string]string
}

// Get returns the value of the named cell, or "" when absent.
func (r Row) Get(column string) string {
	return r.Cells[column]
}

// Set assigns the value of the named cell.
func (r Row) Set(column, value string) {
	r.Cells[column] = value
}

// Clone returns a deep copy of the row.
func (r Row) Clone() Row {
	cells := make(map[string]string, len(r.Cells))
	for k, v := range r.Cells {
		cells[k] = v
	}
	return Row{Index: r.Index, Cells: cells}
}

// Dataset is an ordered sequence of rows with a declared column order.
type Dataset struct {
	Columns []string
	Rows    []Row
}

// New creates an empty dataset with the given column order.
func New(columns ...string) *Dataset {
	return &Dataset{Columns: append([]string(nil), columns...)}
}

// Len returns the number of rows.
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Append adds a row to the dataset.
func (d *Dataset) Append(row Row) {
	d.Rows = append(d.Rows, row)
}

// AppendCells adds a row built from the given cells, assigning the next
// sequential index.
func (d *Dataset) AppendCells(cells map[string]string) {
	d.Rows = append(d.Rows, Row{Index: len(d.Rows), Cells: cells})
}

// HasColumn checks whether the named column is declared.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn declares a new column. Declaring an existing column is a no-op.
func (d *Dataset) AddColumn(name string) {
	if !d.HasColumn(name) {
		d.Columns = append(d.Columns, name)
	}
}

// Empty returns a new dataset with the same column order and no rows.
func (d *Dataset) Empty() *Dataset {
	return New(d.Columns...)
}

// KeySet collects the distinct values of the named column. The second return
// lists values that occur more than once, in first-occurrence order.
func (d *Dataset) KeySet(column string) (map[string]struct{}, []string) {
	set := make(map[string]struct{}, len(d.Rows))
	var dupes []string
	seenDupe := make(map[string]struct{})
	for _, row := range d.Rows {
		key := row.Get(column)
		if _, ok := set[key]; ok {
			if _, reported := seenDupe[key]; !reported {
				seenDupe[key] = struct{}{}
				dupes = append(dupes, key)
			}
			continue
		}
		set[key] = struct{}{}
	}
	return set, dupes
}
