package model

// Table is a tabular view of one model's records ready to be drawn as markup.
type Table struct {
	// ID tags the generated markup so the surrounding document can
	// reference it. It must be unique within one report.
	ID string

	// Header holds the column names.
	Header []string

	// Rows holds the cells of every record in file order.
	Rows [][]string

	// Misidentified marks rows whose record is not correct.
	// It is parallel to Rows.
	Misidentified []bool
}

// Tabulator draws a Table as markup.
type Tabulator interface {
	Tabulate(table Table) (string, error)
}
