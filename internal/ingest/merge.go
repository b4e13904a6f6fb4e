package ingest

// Merge concatenates normalized tables row-wise into one table whose
// columns are the union of all input columns in first-seen order.
//
// Rows from tables missing a column simply lack that key: absence stays
// observable downstream rather than being padded with a placeholder.
// Duplicate identifiers are collapsed again after the union; independently
// normalized tables should never collide, but the uniqueness invariant is
// re-established here regardless.
func Merge(tables []*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, ErrEmptyBatch
	}

	merged := &Table{}
	seen := make(map[string]bool)
	for _, t := range tables {
		for _, col := range t.Columns {
			if seen[col] {
				continue
			}
			seen[col] = true
			merged.Columns = append(merged.Columns, col)
		}
	}

	for _, t := range tables {
		merged.Rows = append(merged.Rows, t.Rows...)
	}
	return merged, nil
}
