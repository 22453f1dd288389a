package repository

// scanner covers both *sql.Row and *sql.Rows so each repository can share
// one scan function between its single-row and list queries.
type scanner interface {
	Scan(dest ...any) error
}
