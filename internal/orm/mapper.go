package orm

// Mapper translates between an entity type and its table representation.
// The column order returned by Columns defines the binding order everywhere:
// keep it deterministic.
//
// Table and column names are trusted identifiers owned by the application;
// they are interpolated into SQL without escaping.
type Mapper[T any] interface {
	// Table is the table name entities are stored in.
	Table() string

	// Columns lists the non-key columns, in binding order.
	Columns() []string

	// Values extracts the entity's column values matching Columns.
	Values(entity T) []any

	// Scan builds an entity from a result row shaped as SELECT id, columns...
	Scan(rs ResultSet) (T, error)
}
