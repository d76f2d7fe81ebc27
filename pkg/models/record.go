package models

// SourceRow is a single legacy record as read from the source store,
// keyed by column name. Joined columns appear under their aliases.
type SourceRow map[string]interface{}

// Column is one target column of an insert. Cast, when set, is a
// PostgreSQL type the bound value is cast to (used for enum columns,
// e.g. `"enum_Clinics_status"`).
type Column struct {
	Name  string
	Value interface{}
	Cast  string
}

// TargetRecord is the output of a transformer: one row destined for the
// target store. Exactly one of Returning / ForcedKey identifies the new
// primary key: Returning names a store-generated key column, ForcedKey
// carries a key the record brings along from the legacy schema.
type TargetRecord struct {
	Table     string
	Columns   []Column
	Returning string
	ForcedKey string
}
