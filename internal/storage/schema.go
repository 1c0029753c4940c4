package storage

// Schema notes:
//   - p and q hold the exact coordinate as decimal digit strings; SQLite
//     integers cap at 64 bits and denominators outgrow that within ~25
//     levels of single-child chains.
//   - path_hint is a float approximation of p/q kept only to narrow range
//     scans; every hint-selected row is re-verified with exact arithmetic.
//   - ORDER BY LENGTH(q) DESC, q DESC sorts digit strings in numeric
//     order, so the newest (largest-denominator) child sits first on the
//     (scope, parent_id) index.
//   - parent_id cascades on delete: a subtree cannot outlive its covering
//     ancestor, so removal of a node removes everything it covers.
const schemaSQL = `
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		scope TEXT NOT NULL DEFAULT '',
		parent_id TEXT REFERENCES nodes(id) ON DELETE CASCADE,
		label TEXT NOT NULL,
		p TEXT NOT NULL,
		q TEXT NOT NULL,
		path_hint REAL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE (scope, p, q),
		UNIQUE (scope, label)
	);
	CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(scope, parent_id, LENGTH(q) DESC, q DESC);
	CREATE INDEX IF NOT EXISTS idx_nodes_hint ON nodes(scope, path_hint);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY
	);
	INSERT OR REPLACE INTO schema_version (version) VALUES (1);
`

// initializeSchema creates the node tables. Idempotent.
func (db *DB) initializeSchema() error {
	_, err := db.writer.Exec(schemaSQL)
	return err
}

// SchemaVersion reports the stored schema version.
func (db *DB) SchemaVersion() (int, error) {
	var v int
	err := db.reader.QueryRow("SELECT version FROM schema_version").Scan(&v)
	return v, err
}
