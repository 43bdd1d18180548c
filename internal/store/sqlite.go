package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite. Natural keys are enforced as
// unique indexes; Insert* methods use INSERT OR IGNORE and re-fetch on
// conflict, so concurrent find-or-create of the same key settles on one row.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at dbPath and bootstraps
// the schema. Use ":memory:" for an in-memory store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS document (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_guid TEXT NOT NULL,
		set_guid TEXT NOT NULL,
		version_number INTEGER NOT NULL,
		code TEXT NOT NULL,
		code_system TEXT NOT NULL,
		title TEXT,
		effective_time TEXT,
		file_name TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS ux_document_guid ON document(document_guid);

	CREATE TABLE IF NOT EXISTS section (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id INTEGER NOT NULL,
		parent_id INTEGER,
		section_guid TEXT NOT NULL,
		code TEXT NOT NULL,
		code_system TEXT NOT NULL,
		title TEXT,
		effective_time TEXT,
		seq INTEGER NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS ux_section_key ON section(document_id, section_guid);

	CREATE TABLE IF NOT EXISTS content_block (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		section_id INTEGER NOT NULL,
		parent_block_id INTEGER,
		block_type TEXT NOT NULL,
		style_hint TEXT,
		seq INTEGER NOT NULL,
		text TEXT
	);
	CREATE UNIQUE INDEX IF NOT EXISTS ux_content_block_key
		ON content_block(section_id, ifnull(parent_block_id,0), block_type, seq)
		WHERE block_type != 'paragraph';
	CREATE UNIQUE INDEX IF NOT EXISTS ux_content_block_para_key
		ON content_block(section_id, ifnull(parent_block_id,0), block_type, seq, ifnull(text,''))
		WHERE block_type = 'paragraph';

	CREATE TABLE IF NOT EXISTS list_record (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content_block_id INTEGER NOT NULL UNIQUE,
		list_type TEXT,
		style_hint TEXT
	);

	CREATE TABLE IF NOT EXISTS list_item (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		list_id INTEGER NOT NULL,
		seq INTEGER NOT NULL,
		caption TEXT,
		text TEXT NOT NULL,
		UNIQUE(list_id, seq)
	);

	CREATE TABLE IF NOT EXISTS table_record (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content_block_id INTEGER NOT NULL UNIQUE,
		width TEXT,
		has_header INTEGER NOT NULL,
		has_footer INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS table_row (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		table_id INTEGER NOT NULL,
		row_group TEXT NOT NULL,
		seq INTEGER NOT NULL,
		style_hint TEXT,
		UNIQUE(table_id, row_group, seq)
	);

	CREATE TABLE IF NOT EXISTS table_cell (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		row_id INTEGER NOT NULL,
		cell_kind TEXT NOT NULL,
		seq INTEGER NOT NULL,
		text TEXT NOT NULL,
		row_span INTEGER,
		col_span INTEGER,
		align TEXT,
		valign TEXT,
		UNIQUE(row_id, seq)
	);

	CREATE TABLE IF NOT EXISTS media_asset (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		document_id INTEGER NOT NULL,
		media_token TEXT NOT NULL,
		description TEXT,
		media_format TEXT,
		xsi_type TEXT,
		file_reference TEXT,
		UNIQUE(document_id, media_token)
	);

	CREATE TABLE IF NOT EXISTS media_link (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content_block_id INTEGER NOT NULL,
		media_asset_id INTEGER NOT NULL,
		seq_position INTEGER NOT NULL,
		is_inline INTEGER NOT NULL,
		UNIQUE(content_block_id, seq_position)
	);

	CREATE TABLE IF NOT EXISTS highlight_span (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		owner_block_id INTEGER NOT NULL,
		text TEXT NOT NULL,
		UNIQUE(owner_block_id, text)
	);

	CREATE TABLE IF NOT EXISTS identified_substance (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		section_id INTEGER NOT NULL,
		subject_kind TEXT NOT NULL,
		identifier_value TEXT NOT NULL,
		identifier_system TEXT NOT NULL,
		is_definition INTEGER NOT NULL,
		UNIQUE(section_id, identifier_value, identifier_system)
	);

	CREATE TABLE IF NOT EXISTS pharm_class (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		defining_substance_id INTEGER,
		class_code TEXT NOT NULL,
		class_system TEXT NOT NULL,
		display_name TEXT,
		UNIQUE(class_code, class_system)
	);

	CREATE TABLE IF NOT EXISTS pharm_class_name (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		class_id INTEGER NOT NULL,
		text TEXT NOT NULL,
		use TEXT NOT NULL,
		UNIQUE(class_id, text, use)
	);

	CREATE TABLE IF NOT EXISTS pharm_class_link (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		substance_id INTEGER NOT NULL,
		class_id INTEGER NOT NULL,
		UNIQUE(substance_id, class_id)
	);

	CREATE TABLE IF NOT EXISTS pharm_class_hierarchy (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		child_class_id INTEGER NOT NULL,
		parent_class_id INTEGER NOT NULL,
		UNIQUE(child_class_id, parent_class_id)
	);

	CREATE TABLE IF NOT EXISTS product_concept (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		section_id INTEGER NOT NULL,
		concept_code TEXT NOT NULL UNIQUE,
		concept_system TEXT NOT NULL,
		concept_kind TEXT NOT NULL,
		form_code TEXT,
		form_code_system TEXT
	);

	CREATE TABLE IF NOT EXISTS product_concept_equivalence (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		application_concept_id INTEGER NOT NULL,
		abstract_concept_id INTEGER NOT NULL,
		equivalence_code TEXT,
		equivalence_system TEXT,
		UNIQUE(application_concept_id, abstract_concept_id)
	);

	CREATE TABLE IF NOT EXISTS interaction_issue (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		section_id INTEGER NOT NULL,
		interaction_code TEXT NOT NULL,
		code_system TEXT NOT NULL,
		text TEXT,
		UNIQUE(section_id, interaction_code)
	);

	CREATE TABLE IF NOT EXISTS contributing_factor (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		issue_id INTEGER NOT NULL,
		factor_substance_id INTEGER NOT NULL,
		UNIQUE(issue_id, factor_substance_id)
	);

	CREATE TABLE IF NOT EXISTS interaction_consequence (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		issue_id INTEGER NOT NULL,
		consequence_value_code TEXT NOT NULL,
		consequence_system TEXT,
		display_name TEXT,
		UNIQUE(issue_id, consequence_value_code)
	);

	CREATE TABLE IF NOT EXISTS clinical_trial_link (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		section_id INTEGER NOT NULL,
		trial_identifier TEXT NOT NULL,
		registry TEXT,
		UNIQUE(section_id, trial_identifier)
	);

	CREATE TABLE IF NOT EXISTS billing_unit_link (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		section_id INTEGER NOT NULL,
		billing_unit_code TEXT NOT NULL,
		package_code TEXT,
		UNIQUE(section_id, billing_unit_code)
	);

	CREATE TABLE IF NOT EXISTS pending_reference (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ref_kind TEXT NOT NULL,
		natural_key TEXT NOT NULL,
		source_id INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		resolved_at INTEGER,
		UNIQUE(ref_kind, natural_key, source_id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Nullable column helpers.

func nullString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func zeroIfNil(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func derefOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}
