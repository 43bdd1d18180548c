package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/chriserikbarnes/medrecpro/internal/foundation"
	"github.com/chriserikbarnes/medrecpro/internal/model"
)

// exec runs an INSERT OR IGNORE statement. inserted is false when a unique
// constraint swallowed the row; the caller re-fetches by natural key.
func (s *SQLiteStore) exec(ctx context.Context, query string, args ...any) (id int64, inserted bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}
	id, err = res.LastInsertId()
	return id, true, err
}

// Document

func (s *SQLiteStore) FindDocument(ctx context.Context, key model.DocumentKey) (foundation.Option[model.Document], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, document_guid, set_guid, version_number, code, code_system, title, effective_time, file_name
		FROM document WHERE document_guid = ?`, key.DocumentGUID)
	var d model.Document
	var title, effective sql.NullString
	err := row.Scan(&d.ID, &d.DocumentGUID, &d.SetGUID, &d.VersionNumber, &d.Code, &d.CodeSystem, &title, &effective, &d.FileName)
	if err == sql.ErrNoRows {
		return foundation.None[model.Document](), nil
	}
	if err != nil {
		return foundation.None[model.Document](), fmt.Errorf("find document: %w", err)
	}
	d.Title = strPtr(title)
	d.EffectiveTime = strPtr(effective)
	return foundation.Some(d), nil
}

func (s *SQLiteStore) InsertDocument(ctx context.Context, d model.Document) (model.Document, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO document
		(document_guid, set_guid, version_number, code, code_system, title, effective_time, file_name)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.DocumentGUID, d.SetGUID, d.VersionNumber, d.Code, d.CodeSystem, nullString(d.Title), nullString(d.EffectiveTime), d.FileName)
	if err != nil {
		return model.Document{}, fmt.Errorf("insert document: %w", err)
	}
	if !inserted {
		return s.refetchDocument(ctx, d.Key())
	}
	d.ID = id
	return d, nil
}

func (s *SQLiteStore) refetchDocument(ctx context.Context, key model.DocumentKey) (model.Document, error) {
	existing, err := s.FindDocument(ctx, key)
	if err != nil {
		return model.Document{}, err
	}
	if v, ok := existing.Get(); ok {
		return v, nil
	}
	return model.Document{}, fmt.Errorf("insert document: conflict without existing row")
}

// Section

func (s *SQLiteStore) FindSection(ctx context.Context, key model.SectionKey) (foundation.Option[model.Section], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, document_id, parent_id, section_guid, code, code_system, title, effective_time, seq
		FROM section WHERE document_id = ? AND section_guid = ?`, key.DocumentID, key.SectionGUID)
	return scanSection(row)
}

func scanSection(row *sql.Row) (foundation.Option[model.Section], error) {
	var sec model.Section
	var parent sql.NullInt64
	var title, effective sql.NullString
	err := row.Scan(&sec.ID, &sec.DocumentID, &parent, &sec.SectionGUID, &sec.Code, &sec.CodeSystem, &title, &effective, &sec.SequenceNumber)
	if err == sql.ErrNoRows {
		return foundation.None[model.Section](), nil
	}
	if err != nil {
		return foundation.None[model.Section](), fmt.Errorf("find section: %w", err)
	}
	sec.ParentID = int64Ptr(parent)
	sec.Title = strPtr(title)
	sec.EffectiveTime = strPtr(effective)
	return foundation.Some(sec), nil
}

func (s *SQLiteStore) InsertSection(ctx context.Context, sec model.Section) (model.Section, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO section
		(document_id, parent_id, section_guid, code, code_system, title, effective_time, seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		sec.DocumentID, nullInt64(sec.ParentID), sec.SectionGUID, sec.Code, sec.CodeSystem,
		nullString(sec.Title), nullString(sec.EffectiveTime), sec.SequenceNumber)
	if err != nil {
		return model.Section{}, fmt.Errorf("insert section: %w", err)
	}
	if !inserted {
		existing, err := s.FindSection(ctx, sec.Key())
		if err != nil {
			return model.Section{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.Section{}, fmt.Errorf("insert section: conflict without existing row")
	}
	sec.ID = id
	return sec, nil
}

// ContentBlock

func (s *SQLiteStore) FindContentBlock(ctx context.Context, key model.ContentBlockKey) (foundation.Option[model.ContentBlock], error) {
	query := `SELECT id, section_id, parent_block_id, block_type, style_hint, seq, text FROM content_block
		WHERE section_id = ? AND ifnull(parent_block_id,0) = ? AND block_type = ? AND seq = ?`
	args := []any{key.SectionID, zeroIfNil(key.ParentBlockID), string(key.BlockType), key.SequenceNumber}
	if key.BlockType == model.BlockParagraph {
		query += ` AND ifnull(text,'') = ?`
		args = append(args, derefOr(key.Text, ""))
	}
	row := s.db.QueryRowContext(ctx, query, args...)
	b, err := scanContentBlock(row.Scan)
	if err == sql.ErrNoRows {
		return foundation.None[model.ContentBlock](), nil
	}
	if err != nil {
		return foundation.None[model.ContentBlock](), fmt.Errorf("find content block: %w", err)
	}
	return foundation.Some(b), nil
}

func scanContentBlock(scan func(...any) error) (model.ContentBlock, error) {
	var b model.ContentBlock
	var parent sql.NullInt64
	var style, text sql.NullString
	var blockType string
	err := scan(&b.ID, &b.SectionID, &parent, &blockType, &style, &b.SequenceNumber, &text)
	if err != nil {
		return model.ContentBlock{}, err
	}
	b.BlockType = model.BlockType(blockType)
	b.ParentBlockID = int64Ptr(parent)
	b.StyleHint = strPtr(style)
	b.Text = strPtr(text)
	return b, nil
}

func (s *SQLiteStore) InsertContentBlock(ctx context.Context, b model.ContentBlock) (model.ContentBlock, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO content_block
		(section_id, parent_block_id, block_type, style_hint, seq, text)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.SectionID, nullInt64(b.ParentBlockID), string(b.BlockType), nullString(b.StyleHint), b.SequenceNumber, nullString(b.Text))
	if err != nil {
		return model.ContentBlock{}, fmt.Errorf("insert content block: %w", err)
	}
	if !inserted {
		existing, err := s.FindContentBlock(ctx, b.Key())
		if err != nil {
			return model.ContentBlock{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.ContentBlock{}, fmt.Errorf("insert content block: conflict without existing row")
	}
	b.ID = id
	return b, nil
}

func (s *SQLiteStore) ListContentBlocks(ctx context.Context, sectionID int64) ([]model.ContentBlock, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, section_id, parent_block_id, block_type, style_hint, seq, text
		FROM content_block WHERE section_id = ? ORDER BY ifnull(parent_block_id,0), seq, id`, sectionID)
	if err != nil {
		return nil, fmt.Errorf("list content blocks: %w", err)
	}
	defer rows.Close()
	var out []model.ContentBlock
	for rows.Next() {
		b, err := scanContentBlock(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list content blocks: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListRecord / ListItem

func (s *SQLiteStore) FindListRecord(ctx context.Context, contentBlockID int64) (foundation.Option[model.ListRecord], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, content_block_id, list_type, style_hint FROM list_record WHERE content_block_id = ?`, contentBlockID)
	var l model.ListRecord
	var listType, style sql.NullString
	err := row.Scan(&l.ID, &l.ContentBlockID, &listType, &style)
	if err == sql.ErrNoRows {
		return foundation.None[model.ListRecord](), nil
	}
	if err != nil {
		return foundation.None[model.ListRecord](), fmt.Errorf("find list record: %w", err)
	}
	l.ListType = strPtr(listType)
	l.StyleHint = strPtr(style)
	return foundation.Some(l), nil
}

func (s *SQLiteStore) InsertListRecord(ctx context.Context, l model.ListRecord) (model.ListRecord, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO list_record (content_block_id, list_type, style_hint) VALUES (?, ?, ?)`,
		l.ContentBlockID, nullString(l.ListType), nullString(l.StyleHint))
	if err != nil {
		return model.ListRecord{}, fmt.Errorf("insert list record: %w", err)
	}
	if !inserted {
		existing, err := s.FindListRecord(ctx, l.ContentBlockID)
		if err != nil {
			return model.ListRecord{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.ListRecord{}, fmt.Errorf("insert list record: conflict without existing row")
	}
	l.ID = id
	return l, nil
}

func (s *SQLiteStore) FindListItem(ctx context.Context, key model.ListItemKey) (foundation.Option[model.ListItem], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, list_id, seq, caption, text FROM list_item WHERE list_id = ? AND seq = ?`,
		key.ListID, key.SequenceNumber)
	i, err := scanListItem(row.Scan)
	if err == sql.ErrNoRows {
		return foundation.None[model.ListItem](), nil
	}
	if err != nil {
		return foundation.None[model.ListItem](), fmt.Errorf("find list item: %w", err)
	}
	return foundation.Some(i), nil
}

func scanListItem(scan func(...any) error) (model.ListItem, error) {
	var i model.ListItem
	var caption sql.NullString
	err := scan(&i.ID, &i.ListID, &i.SequenceNumber, &caption, &i.Text)
	if err != nil {
		return model.ListItem{}, err
	}
	i.Caption = strPtr(caption)
	return i, nil
}

func (s *SQLiteStore) InsertListItem(ctx context.Context, i model.ListItem) (model.ListItem, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO list_item (list_id, seq, caption, text) VALUES (?, ?, ?, ?)`,
		i.ListID, i.SequenceNumber, nullString(i.Caption), i.Text)
	if err != nil {
		return model.ListItem{}, fmt.Errorf("insert list item: %w", err)
	}
	if !inserted {
		existing, err := s.FindListItem(ctx, model.ListItemKey{ListID: i.ListID, SequenceNumber: i.SequenceNumber})
		if err != nil {
			return model.ListItem{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.ListItem{}, fmt.Errorf("insert list item: conflict without existing row")
	}
	i.ID = id
	return i, nil
}

func (s *SQLiteStore) ListListItems(ctx context.Context, listID int64) ([]model.ListItem, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, list_id, seq, caption, text FROM list_item WHERE list_id = ? ORDER BY seq`, listID)
	if err != nil {
		return nil, fmt.Errorf("list list items: %w", err)
	}
	defer rows.Close()
	var out []model.ListItem
	for rows.Next() {
		i, err := scanListItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list list items: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

// TableRecord / TableRow / TableCell

func (s *SQLiteStore) FindTableRecord(ctx context.Context, contentBlockID int64) (foundation.Option[model.TableRecord], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, content_block_id, width, has_header, has_footer FROM table_record WHERE content_block_id = ?`, contentBlockID)
	var t model.TableRecord
	var width sql.NullString
	err := row.Scan(&t.ID, &t.ContentBlockID, &width, &t.HasHeader, &t.HasFooter)
	if err == sql.ErrNoRows {
		return foundation.None[model.TableRecord](), nil
	}
	if err != nil {
		return foundation.None[model.TableRecord](), fmt.Errorf("find table record: %w", err)
	}
	t.Width = strPtr(width)
	return foundation.Some(t), nil
}

func (s *SQLiteStore) InsertTableRecord(ctx context.Context, t model.TableRecord) (model.TableRecord, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO table_record (content_block_id, width, has_header, has_footer) VALUES (?, ?, ?, ?)`,
		t.ContentBlockID, nullString(t.Width), t.HasHeader, t.HasFooter)
	if err != nil {
		return model.TableRecord{}, fmt.Errorf("insert table record: %w", err)
	}
	if !inserted {
		existing, err := s.FindTableRecord(ctx, t.ContentBlockID)
		if err != nil {
			return model.TableRecord{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.TableRecord{}, fmt.Errorf("insert table record: conflict without existing row")
	}
	t.ID = id
	return t, nil
}

func (s *SQLiteStore) FindTableRow(ctx context.Context, key model.TableRowKey) (foundation.Option[model.TableRow], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, table_id, row_group, seq, style_hint FROM table_row
		WHERE table_id = ? AND row_group = ? AND seq = ?`, key.TableID, string(key.RowGroup), key.SequenceNumber)
	r, err := scanTableRow(row.Scan)
	if err == sql.ErrNoRows {
		return foundation.None[model.TableRow](), nil
	}
	if err != nil {
		return foundation.None[model.TableRow](), fmt.Errorf("find table row: %w", err)
	}
	return foundation.Some(r), nil
}

func scanTableRow(scan func(...any) error) (model.TableRow, error) {
	var r model.TableRow
	var group string
	var style sql.NullString
	err := scan(&r.ID, &r.TableID, &group, &r.SequenceNumber, &style)
	if err != nil {
		return model.TableRow{}, err
	}
	r.RowGroup = model.RowGroup(group)
	r.StyleHint = strPtr(style)
	return r, nil
}

func (s *SQLiteStore) InsertTableRow(ctx context.Context, r model.TableRow) (model.TableRow, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO table_row (table_id, row_group, seq, style_hint) VALUES (?, ?, ?, ?)`,
		r.TableID, string(r.RowGroup), r.SequenceNumber, nullString(r.StyleHint))
	if err != nil {
		return model.TableRow{}, fmt.Errorf("insert table row: %w", err)
	}
	if !inserted {
		existing, err := s.FindTableRow(ctx, model.TableRowKey{TableID: r.TableID, RowGroup: r.RowGroup, SequenceNumber: r.SequenceNumber})
		if err != nil {
			return model.TableRow{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.TableRow{}, fmt.Errorf("insert table row: conflict without existing row")
	}
	r.ID = id
	return r, nil
}

func (s *SQLiteStore) ListTableRows(ctx context.Context, tableID int64) ([]model.TableRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, table_id, row_group, seq, style_hint FROM table_row
		WHERE table_id = ? ORDER BY row_group, seq`, tableID)
	if err != nil {
		return nil, fmt.Errorf("list table rows: %w", err)
	}
	defer rows.Close()
	var out []model.TableRow
	for rows.Next() {
		r, err := scanTableRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list table rows: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) FindTableCell(ctx context.Context, key model.TableCellKey) (foundation.Option[model.TableCell], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, row_id, cell_kind, seq, text, row_span, col_span, align, valign
		FROM table_cell WHERE row_id = ? AND seq = ?`, key.RowID, key.SequenceNumber)
	c, err := scanTableCell(row.Scan)
	if err == sql.ErrNoRows {
		return foundation.None[model.TableCell](), nil
	}
	if err != nil {
		return foundation.None[model.TableCell](), fmt.Errorf("find table cell: %w", err)
	}
	return foundation.Some(c), nil
}

func scanTableCell(scan func(...any) error) (model.TableCell, error) {
	var c model.TableCell
	var kind string
	var rowSpan, colSpan sql.NullInt64
	var align, valign sql.NullString
	err := scan(&c.ID, &c.RowID, &kind, &c.SequenceNumber, &c.Text, &rowSpan, &colSpan, &align, &valign)
	if err != nil {
		return model.TableCell{}, err
	}
	c.CellKind = model.CellKind(kind)
	c.RowSpan = intPtr(rowSpan)
	c.ColSpan = intPtr(colSpan)
	c.Align = strPtr(align)
	c.VAlign = strPtr(valign)
	return c, nil
}

func (s *SQLiteStore) InsertTableCell(ctx context.Context, c model.TableCell) (model.TableCell, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO table_cell
		(row_id, cell_kind, seq, text, row_span, col_span, align, valign)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.RowID, string(c.CellKind), c.SequenceNumber, c.Text, nullInt(c.RowSpan), nullInt(c.ColSpan), nullString(c.Align), nullString(c.VAlign))
	if err != nil {
		return model.TableCell{}, fmt.Errorf("insert table cell: %w", err)
	}
	if !inserted {
		existing, err := s.FindTableCell(ctx, model.TableCellKey{RowID: c.RowID, SequenceNumber: c.SequenceNumber})
		if err != nil {
			return model.TableCell{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.TableCell{}, fmt.Errorf("insert table cell: conflict without existing row")
	}
	c.ID = id
	return c, nil
}

func (s *SQLiteStore) ListTableCells(ctx context.Context, rowID int64) ([]model.TableCell, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, row_id, cell_kind, seq, text, row_span, col_span, align, valign
		FROM table_cell WHERE row_id = ? ORDER BY seq`, rowID)
	if err != nil {
		return nil, fmt.Errorf("list table cells: %w", err)
	}
	defer rows.Close()
	var out []model.TableCell
	for rows.Next() {
		c, err := scanTableCell(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list table cells: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MediaAsset / MediaLink / HighlightSpan

func (s *SQLiteStore) FindMediaAsset(ctx context.Context, key model.MediaAssetKey) (foundation.Option[model.MediaAsset], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, document_id, media_token, description, media_format, xsi_type, file_reference
		FROM media_asset WHERE document_id = ? AND media_token = ?`, key.DocumentID, key.MediaToken)
	var m model.MediaAsset
	var desc, format, xsi, fileRef sql.NullString
	err := row.Scan(&m.ID, &m.DocumentID, &m.MediaToken, &desc, &format, &xsi, &fileRef)
	if err == sql.ErrNoRows {
		return foundation.None[model.MediaAsset](), nil
	}
	if err != nil {
		return foundation.None[model.MediaAsset](), fmt.Errorf("find media asset: %w", err)
	}
	m.Description = strPtr(desc)
	m.MediaFormat = strPtr(format)
	m.XSIType = strPtr(xsi)
	m.FileReference = strPtr(fileRef)
	return foundation.Some(m), nil
}

func (s *SQLiteStore) InsertMediaAsset(ctx context.Context, m model.MediaAsset) (model.MediaAsset, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO media_asset
		(document_id, media_token, description, media_format, xsi_type, file_reference)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.DocumentID, m.MediaToken, nullString(m.Description), nullString(m.MediaFormat), nullString(m.XSIType), nullString(m.FileReference))
	if err != nil {
		return model.MediaAsset{}, fmt.Errorf("insert media asset: %w", err)
	}
	if !inserted {
		existing, err := s.FindMediaAsset(ctx, m.Key())
		if err != nil {
			return model.MediaAsset{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.MediaAsset{}, fmt.Errorf("insert media asset: conflict without existing row")
	}
	m.ID = id
	return m, nil
}

func (s *SQLiteStore) FindMediaLink(ctx context.Context, key model.MediaLinkKey) (foundation.Option[model.MediaLink], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, content_block_id, media_asset_id, seq_position, is_inline
		FROM media_link WHERE content_block_id = ? AND seq_position = ?`, key.ContentBlockID, key.SequencePosition)
	var l model.MediaLink
	err := row.Scan(&l.ID, &l.ContentBlockID, &l.MediaAssetID, &l.SequencePosition, &l.IsInline)
	if err == sql.ErrNoRows {
		return foundation.None[model.MediaLink](), nil
	}
	if err != nil {
		return foundation.None[model.MediaLink](), fmt.Errorf("find media link: %w", err)
	}
	return foundation.Some(l), nil
}

func (s *SQLiteStore) InsertMediaLink(ctx context.Context, l model.MediaLink) (model.MediaLink, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO media_link
		(content_block_id, media_asset_id, seq_position, is_inline) VALUES (?, ?, ?, ?)`,
		l.ContentBlockID, l.MediaAssetID, l.SequencePosition, l.IsInline)
	if err != nil {
		return model.MediaLink{}, fmt.Errorf("insert media link: %w", err)
	}
	if !inserted {
		existing, err := s.FindMediaLink(ctx, model.MediaLinkKey{ContentBlockID: l.ContentBlockID, SequencePosition: l.SequencePosition})
		if err != nil {
			return model.MediaLink{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.MediaLink{}, fmt.Errorf("insert media link: conflict without existing row")
	}
	l.ID = id
	return l, nil
}

func (s *SQLiteStore) ListMediaLinks(ctx context.Context, contentBlockID int64) ([]model.MediaLink, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, content_block_id, media_asset_id, seq_position, is_inline
		FROM media_link WHERE content_block_id = ? ORDER BY seq_position`, contentBlockID)
	if err != nil {
		return nil, fmt.Errorf("list media links: %w", err)
	}
	defer rows.Close()
	var out []model.MediaLink
	for rows.Next() {
		var l model.MediaLink
		if err := rows.Scan(&l.ID, &l.ContentBlockID, &l.MediaAssetID, &l.SequencePosition, &l.IsInline); err != nil {
			return nil, fmt.Errorf("list media links: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) FindHighlightSpan(ctx context.Context, key model.HighlightSpanKey) (foundation.Option[model.HighlightSpan], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, owner_block_id, text FROM highlight_span WHERE owner_block_id = ? AND text = ?`,
		key.OwnerBlockID, key.Text)
	var h model.HighlightSpan
	err := row.Scan(&h.ID, &h.OwnerBlockID, &h.Text)
	if err == sql.ErrNoRows {
		return foundation.None[model.HighlightSpan](), nil
	}
	if err != nil {
		return foundation.None[model.HighlightSpan](), fmt.Errorf("find highlight span: %w", err)
	}
	return foundation.Some(h), nil
}

func (s *SQLiteStore) InsertHighlightSpan(ctx context.Context, h model.HighlightSpan) (model.HighlightSpan, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO highlight_span (owner_block_id, text) VALUES (?, ?)`,
		h.OwnerBlockID, h.Text)
	if err != nil {
		return model.HighlightSpan{}, fmt.Errorf("insert highlight span: %w", err)
	}
	if !inserted {
		existing, err := s.FindHighlightSpan(ctx, model.HighlightSpanKey{OwnerBlockID: h.OwnerBlockID, Text: h.Text})
		if err != nil {
			return model.HighlightSpan{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.HighlightSpan{}, fmt.Errorf("insert highlight span: conflict without existing row")
	}
	h.ID = id
	return h, nil
}

func (s *SQLiteStore) ListHighlightSpans(ctx context.Context, ownerBlockID int64) ([]model.HighlightSpan, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, owner_block_id, text FROM highlight_span WHERE owner_block_id = ? ORDER BY id`, ownerBlockID)
	if err != nil {
		return nil, fmt.Errorf("list highlight spans: %w", err)
	}
	defer rows.Close()
	var out []model.HighlightSpan
	for rows.Next() {
		var h model.HighlightSpan
		if err := rows.Scan(&h.ID, &h.OwnerBlockID, &h.Text); err != nil {
			return nil, fmt.Errorf("list highlight spans: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}
