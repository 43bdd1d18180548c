package model

// Document is one ingested SPL document. DocumentGUID is the natural key:
// re-ingesting the same file finds the existing record.
type Document struct {
	ID            int64
	DocumentGUID  string
	SetGUID       string
	VersionNumber int
	Code          string
	CodeSystem    string
	Title         *string
	EffectiveTime *string
	FileName      string
}

// Key returns the document's natural key.
func (d Document) Key() DocumentKey {
	return DocumentKey{DocumentGUID: d.DocumentGUID}
}

// DocumentKey identifies a document across ingestion passes.
type DocumentKey struct {
	DocumentGUID string
}

// Section is one labeling section within a document. Sections nest; ParentID
// is nil for top-level sections.
type Section struct {
	ID             int64
	DocumentID     int64
	ParentID       *int64
	SectionGUID    string
	Code           string
	CodeSystem     string
	Title          *string
	EffectiveTime  *string
	SequenceNumber int
}

// Key returns the section's natural key. Section GUIDs are unique within a
// document, so the pair is stable across re-ingestion.
func (s Section) Key() SectionKey {
	return SectionKey{DocumentID: s.DocumentID, SectionGUID: s.SectionGUID}
}

// SectionKey identifies a section within a document.
type SectionKey struct {
	DocumentID  int64
	SectionGUID string
}
