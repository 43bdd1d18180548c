package model

// IdentifiedSubstance is the primary substance declaration of an indexing
// section: either an active moiety (UNII identifier system) or a
// pharmacologic class definition. SectionID is the owning section.
type IdentifiedSubstance struct {
	ID               int64
	SectionID        int64
	SubjectKind      SubjectKind
	IdentifierValue  string
	IdentifierSystem string
	IsDefinition     bool
}

// Key returns the substance's natural key.
func (s IdentifiedSubstance) Key() IdentifiedSubstanceKey {
	return IdentifiedSubstanceKey{
		SectionID:        s.SectionID,
		IdentifierValue:  s.IdentifierValue,
		IdentifierSystem: s.IdentifierSystem,
	}
}

// IdentifiedSubstanceKey is the dedup key for an identified substance.
type IdentifiedSubstanceKey struct {
	SectionID        int64
	IdentifierValue  string
	IdentifierSystem string
}

// SubstanceIdentifier is the owner-independent lookup key used when resolving
// cross-document references (interaction contributing factors).
type SubstanceIdentifier struct {
	IdentifierValue  string
	IdentifierSystem string
}

// PharmacologicClass is a node of the class graph. Globally unique on
// (ClassCode, ClassSystem): the same class is referenced from many documents.
// DefiningSubstanceID is set only when some document defines the class.
type PharmacologicClass struct {
	ID                  int64
	DefiningSubstanceID *int64
	ClassCode           string
	ClassSystem         string
	DisplayName         *string
}

// Key returns the class's natural key.
func (c PharmacologicClass) Key() PharmacologicClassKey {
	return PharmacologicClassKey{ClassCode: c.ClassCode, ClassSystem: c.ClassSystem}
}

// PharmacologicClassKey is the global dedup key for a class.
type PharmacologicClassKey struct {
	ClassCode   string
	ClassSystem string
}

// PharmacologicClassName is one name record of a class.
type PharmacologicClassName struct {
	ID      int64
	ClassID int64
	Text    string
	Use     NameUse
}

// PharmacologicClassNameKey is the dedup key for a class name.
type PharmacologicClassNameKey struct {
	ClassID int64
	Text    string
	Use     NameUse
}

// PharmacologicClassLink associates an active moiety with a class.
type PharmacologicClassLink struct {
	ID          int64
	SubstanceID int64
	ClassID     int64
}

// PharmacologicClassLinkKey is the dedup key for a moiety-class association.
type PharmacologicClassLinkKey struct {
	SubstanceID int64
	ClassID     int64
}

// PharmacologicClassHierarchy is one child-to-parent edge of the class DAG.
// The same edge encountered from two documents persists once. Cycle
// detection is not performed; see DESIGN.md.
type PharmacologicClassHierarchy struct {
	ID            int64
	ChildClassID  int64
	ParentClassID int64
}

// PharmacologicClassHierarchyKey is the dedup key for a hierarchy edge.
type PharmacologicClassHierarchyKey struct {
	ChildClassID  int64
	ParentClassID int64
}
