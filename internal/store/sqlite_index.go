package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chriserikbarnes/medrecpro/internal/foundation"
	"github.com/chriserikbarnes/medrecpro/internal/model"
)

// IdentifiedSubstance

func (s *SQLiteStore) FindIdentifiedSubstance(ctx context.Context, key model.IdentifiedSubstanceKey) (foundation.Option[model.IdentifiedSubstance], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, section_id, subject_kind, identifier_value, identifier_system, is_definition
		FROM identified_substance WHERE section_id = ? AND identifier_value = ? AND identifier_system = ?`,
		key.SectionID, key.IdentifierValue, key.IdentifierSystem)
	return scanSubstanceRow(row)
}

// FindSubstanceByIdentifier looks up a substance by identifier alone,
// ignoring the owning section. When the same identifier was declared by
// several documents the earliest record wins.
func (s *SQLiteStore) FindSubstanceByIdentifier(ctx context.Context, ident model.SubstanceIdentifier) (foundation.Option[model.IdentifiedSubstance], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, section_id, subject_kind, identifier_value, identifier_system, is_definition
		FROM identified_substance WHERE identifier_value = ? AND identifier_system = ? ORDER BY id LIMIT 1`,
		ident.IdentifierValue, ident.IdentifierSystem)
	return scanSubstanceRow(row)
}

func scanSubstanceRow(row *sql.Row) (foundation.Option[model.IdentifiedSubstance], error) {
	var sub model.IdentifiedSubstance
	var kind string
	err := row.Scan(&sub.ID, &sub.SectionID, &kind, &sub.IdentifierValue, &sub.IdentifierSystem, &sub.IsDefinition)
	if err == sql.ErrNoRows {
		return foundation.None[model.IdentifiedSubstance](), nil
	}
	if err != nil {
		return foundation.None[model.IdentifiedSubstance](), fmt.Errorf("find identified substance: %w", err)
	}
	sub.SubjectKind = model.SubjectKind(kind)
	return foundation.Some(sub), nil
}

func (s *SQLiteStore) InsertIdentifiedSubstance(ctx context.Context, sub model.IdentifiedSubstance) (model.IdentifiedSubstance, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO identified_substance
		(section_id, subject_kind, identifier_value, identifier_system, is_definition) VALUES (?, ?, ?, ?, ?)`,
		sub.SectionID, string(sub.SubjectKind), sub.IdentifierValue, sub.IdentifierSystem, sub.IsDefinition)
	if err != nil {
		return model.IdentifiedSubstance{}, fmt.Errorf("insert identified substance: %w", err)
	}
	if !inserted {
		existing, err := s.FindIdentifiedSubstance(ctx, sub.Key())
		if err != nil {
			return model.IdentifiedSubstance{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.IdentifiedSubstance{}, fmt.Errorf("insert identified substance: conflict without existing row")
	}
	sub.ID = id
	return sub, nil
}

// PharmacologicClass + names, links, hierarchy

func (s *SQLiteStore) FindPharmacologicClass(ctx context.Context, key model.PharmacologicClassKey) (foundation.Option[model.PharmacologicClass], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, defining_substance_id, class_code, class_system, display_name
		FROM pharm_class WHERE class_code = ? AND class_system = ?`, key.ClassCode, key.ClassSystem)
	var c model.PharmacologicClass
	var definer sql.NullInt64
	var name sql.NullString
	err := row.Scan(&c.ID, &definer, &c.ClassCode, &c.ClassSystem, &name)
	if err == sql.ErrNoRows {
		return foundation.None[model.PharmacologicClass](), nil
	}
	if err != nil {
		return foundation.None[model.PharmacologicClass](), fmt.Errorf("find pharmacologic class: %w", err)
	}
	c.DefiningSubstanceID = int64Ptr(definer)
	c.DisplayName = strPtr(name)
	return foundation.Some(c), nil
}

func (s *SQLiteStore) InsertPharmacologicClass(ctx context.Context, c model.PharmacologicClass) (model.PharmacologicClass, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO pharm_class
		(defining_substance_id, class_code, class_system, display_name) VALUES (?, ?, ?, ?)`,
		nullInt64(c.DefiningSubstanceID), c.ClassCode, c.ClassSystem, nullString(c.DisplayName))
	if err != nil {
		return model.PharmacologicClass{}, fmt.Errorf("insert pharmacologic class: %w", err)
	}
	if !inserted {
		existing, err := s.FindPharmacologicClass(ctx, c.Key())
		if err != nil {
			return model.PharmacologicClass{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.PharmacologicClass{}, fmt.Errorf("insert pharmacologic class: conflict without existing row")
	}
	c.ID = id
	return c, nil
}

func (s *SQLiteStore) FindPharmacologicClassName(ctx context.Context, key model.PharmacologicClassNameKey) (foundation.Option[model.PharmacologicClassName], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, class_id, text, use FROM pharm_class_name
		WHERE class_id = ? AND text = ? AND use = ?`, key.ClassID, key.Text, string(key.Use))
	var n model.PharmacologicClassName
	var use string
	err := row.Scan(&n.ID, &n.ClassID, &n.Text, &use)
	if err == sql.ErrNoRows {
		return foundation.None[model.PharmacologicClassName](), nil
	}
	if err != nil {
		return foundation.None[model.PharmacologicClassName](), fmt.Errorf("find class name: %w", err)
	}
	n.Use = model.NameUse(use)
	return foundation.Some(n), nil
}

func (s *SQLiteStore) InsertPharmacologicClassName(ctx context.Context, n model.PharmacologicClassName) (model.PharmacologicClassName, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO pharm_class_name (class_id, text, use) VALUES (?, ?, ?)`,
		n.ClassID, n.Text, string(n.Use))
	if err != nil {
		return model.PharmacologicClassName{}, fmt.Errorf("insert class name: %w", err)
	}
	if !inserted {
		existing, err := s.FindPharmacologicClassName(ctx, model.PharmacologicClassNameKey{ClassID: n.ClassID, Text: n.Text, Use: n.Use})
		if err != nil {
			return model.PharmacologicClassName{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.PharmacologicClassName{}, fmt.Errorf("insert class name: conflict without existing row")
	}
	n.ID = id
	return n, nil
}

func (s *SQLiteStore) FindPharmacologicClassLink(ctx context.Context, key model.PharmacologicClassLinkKey) (foundation.Option[model.PharmacologicClassLink], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, substance_id, class_id FROM pharm_class_link
		WHERE substance_id = ? AND class_id = ?`, key.SubstanceID, key.ClassID)
	var l model.PharmacologicClassLink
	err := row.Scan(&l.ID, &l.SubstanceID, &l.ClassID)
	if err == sql.ErrNoRows {
		return foundation.None[model.PharmacologicClassLink](), nil
	}
	if err != nil {
		return foundation.None[model.PharmacologicClassLink](), fmt.Errorf("find class link: %w", err)
	}
	return foundation.Some(l), nil
}

func (s *SQLiteStore) InsertPharmacologicClassLink(ctx context.Context, l model.PharmacologicClassLink) (model.PharmacologicClassLink, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO pharm_class_link (substance_id, class_id) VALUES (?, ?)`,
		l.SubstanceID, l.ClassID)
	if err != nil {
		return model.PharmacologicClassLink{}, fmt.Errorf("insert class link: %w", err)
	}
	if !inserted {
		existing, err := s.FindPharmacologicClassLink(ctx, model.PharmacologicClassLinkKey{SubstanceID: l.SubstanceID, ClassID: l.ClassID})
		if err != nil {
			return model.PharmacologicClassLink{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.PharmacologicClassLink{}, fmt.Errorf("insert class link: conflict without existing row")
	}
	l.ID = id
	return l, nil
}

func (s *SQLiteStore) FindPharmacologicClassHierarchy(ctx context.Context, key model.PharmacologicClassHierarchyKey) (foundation.Option[model.PharmacologicClassHierarchy], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, child_class_id, parent_class_id FROM pharm_class_hierarchy
		WHERE child_class_id = ? AND parent_class_id = ?`, key.ChildClassID, key.ParentClassID)
	var h model.PharmacologicClassHierarchy
	err := row.Scan(&h.ID, &h.ChildClassID, &h.ParentClassID)
	if err == sql.ErrNoRows {
		return foundation.None[model.PharmacologicClassHierarchy](), nil
	}
	if err != nil {
		return foundation.None[model.PharmacologicClassHierarchy](), fmt.Errorf("find hierarchy edge: %w", err)
	}
	return foundation.Some(h), nil
}

func (s *SQLiteStore) InsertPharmacologicClassHierarchy(ctx context.Context, h model.PharmacologicClassHierarchy) (model.PharmacologicClassHierarchy, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO pharm_class_hierarchy (child_class_id, parent_class_id) VALUES (?, ?)`,
		h.ChildClassID, h.ParentClassID)
	if err != nil {
		return model.PharmacologicClassHierarchy{}, fmt.Errorf("insert hierarchy edge: %w", err)
	}
	if !inserted {
		existing, err := s.FindPharmacologicClassHierarchy(ctx, model.PharmacologicClassHierarchyKey{ChildClassID: h.ChildClassID, ParentClassID: h.ParentClassID})
		if err != nil {
			return model.PharmacologicClassHierarchy{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.PharmacologicClassHierarchy{}, fmt.Errorf("insert hierarchy edge: conflict without existing row")
	}
	h.ID = id
	return h, nil
}

func (s *SQLiteStore) CountPharmacologicClassHierarchy(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pharm_class_hierarchy`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count hierarchy edges: %w", err)
	}
	return n, nil
}

// ProductConcept / equivalence

func (s *SQLiteStore) FindProductConcept(ctx context.Context, key model.ProductConceptKey) (foundation.Option[model.ProductConcept], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, section_id, concept_code, concept_system, concept_kind, form_code, form_code_system
		FROM product_concept WHERE concept_code = ?`, key.ConceptCode)
	var c model.ProductConcept
	var kind string
	var formCode, formSystem sql.NullString
	err := row.Scan(&c.ID, &c.SectionID, &c.ConceptCode, &c.ConceptSystem, &kind, &formCode, &formSystem)
	if err == sql.ErrNoRows {
		return foundation.None[model.ProductConcept](), nil
	}
	if err != nil {
		return foundation.None[model.ProductConcept](), fmt.Errorf("find product concept: %w", err)
	}
	c.ConceptKind = model.ConceptKind(kind)
	c.FormCode = strPtr(formCode)
	c.FormCodeSystem = strPtr(formSystem)
	return foundation.Some(c), nil
}

func (s *SQLiteStore) InsertProductConcept(ctx context.Context, c model.ProductConcept) (model.ProductConcept, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO product_concept
		(section_id, concept_code, concept_system, concept_kind, form_code, form_code_system) VALUES (?, ?, ?, ?, ?, ?)`,
		c.SectionID, c.ConceptCode, c.ConceptSystem, string(c.ConceptKind), nullString(c.FormCode), nullString(c.FormCodeSystem))
	if err != nil {
		return model.ProductConcept{}, fmt.Errorf("insert product concept: %w", err)
	}
	if !inserted {
		existing, err := s.FindProductConcept(ctx, c.Key())
		if err != nil {
			return model.ProductConcept{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.ProductConcept{}, fmt.Errorf("insert product concept: conflict without existing row")
	}
	c.ID = id
	return c, nil
}

func (s *SQLiteStore) FindProductConceptEquivalence(ctx context.Context, key model.ProductConceptEquivalenceKey) (foundation.Option[model.ProductConceptEquivalence], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, application_concept_id, abstract_concept_id, equivalence_code, equivalence_system
		FROM product_concept_equivalence WHERE application_concept_id = ? AND abstract_concept_id = ?`,
		key.ApplicationConceptID, key.AbstractConceptID)
	var e model.ProductConceptEquivalence
	var code, system sql.NullString
	err := row.Scan(&e.ID, &e.ApplicationConceptID, &e.AbstractConceptID, &code, &system)
	if err == sql.ErrNoRows {
		return foundation.None[model.ProductConceptEquivalence](), nil
	}
	if err != nil {
		return foundation.None[model.ProductConceptEquivalence](), fmt.Errorf("find equivalence: %w", err)
	}
	e.EquivalenceCode = strPtr(code)
	e.EquivalenceSystem = strPtr(system)
	return foundation.Some(e), nil
}

func (s *SQLiteStore) InsertProductConceptEquivalence(ctx context.Context, e model.ProductConceptEquivalence) (model.ProductConceptEquivalence, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO product_concept_equivalence
		(application_concept_id, abstract_concept_id, equivalence_code, equivalence_system) VALUES (?, ?, ?, ?)`,
		e.ApplicationConceptID, e.AbstractConceptID, nullString(e.EquivalenceCode), nullString(e.EquivalenceSystem))
	if err != nil {
		return model.ProductConceptEquivalence{}, fmt.Errorf("insert equivalence: %w", err)
	}
	if !inserted {
		existing, err := s.FindProductConceptEquivalence(ctx, model.ProductConceptEquivalenceKey{ApplicationConceptID: e.ApplicationConceptID, AbstractConceptID: e.AbstractConceptID})
		if err != nil {
			return model.ProductConceptEquivalence{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.ProductConceptEquivalence{}, fmt.Errorf("insert equivalence: conflict without existing row")
	}
	e.ID = id
	return e, nil
}

// Interactions

func (s *SQLiteStore) FindInteractionIssue(ctx context.Context, key model.InteractionIssueKey) (foundation.Option[model.InteractionIssue], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, section_id, interaction_code, code_system, text
		FROM interaction_issue WHERE section_id = ? AND interaction_code = ?`, key.SectionID, key.InteractionCode)
	var i model.InteractionIssue
	var text sql.NullString
	err := row.Scan(&i.ID, &i.SectionID, &i.InteractionCode, &i.CodeSystem, &text)
	if err == sql.ErrNoRows {
		return foundation.None[model.InteractionIssue](), nil
	}
	if err != nil {
		return foundation.None[model.InteractionIssue](), fmt.Errorf("find interaction issue: %w", err)
	}
	i.Text = strPtr(text)
	return foundation.Some(i), nil
}

func (s *SQLiteStore) InsertInteractionIssue(ctx context.Context, i model.InteractionIssue) (model.InteractionIssue, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO interaction_issue
		(section_id, interaction_code, code_system, text) VALUES (?, ?, ?, ?)`,
		i.SectionID, i.InteractionCode, i.CodeSystem, nullString(i.Text))
	if err != nil {
		return model.InteractionIssue{}, fmt.Errorf("insert interaction issue: %w", err)
	}
	if !inserted {
		existing, err := s.FindInteractionIssue(ctx, i.Key())
		if err != nil {
			return model.InteractionIssue{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.InteractionIssue{}, fmt.Errorf("insert interaction issue: conflict without existing row")
	}
	i.ID = id
	return i, nil
}

func (s *SQLiteStore) FindContributingFactor(ctx context.Context, key model.ContributingFactorKey) (foundation.Option[model.ContributingFactor], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, issue_id, factor_substance_id FROM contributing_factor
		WHERE issue_id = ? AND factor_substance_id = ?`, key.IssueID, key.FactorSubstanceID)
	var f model.ContributingFactor
	err := row.Scan(&f.ID, &f.IssueID, &f.FactorSubstanceID)
	if err == sql.ErrNoRows {
		return foundation.None[model.ContributingFactor](), nil
	}
	if err != nil {
		return foundation.None[model.ContributingFactor](), fmt.Errorf("find contributing factor: %w", err)
	}
	return foundation.Some(f), nil
}

func (s *SQLiteStore) InsertContributingFactor(ctx context.Context, f model.ContributingFactor) (model.ContributingFactor, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO contributing_factor (issue_id, factor_substance_id) VALUES (?, ?)`,
		f.IssueID, f.FactorSubstanceID)
	if err != nil {
		return model.ContributingFactor{}, fmt.Errorf("insert contributing factor: %w", err)
	}
	if !inserted {
		existing, err := s.FindContributingFactor(ctx, model.ContributingFactorKey{IssueID: f.IssueID, FactorSubstanceID: f.FactorSubstanceID})
		if err != nil {
			return model.ContributingFactor{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.ContributingFactor{}, fmt.Errorf("insert contributing factor: conflict without existing row")
	}
	f.ID = id
	return f, nil
}

func (s *SQLiteStore) FindInteractionConsequence(ctx context.Context, key model.InteractionConsequenceKey) (foundation.Option[model.InteractionConsequence], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, issue_id, consequence_value_code, consequence_system, display_name
		FROM interaction_consequence WHERE issue_id = ? AND consequence_value_code = ?`, key.IssueID, key.ConsequenceValueCode)
	var c model.InteractionConsequence
	var system, name sql.NullString
	err := row.Scan(&c.ID, &c.IssueID, &c.ConsequenceValueCode, &system, &name)
	if err == sql.ErrNoRows {
		return foundation.None[model.InteractionConsequence](), nil
	}
	if err != nil {
		return foundation.None[model.InteractionConsequence](), fmt.Errorf("find consequence: %w", err)
	}
	c.ConsequenceSystem = strPtr(system)
	c.DisplayName = strPtr(name)
	return foundation.Some(c), nil
}

func (s *SQLiteStore) InsertInteractionConsequence(ctx context.Context, c model.InteractionConsequence) (model.InteractionConsequence, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO interaction_consequence
		(issue_id, consequence_value_code, consequence_system, display_name) VALUES (?, ?, ?, ?)`,
		c.IssueID, c.ConsequenceValueCode, nullString(c.ConsequenceSystem), nullString(c.DisplayName))
	if err != nil {
		return model.InteractionConsequence{}, fmt.Errorf("insert consequence: %w", err)
	}
	if !inserted {
		existing, err := s.FindInteractionConsequence(ctx, model.InteractionConsequenceKey{IssueID: c.IssueID, ConsequenceValueCode: c.ConsequenceValueCode})
		if err != nil {
			return model.InteractionConsequence{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.InteractionConsequence{}, fmt.Errorf("insert consequence: conflict without existing row")
	}
	c.ID = id
	return c, nil
}

// Ancillary links

func (s *SQLiteStore) FindClinicalTrialLink(ctx context.Context, key model.ClinicalTrialLinkKey) (foundation.Option[model.ClinicalTrialLink], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, section_id, trial_identifier, registry FROM clinical_trial_link
		WHERE section_id = ? AND trial_identifier = ?`, key.SectionID, key.TrialIdentifier)
	var l model.ClinicalTrialLink
	var registry sql.NullString
	err := row.Scan(&l.ID, &l.SectionID, &l.TrialIdentifier, &registry)
	if err == sql.ErrNoRows {
		return foundation.None[model.ClinicalTrialLink](), nil
	}
	if err != nil {
		return foundation.None[model.ClinicalTrialLink](), fmt.Errorf("find clinical trial link: %w", err)
	}
	l.Registry = strPtr(registry)
	return foundation.Some(l), nil
}

func (s *SQLiteStore) InsertClinicalTrialLink(ctx context.Context, l model.ClinicalTrialLink) (model.ClinicalTrialLink, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO clinical_trial_link (section_id, trial_identifier, registry) VALUES (?, ?, ?)`,
		l.SectionID, l.TrialIdentifier, nullString(l.Registry))
	if err != nil {
		return model.ClinicalTrialLink{}, fmt.Errorf("insert clinical trial link: %w", err)
	}
	if !inserted {
		existing, err := s.FindClinicalTrialLink(ctx, model.ClinicalTrialLinkKey{SectionID: l.SectionID, TrialIdentifier: l.TrialIdentifier})
		if err != nil {
			return model.ClinicalTrialLink{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.ClinicalTrialLink{}, fmt.Errorf("insert clinical trial link: conflict without existing row")
	}
	l.ID = id
	return l, nil
}

func (s *SQLiteStore) FindBillingUnitLink(ctx context.Context, key model.BillingUnitLinkKey) (foundation.Option[model.BillingUnitLink], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, section_id, billing_unit_code, package_code FROM billing_unit_link
		WHERE section_id = ? AND billing_unit_code = ?`, key.SectionID, key.BillingUnitCode)
	var l model.BillingUnitLink
	var pkg sql.NullString
	err := row.Scan(&l.ID, &l.SectionID, &l.BillingUnitCode, &pkg)
	if err == sql.ErrNoRows {
		return foundation.None[model.BillingUnitLink](), nil
	}
	if err != nil {
		return foundation.None[model.BillingUnitLink](), fmt.Errorf("find billing unit link: %w", err)
	}
	l.PackageCode = strPtr(pkg)
	return foundation.Some(l), nil
}

func (s *SQLiteStore) InsertBillingUnitLink(ctx context.Context, l model.BillingUnitLink) (model.BillingUnitLink, error) {
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO billing_unit_link (section_id, billing_unit_code, package_code) VALUES (?, ?, ?)`,
		l.SectionID, l.BillingUnitCode, nullString(l.PackageCode))
	if err != nil {
		return model.BillingUnitLink{}, fmt.Errorf("insert billing unit link: %w", err)
	}
	if !inserted {
		existing, err := s.FindBillingUnitLink(ctx, model.BillingUnitLinkKey{SectionID: l.SectionID, BillingUnitCode: l.BillingUnitCode})
		if err != nil {
			return model.BillingUnitLink{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.BillingUnitLink{}, fmt.Errorf("insert billing unit link: conflict without existing row")
	}
	l.ID = id
	return l, nil
}

// Pending references

func (s *SQLiteStore) FindPendingReference(ctx context.Context, key model.PendingReferenceKey) (foundation.Option[model.PendingReference], error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, ref_kind, natural_key, source_id, created_at, resolved_at
		FROM pending_reference WHERE ref_kind = ? AND natural_key = ? AND source_id = ?`,
		string(key.RefKind), key.NaturalKey, key.SourceID)
	p, err := scanPendingReference(row.Scan)
	if err == sql.ErrNoRows {
		return foundation.None[model.PendingReference](), nil
	}
	if err != nil {
		return foundation.None[model.PendingReference](), fmt.Errorf("find pending reference: %w", err)
	}
	return foundation.Some(p), nil
}

func scanPendingReference(scan func(...any) error) (model.PendingReference, error) {
	var p model.PendingReference
	var kind string
	var createdAt int64
	var resolvedAt sql.NullInt64
	err := scan(&p.ID, &kind, &p.NaturalKey, &p.SourceID, &createdAt, &resolvedAt)
	if err != nil {
		return model.PendingReference{}, err
	}
	p.RefKind = model.PendingRefKind(kind)
	p.CreatedAt = time.Unix(createdAt, 0).UTC()
	if resolvedAt.Valid {
		t := time.Unix(resolvedAt.Int64, 0).UTC()
		p.ResolvedAt = &t
	}
	return p, nil
}

func (s *SQLiteStore) InsertPendingReference(ctx context.Context, p model.PendingReference) (model.PendingReference, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	id, inserted, err := s.exec(ctx, `INSERT OR IGNORE INTO pending_reference
		(ref_kind, natural_key, source_id, created_at, resolved_at) VALUES (?, ?, ?, ?, NULL)`,
		string(p.RefKind), p.NaturalKey, p.SourceID, p.CreatedAt.Unix())
	if err != nil {
		return model.PendingReference{}, fmt.Errorf("insert pending reference: %w", err)
	}
	if !inserted {
		existing, err := s.FindPendingReference(ctx, p.Key())
		if err != nil {
			return model.PendingReference{}, err
		}
		if v, ok := existing.Get(); ok {
			return v, nil
		}
		return model.PendingReference{}, fmt.Errorf("insert pending reference: conflict without existing row")
	}
	p.ID = id
	return p, nil
}

func (s *SQLiteStore) ListOpenPendingReferences(ctx context.Context) ([]model.PendingReference, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, ref_kind, natural_key, source_id, created_at, resolved_at
		FROM pending_reference WHERE resolved_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list pending references: %w", err)
	}
	defer rows.Close()
	var out []model.PendingReference
	for rows.Next() {
		p, err := scanPendingReference(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list pending references: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ClosePendingReference marks a ledger entry resolved. This is the only
// update the store performs; domain entities stay append-only.
func (s *SQLiteStore) ClosePendingReference(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `UPDATE pending_reference SET resolved_at = ? WHERE id = ? AND resolved_at IS NULL`,
		time.Now().UTC().Unix(), id)
	if err != nil {
		return fmt.Errorf("close pending reference: %w", err)
	}
	return nil
}
