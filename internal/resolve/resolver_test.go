package resolve

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserikbarnes/medrecpro/internal/markup"
	"github.com/chriserikbarnes/medrecpro/internal/model"
	"github.com/chriserikbarnes/medrecpro/internal/report"
	"github.com/chriserikbarnes/medrecpro/internal/store"
)

type resolverFixture struct {
	store    *store.SQLiteStore
	resolver *Resolver
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()
	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return &resolverFixture{store: s, resolver: NewResolver(s, nil)}
}

// newSection persists a fresh document with one section and returns the
// section. The n argument keeps GUIDs distinct across calls.
func (f *resolverFixture) newSection(t *testing.T, n int) model.Section {
	t.Helper()
	ctx := context.Background()
	doc, err := f.store.InsertDocument(ctx, model.Document{
		DocumentGUID: fmt.Sprintf("00000000-0000-0000-0000-%012d", n),
		SetGUID:      fmt.Sprintf("10000000-0000-0000-0000-%012d", n),
		Code:         "82351-8",
		CodeSystem:   "2.16.840.1.113883.6.1",
		FileName:     fmt.Sprintf("doc%d.xml", n),
	})
	require.NoError(t, err)
	sec, err := f.store.InsertSection(ctx, model.Section{
		DocumentID:     doc.ID,
		SectionGUID:    fmt.Sprintf("20000000-0000-0000-0000-%012d", n),
		Code:           "48779-3",
		CodeSystem:     "2.16.840.1.113883.6.1",
		SequenceNumber: 1,
	})
	require.NoError(t, err)
	return sec
}

func (f *resolverFixture) resolve(t *testing.T, sec model.Section, xml string) report.Report {
	t.Helper()
	node, err := markup.DecodeString(xml)
	require.NoError(t, err)
	var rep report.Report
	require.NoError(t, f.resolver.ResolveSection(context.Background(), sec.DocumentID, sec.ID, node, &rep))
	return rep
}

const moietyXML = `<section>
	<subject>
		<identifiedSubstance>
			<identifiedSubstance>
				<code code="R16CO5Y76E" codeSystem="2.16.840.1.113883.4.9"/>
				<asSpecializedKind>
					<generalizedMaterialKind>
						<code code="N0000175565" codeSystem="2.16.840.1.113883.3.26.1.5" displayName="Cyclooxygenase Inhibitors"/>
						<name use="L">Cyclooxygenase Inhibitors [MoA]</name>
						<name>COX Inhibitors</name>
						<asSpecializedKind>
							<generalizedMaterialKind>
								<code code="N0000009917" codeSystem="2.16.840.1.113883.3.26.1.5"/>
							</generalizedMaterialKind>
						</asSpecializedKind>
					</generalizedMaterialKind>
				</asSpecializedKind>
			</identifiedSubstance>
		</identifiedSubstance>
	</subject>
</section>`

func TestMoietyClassResolution(t *testing.T) {
	f := newResolverFixture(t)
	sec := f.newSection(t, 1)
	rep := f.resolve(t, sec, moietyXML)
	assert.Empty(t, rep.Warnings)

	ctx := context.Background()
	sub, err := f.store.FindSubstanceByIdentifier(ctx, model.SubstanceIdentifier{
		IdentifierValue:  "R16CO5Y76E",
		IdentifierSystem: model.OIDActiveMoietySystem,
	})
	require.NoError(t, err)
	require.True(t, sub.IsSome())
	assert.Equal(t, model.SubjectActiveMoiety, sub.MustGet().SubjectKind)
	assert.False(t, sub.MustGet().IsDefinition)

	class, err := f.store.FindPharmacologicClass(ctx, model.PharmacologicClassKey{
		ClassCode:   "N0000175565",
		ClassSystem: model.OIDPharmClassSystem,
	})
	require.NoError(t, err)
	require.True(t, class.IsSome())
	assert.Nil(t, class.MustGet().DefiningSubstanceID, "branch A classes are un-owned")
	assert.Equal(t, "Cyclooxygenase Inhibitors", *class.MustGet().DisplayName)

	preferred, err := f.store.FindPharmacologicClassName(ctx, model.PharmacologicClassNameKey{
		ClassID: class.MustGet().ID,
		Text:    "Cyclooxygenase Inhibitors [MoA]",
		Use:     model.NamePreferred,
	})
	require.NoError(t, err)
	assert.True(t, preferred.IsSome())

	link, err := f.store.FindPharmacologicClassLink(ctx, model.PharmacologicClassLinkKey{
		SubstanceID: sub.MustGet().ID,
		ClassID:     class.MustGet().ID,
	})
	require.NoError(t, err)
	assert.True(t, link.IsSome())

	parent, err := f.store.FindPharmacologicClass(ctx, model.PharmacologicClassKey{
		ClassCode:   "N0000009917",
		ClassSystem: model.OIDPharmClassSystem,
	})
	require.NoError(t, err)
	require.True(t, parent.IsSome())
	edge, err := f.store.FindPharmacologicClassHierarchy(ctx, model.PharmacologicClassHierarchyKey{
		ChildClassID:  class.MustGet().ID,
		ParentClassID: parent.MustGet().ID,
	})
	require.NoError(t, err)
	assert.True(t, edge.IsSome())
}

func TestHierarchyEdgeUniqueAcrossDocuments(t *testing.T) {
	f := newResolverFixture(t)

	f.resolve(t, f.newSection(t, 1), moietyXML)
	count, err := f.store.CountPharmacologicClassHierarchy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// The same child-parent relationship arriving from a second document
	// must not create a second edge.
	f.resolve(t, f.newSection(t, 2), moietyXML)
	count, err = f.store.CountPharmacologicClassHierarchy(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestClassDefinitionBranch(t *testing.T) {
	f := newResolverFixture(t)
	sec := f.newSection(t, 1)
	f.resolve(t, sec, `<section>
		<subject>
			<identifiedSubstance>
				<identifiedSubstance>
					<code code="N0000175565" codeSystem="2.16.840.1.113883.3.26.1.5" displayName="Cyclooxygenase Inhibitors"/>
					<name use="L">Cyclooxygenase Inhibitors [MoA]</name>
					<name>COX Inhibitors</name>
					<asSpecializedKind>
						<generalizedMaterialKind>
							<code code="N0000009917" codeSystem="2.16.840.1.113883.3.26.1.5"/>
						</generalizedMaterialKind>
					</asSpecializedKind>
				</identifiedSubstance>
			</identifiedSubstance>
		</subject>
	</section>`)

	ctx := context.Background()
	sub, err := f.store.FindSubstanceByIdentifier(ctx, model.SubstanceIdentifier{
		IdentifierValue:  "N0000175565",
		IdentifierSystem: model.OIDPharmClassSystem,
	})
	require.NoError(t, err)
	require.True(t, sub.IsSome())
	assert.Equal(t, model.SubjectPharmClass, sub.MustGet().SubjectKind)
	assert.True(t, sub.MustGet().IsDefinition)

	class, err := f.store.FindPharmacologicClass(ctx, model.PharmacologicClassKey{
		ClassCode:   "N0000175565",
		ClassSystem: model.OIDPharmClassSystem,
	})
	require.NoError(t, err)
	require.True(t, class.IsSome())
	require.NotNil(t, class.MustGet().DefiningSubstanceID)
	assert.Equal(t, sub.MustGet().ID, *class.MustGet().DefiningSubstanceID)

	alternate, err := f.store.FindPharmacologicClassName(ctx, model.PharmacologicClassNameKey{
		ClassID: class.MustGet().ID,
		Text:    "COX Inhibitors",
		Use:     model.NameAlternate,
	})
	require.NoError(t, err)
	assert.True(t, alternate.IsSome())

	count, err := f.store.CountPharmacologicClassHierarchy(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "super-class reference becomes one hierarchy edge")
}

const applicationXML = `<section>
	<subject>
		<manufacturedProduct>
			<manufacturedProduct>
				<code code="APP100" codeSystem="2.16.840.1.113883.3.2964"/>
				<formCode code="C42998" codeSystem="2.16.840.1.113883.3.26.1.1"/>
				<asEquivalentEntity>
					<code code="C64637" codeSystem="2.16.840.1.113883.3.26.1.1"/>
					<definingMaterialKind>
						<code code="ABS200" codeSystem="2.16.840.1.113883.3.2964"/>
					</definingMaterialKind>
				</asEquivalentEntity>
			</manufacturedProduct>
		</manufacturedProduct>
	</subject>
</section>`

const abstractXML = `<section>
	<subject>
		<manufacturedProduct>
			<manufacturedProduct>
				<code code="ABS200" codeSystem="2.16.840.1.113883.3.2964"/>
			</manufacturedProduct>
		</manufacturedProduct>
	</subject>
</section>`

func TestForwardReferenceTolerance(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()

	// Application document first: the abstract target does not exist yet.
	rep := f.resolve(t, f.newSection(t, 1), applicationXML)
	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "ABS200")

	app, err := f.store.FindProductConcept(ctx, model.ProductConceptKey{ConceptCode: "APP100"})
	require.NoError(t, err)
	require.True(t, app.IsSome(), "the concept persists alone on a miss")
	assert.Equal(t, model.ConceptApplication, app.MustGet().ConceptKind)
	assert.Equal(t, "C42998", *app.MustGet().FormCode)

	open, err := f.store.ListOpenPendingReferences(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, model.PendingEquivalence, open[0].RefKind)
	assert.Equal(t, "ABS200", open[0].NaturalKey)

	// Ingest the abstract document, then run the resolution pass.
	f.resolve(t, f.newSection(t, 2), abstractXML)
	var passRep report.Report
	closed, err := f.resolver.ResolvePending(ctx, &passRep)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	abstract, err := f.store.FindProductConcept(ctx, model.ProductConceptKey{ConceptCode: "ABS200"})
	require.NoError(t, err)
	require.True(t, abstract.IsSome())
	assert.Equal(t, model.ConceptAbstract, abstract.MustGet().ConceptKind)

	eq, err := f.store.FindProductConceptEquivalence(ctx, model.ProductConceptEquivalenceKey{
		ApplicationConceptID: app.MustGet().ID,
		AbstractConceptID:    abstract.MustGet().ID,
	})
	require.NoError(t, err)
	assert.True(t, eq.IsSome(), "exactly one equivalence after the pass")

	open, err = f.store.ListOpenPendingReferences(ctx)
	require.NoError(t, err)
	assert.Empty(t, open, "resolved entries are closed")
}

func TestRepeatedMissCollapsesToOnePendingEntry(t *testing.T) {
	f := newResolverFixture(t)
	f.resolve(t, f.newSection(t, 1), applicationXML)
	f.resolve(t, f.newSection(t, 1), applicationXML)

	open, err := f.store.ListOpenPendingReferences(context.Background())
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestInteractionResolution(t *testing.T) {
	f := newResolverFixture(t)
	ctx := context.Background()

	// Declare the substance in one document, reference it from another.
	f.resolve(t, f.newSection(t, 1), moietyXML)
	rep := f.resolve(t, f.newSection(t, 2), `<section>
		<subject>
			<substanceAdministration>
				<issue>
					<code code="C54708" codeSystem="2.16.840.1.113883.3.26.1.1"/>
					<text>Increased bleeding risk</text>
					<contributingFactor>
						<code code="R16CO5Y76E" codeSystem="2.16.840.1.113883.4.9"/>
					</contributingFactor>
					<contributingFactor>
						<code code="UNKNOWN99" codeSystem="2.16.840.1.113883.4.9"/>
					</contributingFactor>
					<consequence>
						<value code="C54357" codeSystem="2.16.840.1.113883.3.26.1.1" displayName="Pharmacokinetic interaction"/>
					</consequence>
				</issue>
			</substanceAdministration>
		</subject>
	</section>`)

	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "UNKNOWN99")

	open, err := f.store.ListOpenPendingReferences(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, model.PendingInteractionFactor, open[0].RefKind)
	assert.Equal(t, "UNKNOWN99|2.16.840.1.113883.4.9", open[0].NaturalKey)

	sub, err := f.store.FindSubstanceByIdentifier(ctx, model.SubstanceIdentifier{
		IdentifierValue:  "R16CO5Y76E",
		IdentifierSystem: model.OIDActiveMoietySystem,
	})
	require.NoError(t, err)
	factor, err := f.store.FindContributingFactor(ctx, model.ContributingFactorKey{
		IssueID:           open[0].SourceID,
		FactorSubstanceID: sub.MustGet().ID,
	})
	require.NoError(t, err)
	assert.True(t, factor.IsSome(), "resolved factor persists despite the sibling miss")

	cons, err := f.store.FindInteractionConsequence(ctx, model.InteractionConsequenceKey{
		IssueID:              open[0].SourceID,
		ConsequenceValueCode: "C54357",
	})
	require.NoError(t, err)
	require.True(t, cons.IsSome())
	assert.Equal(t, "Pharmacokinetic interaction", *cons.MustGet().DisplayName)

	// A later declaration of the missing substance closes the ledger entry.
	f.resolve(t, f.newSection(t, 3), `<section>
		<subject>
			<identifiedSubstance>
				<identifiedSubstance>
					<code code="UNKNOWN99" codeSystem="2.16.840.1.113883.4.9"/>
				</identifiedSubstance>
			</identifiedSubstance>
		</subject>
	</section>`)
	var passRep report.Report
	closed, err := f.resolver.ResolvePending(ctx, &passRep)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)
}

func TestAncillaryLinks(t *testing.T) {
	f := newResolverFixture(t)
	sec := f.newSection(t, 1)
	rep := f.resolve(t, sec, `<section>
		<protocol>
			<id extension="NCT01234567" root="2.16.840.1.113883.3.1077"/>
		</protocol>
		<protocol>
			<id extension="NCT999" root="2.16.840.1.113883.3.1077"/>
		</protocol>
		<policy>
			<code code="EA" codeSystem="2.16.840.1.113883.2.13"/>
			<packageCode code="0002-3227-30"/>
		</policy>
	</section>`)

	require.Len(t, rep.Warnings, 1)
	assert.Contains(t, rep.Warnings[0], "NCT999")

	ctx := context.Background()
	trial, err := f.store.FindClinicalTrialLink(ctx, model.ClinicalTrialLinkKey{
		SectionID:       sec.ID,
		TrialIdentifier: "NCT01234567",
	})
	require.NoError(t, err)
	require.True(t, trial.IsSome())
	assert.Equal(t, "2.16.840.1.113883.3.1077", *trial.MustGet().Registry)

	malformed, err := f.store.FindClinicalTrialLink(ctx, model.ClinicalTrialLinkKey{
		SectionID:       sec.ID,
		TrialIdentifier: "NCT999",
	})
	require.NoError(t, err)
	assert.True(t, malformed.IsNone(), "malformed identifiers are never persisted")

	billing, err := f.store.FindBillingUnitLink(ctx, model.BillingUnitLinkKey{
		SectionID:       sec.ID,
		BillingUnitCode: "EA",
	})
	require.NoError(t, err)
	require.True(t, billing.IsSome())
	assert.Equal(t, "0002-3227-30", *billing.MustGet().PackageCode)
}

func TestResolveIsIdempotent(t *testing.T) {
	f := newResolverFixture(t)
	sec := f.newSection(t, 1)

	first := f.resolve(t, sec, moietyXML)
	assert.Greater(t, first.Created, 0)

	second := f.resolve(t, sec, moietyXML)
	assert.Zero(t, second.Created)
}
