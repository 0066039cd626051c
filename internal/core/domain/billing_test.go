package domain_test

import (
	"testing"

	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupByConcept(t *testing.T) {
	items := []domain.InvoiceItem{
		{ItemID: "1", ConceptID: "c-adm", ConceptType: domain.ConceptAdministration, Amount: decimal.NewFromInt(150000)},
		{ItemID: "2", ConceptType: domain.ConceptLateFee, Amount: decimal.NewFromInt(100000)},
		{ItemID: "3", ConceptID: "c-adm", ConceptType: domain.ConceptAdministration, Amount: decimal.NewFromInt(50000)},
		{ItemID: "4", Description: "legacy line", Amount: decimal.NewFromInt(7000)},
	}

	groups := domain.GroupByConcept(items)
	require.Len(t, groups, 3)

	assert.Equal(t, domain.ConceptAdministration, groups[0].Type)
	assert.Equal(t, "administration:c-adm", groups[0].Key())
	assert.True(t, groups[0].Total.Equal(decimal.NewFromInt(200000)))
	assert.Len(t, groups[0].Items, 2)

	assert.Equal(t, domain.ConceptLateFee, groups[1].Type)
	assert.Equal(t, "late_fee", groups[1].Key())

	assert.Equal(t, domain.ConceptUnassigned, groups[2].Type)
	assert.True(t, groups[2].Total.Equal(decimal.NewFromInt(7000)))
}

func TestInvoiceItem_Concept(t *testing.T) {
	assert.Equal(t, domain.ConceptUnassigned, domain.InvoiceItem{}.Concept())
	assert.Equal(t, domain.ConceptOther, domain.InvoiceItem{ConceptID: "x"}.Concept())
	assert.Equal(t, domain.ConceptOther, domain.InvoiceItem{ConceptType: "gym"}.Concept())
	assert.Equal(t, domain.ConceptParking, domain.InvoiceItem{ConceptType: domain.ConceptParking}.Concept())
}
