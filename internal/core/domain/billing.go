package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConceptType classifies what an invoice line charges for.
type ConceptType string

const (
	ConceptAdministration   ConceptType = "administration"
	ConceptExtraordinaryFee ConceptType = "extraordinary_fee"
	ConceptParking          ConceptType = "parking"
	ConceptUtilities        ConceptType = "utilities"
	ConceptLateFee          ConceptType = "late_fee"
	ConceptOther            ConceptType = "other"
	// ConceptUnassigned is the fallback arm for lines that carry no concept.
	ConceptUnassigned ConceptType = "unassigned"
)

// Known reports whether c is one of the declared concept types (including unassigned).
func (c ConceptType) Known() bool {
	switch c {
	case ConceptAdministration, ConceptExtraordinaryFee, ConceptParking,
		ConceptUtilities, ConceptLateFee, ConceptOther, ConceptUnassigned:
		return true
	}
	return false
}

// Invoice is a billing record owned by the invoicing module.
type Invoice struct {
	InvoiceID   string          `json:"invoiceID"`
	TenantID    string          `json:"tenantID"`
	Number      string          `json:"number"`
	ApartmentID string          `json:"apartmentID"`
	IssueDate   time.Time       `json:"issueDate"`
	DueDate     time.Time       `json:"dueDate"`
	Total       decimal.Decimal `json:"total"`
	Items       []InvoiceItem   `json:"items"`
}

// InvoiceItem is one charged line. ConceptID is empty when no concept was assigned.
type InvoiceItem struct {
	ItemID      string          `json:"itemID"`
	ConceptID   string          `json:"conceptID,omitempty"`
	ConceptType ConceptType     `json:"conceptType,omitempty"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// Concept returns the explicit concept type of the line, or ConceptUnassigned.
func (i InvoiceItem) Concept() ConceptType {
	if i.ConceptType == "" && i.ConceptID == "" {
		return ConceptUnassigned
	}
	if i.ConceptType == "" || !i.ConceptType.Known() {
		return ConceptOther
	}
	return i.ConceptType
}

// Payment is a receipt against an invoice.
type Payment struct {
	PaymentID  string          `json:"paymentID"`
	TenantID   string          `json:"tenantID"`
	InvoiceID  string          `json:"invoiceID"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

// ConceptGroup gathers the lines of an invoice that share a concept.
type ConceptGroup struct {
	Type      ConceptType     `json:"type"`
	ConceptID string          `json:"conceptID,omitempty"`
	Items     []InvoiceItem   `json:"items"`
	Total     decimal.Decimal `json:"total"`
}

// Key identifies the group inside its invoice.
func (g ConceptGroup) Key() string {
	if g.ConceptID == "" {
		return string(g.Type)
	}
	return string(g.Type) + ":" + g.ConceptID
}

// GroupByConcept groups invoice lines by (concept type, concept ID) in order of first appearance.
func GroupByConcept(items []InvoiceItem) []ConceptGroup {
	groups := make([]ConceptGroup, 0)
	index := make(map[string]int)
	for _, item := range items {
		g := ConceptGroup{Type: item.Concept(), ConceptID: item.ConceptID}
		key := g.Key()
		i, ok := index[key]
		if !ok {
			g.Total = decimal.Zero
			groups = append(groups, g)
			i = len(groups) - 1
			index[key] = i
		}
		groups[i].Items = append(groups[i].Items, item)
		groups[i].Total = groups[i].Total.Add(item.Amount)
	}
	return groups
}
