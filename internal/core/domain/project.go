// Package domain defines the core domain models for bil.
package domain

import (
	"github.com/shopspring/decimal"
)

// Project is the root of the resource hierarchy. It owns zero or more pay groups.
type Project struct {
	ID   int64  `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// HistoryState identifies the snapshot this project was read from.
	// Empty for the live project.
	HistoryState string `json:"history_state,omitempty" yaml:"history_state,omitempty"`

	PayGroups []PayGroup `json:"paygroups,omitempty" yaml:"paygroups,omitempty" table:"-"`
}

// PayGroup is owned by exactly one project and owns zero or more payments.
type PayGroup struct {
	ID       int64     `json:"id" yaml:"id"`
	Project  int64     `json:"project,omitempty" yaml:"project,omitempty"`
	Name     string    `json:"name" yaml:"name"`
	Payments []Payment `json:"payments,omitempty" yaml:"payments,omitempty" table:"-"`
}

// Payment is owned by exactly one pay group.
//
// Asset and Liability are the canonical persisted amounts. Paid and Owed are
// derived from them and are never sent to the server.
type Payment struct {
	ID         int64  `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Date       string `json:"date" yaml:"date"`
	Currency   string `json:"currency" yaml:"currency"`
	Asset      int64  `json:"asset" yaml:"asset" table:"wide"`
	Liability  int64  `json:"liability" yaml:"liability" table:"wide"`
	Attachment string `json:"attachment,omitempty" yaml:"attachment,omitempty" table:"wide"`

	Paid decimal.Decimal `json:"paid" yaml:"paid"`
	Owed decimal.Decimal `json:"owed" yaml:"owed"`
}

// Recompute derives Paid and Owed from Asset and Liability.
func (p *Payment) Recompute() {
	p.Paid = DecodeAmount(p.Asset)
	p.Owed = DecodeAmount(p.Liability)
}

// Recompute derives the decimal amounts of every payment in every pay group.
func (p *Project) Recompute() {
	for i := range p.PayGroups {
		for j := range p.PayGroups[i].Payments {
			p.PayGroups[i].Payments[j].Recompute()
		}
	}
}

// Group returns the pay group with the given id.
func (p *Project) Group(id int64) (*PayGroup, bool) {
	for i := range p.PayGroups {
		if p.PayGroups[i].ID == id {
			return &p.PayGroups[i], true
		}
	}
	return nil, false
}

// Totals returns the sum of Paid and Owed over all payments in the group.
func (g *PayGroup) Totals() (paid, owed decimal.Decimal) {
	paid, owed = decimal.Zero, decimal.Zero
	for _, pay := range g.Payments {
		paid = paid.Add(pay.Paid)
		owed = owed.Add(pay.Owed)
	}
	return paid, owed
}
