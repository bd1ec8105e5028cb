package model

import (
	"fmt"
	"time"
)

// StageDiscovery is the stage every converted opportunity starts in.
const StageDiscovery = "Discovery"

// Opportunity is a sales-pipeline record created by converting a lead.
type Opportunity struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	AccountName string    `json:"accountName"`
	Stage       string    `json:"stage"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
}

// OpportunityFromLead builds the opportunity a lead converts into. The
// caller is responsible for deleting the source lead.
func OpportunityFromLead(lead Lead) Opportunity {
	return Opportunity{
		ID:          NewID(),
		Name:        fmt.Sprintf("%s - %s", lead.Name, lead.Company),
		AccountName: lead.Company,
		Stage:       StageDiscovery,
		Amount:      0,
		CreatedAt:   time.Now().UTC(),
	}
}
