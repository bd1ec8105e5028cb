// Package store owns the authoritative lead and opportunity collections.
// Three backends implement the same interface: a JSON-file cache (the
// standalone console), an embedded SQLite database and a Postgres pool for
// the server variant.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-console/internal/model"
)

// ErrNotFound is returned when an operation targets a missing id.
var ErrNotFound = eris.New("store: not found")

// Filter narrows and orders a lead listing. Search matches name, company
// or email case-insensitively; Status of "" or "all" matches everything.
type Filter struct {
	Search    string `json:"search,omitempty"`
	Status    string `json:"status,omitempty"`
	SortBy    string `json:"sortBy,omitempty"`    // "score" or "createdAt" (default)
	SortOrder string `json:"sortOrder,omitempty"` // "asc" or "desc" (default)
}

// Patch carries partial lead updates; nil fields are left untouched.
type Patch struct {
	Name    *string       `json:"name,omitempty"`
	Company *string       `json:"company,omitempty"`
	Email   *string       `json:"email,omitempty"`
	Source  *string       `json:"source,omitempty"`
	Score   *float64      `json:"score,omitempty"`
	Status  *model.Status `json:"status,omitempty"`
}

// OpportunityPatch carries partial opportunity updates.
type OpportunityPatch struct {
	Name        *string  `json:"name,omitempty"`
	AccountName *string  `json:"accountName,omitempty"`
	Stage       *string  `json:"stage,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
}

// Store is the persistence contract shared by all backends. Mutations bump
// the collection version; ConvertLead is atomic from the caller's view.
type Store interface {
	// Leads
	ListLeads(ctx context.Context, filter Filter) ([]model.Lead, error)
	GetLead(ctx context.Context, id int64) (*model.Lead, error)
	CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error)
	UpdateLead(ctx context.Context, id int64, patch Patch) (*model.Lead, error)
	DeleteLead(ctx context.Context, id int64) error
	// ImportLeads merges by id: records whose id matches an existing lead
	// update it in place, everything else is appended with a fresh id.
	ImportLeads(ctx context.Context, leads []model.Lead) error
	// ReplaceLeads swaps the whole collection wholesale.
	ReplaceLeads(ctx context.Context, leads []model.Lead) error
	ClearLeads(ctx context.Context) error

	// ConvertLead deletes the lead and creates the derived opportunity.
	ConvertLead(ctx context.Context, id int64) (*model.Opportunity, error)

	// Opportunities
	ListOpportunities(ctx context.Context) ([]model.Opportunity, error)
	CreateOpportunity(ctx context.Context, opp model.Opportunity) (*model.Opportunity, error)
	UpdateOpportunity(ctx context.Context, id int64, patch OpportunityPatch) (*model.Opportunity, error)
	DeleteOpportunity(ctx context.Context, id int64) error
	ClearOpportunities(ctx context.Context) error

	// Version is a monotonic stamp bumped on every mutation, letting
	// clients discard responses that raced an earlier write.
	Version() uint64

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

func applyPatch(lead *model.Lead, patch Patch) {
	if patch.Name != nil {
		lead.Name = *patch.Name
	}
	if patch.Company != nil {
		lead.Company = *patch.Company
	}
	if patch.Email != nil {
		lead.Email = *patch.Email
	}
	if patch.Source != nil {
		lead.Source = *patch.Source
	}
	if patch.Score != nil {
		lead.Score = model.ClampScore(*patch.Score)
	}
	if patch.Status != nil {
		lead.Status = *patch.Status
	}
}

func applyOpportunityPatch(opp *model.Opportunity, patch OpportunityPatch) {
	if patch.Name != nil {
		opp.Name = *patch.Name
	}
	if patch.AccountName != nil {
		opp.AccountName = *patch.AccountName
	}
	if patch.Stage != nil {
		opp.Stage = *patch.Stage
	}
	if patch.Amount != nil {
		opp.Amount = *patch.Amount
	}
}
