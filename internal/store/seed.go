package store

import (
	_ "embed"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lead-console/internal/model"
)

//go:embed seed_data.json
var seedJSON []byte

type seedData struct {
	Leads         []model.Lead        `json:"leads"`
	Opportunities []model.Opportunity `json:"opportunities"`
}

// SeedData returns the bundled starter dataset with fresh ids and
// timestamps assigned.
func SeedData() ([]model.Lead, []model.Opportunity, error) {
	var data seedData
	if err := json.Unmarshal(seedJSON, &data); err != nil {
		return nil, nil, eris.Wrap(err, "store: parse seed data")
	}

	now := time.Now().UTC()
	used := make(map[int64]bool)
	nextID := func() int64 {
		id := model.NewID()
		for used[id] {
			id++
		}
		used[id] = true
		return id
	}
	for i := range data.Leads {
		data.Leads[i].ID = nextID()
		data.Leads[i].CreatedAt = now
	}
	for i := range data.Opportunities {
		data.Opportunities[i].ID = nextID()
		data.Opportunities[i].CreatedAt = now
	}
	return data.Leads, data.Opportunities, nil
}
