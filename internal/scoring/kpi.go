package scoring

import (
	"math"

	"github.com/sells-group/lead-console/internal/model"
)

// KPIData summarizes the lead and opportunity collections.
//
// ConversionRate is the qualified-lead ratio: the share of current leads
// with Qualified status, rounded to one decimal.
type KPIData struct {
	OpportunitiesCount int     `json:"opportunitiesCount"`
	LeadsCount         int     `json:"leadsCount"`
	AverageScore       int     `json:"averageScore"`
	ConversionRate     float64 `json:"conversionRate"`
}

// KPI aggregates the two collections. All ratios are zero when the lead
// collection is empty.
func KPI(opportunities []model.Opportunity, leads []model.Lead) KPIData {
	data := KPIData{
		OpportunitiesCount: len(opportunities),
		LeadsCount:         len(leads),
	}
	if len(leads) == 0 {
		return data
	}

	var total float64
	qualified := 0
	for _, lead := range leads {
		total += lead.Score
		if lead.Status == model.StatusQualified {
			qualified++
		}
	}
	data.AverageScore = int(math.Round(total / float64(len(leads))))
	data.ConversionRate = math.Round(100*float64(qualified)/float64(len(leads))*10) / 10
	return data
}

// OpportunityStats holds basic value aggregates over opportunities.
type OpportunityStats struct {
	Total        int     `json:"total"`
	TotalValue   float64 `json:"totalValue"`
	AverageValue float64 `json:"averageValue"`
}

// Opportunities computes count and amount aggregates.
func Opportunities(opps []model.Opportunity) OpportunityStats {
	stats := OpportunityStats{Total: len(opps)}
	for _, o := range opps {
		stats.TotalValue += o.Amount
	}
	if stats.Total > 0 {
		stats.AverageValue = stats.TotalValue / float64(stats.Total)
	}
	return stats
}
