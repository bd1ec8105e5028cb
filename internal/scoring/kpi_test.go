package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/lead-console/internal/model"
)

func TestKPIEmpty(t *testing.T) {
	t.Parallel()

	got := KPI(nil, nil)
	assert.Zero(t, got.LeadsCount)
	assert.Zero(t, got.OpportunitiesCount)
	assert.Zero(t, got.AverageScore)
	assert.Zero(t, got.ConversionRate)
}

func TestKPI(t *testing.T) {
	t.Parallel()

	leads := []model.Lead{
		{Score: 85, Status: model.StatusNew},
		{Score: 72, Status: model.StatusContacted},
		{Score: 91, Status: model.StatusQualified},
		{Score: 68, Status: model.StatusNew},
		{Score: 79, Status: model.StatusContacted},
	}
	opps := []model.Opportunity{
		{Amount: 25000}, {Amount: 45000},
	}

	got := KPI(opps, leads)
	assert.Equal(t, 5, got.LeadsCount)
	assert.Equal(t, 2, got.OpportunitiesCount)
	assert.Equal(t, 79, got.AverageScore)         // mean 79.0
	assert.Equal(t, 20.0, got.ConversionRate)     // 1 of 5 qualified
}

func TestKPIConversionRateRounding(t *testing.T) {
	t.Parallel()

	// 1 qualified of 3 leads is 33.333...%, rounded to one decimal.
	leads := []model.Lead{
		{Score: 50, Status: model.StatusQualified},
		{Score: 50, Status: model.StatusNew},
		{Score: 50, Status: model.StatusNew},
	}
	got := KPI(nil, leads)
	assert.Equal(t, 33.3, got.ConversionRate)
}

func TestOpportunities(t *testing.T) {
	t.Parallel()

	opps := []model.Opportunity{
		{Amount: 25000},
		{Amount: 45000},
	}

	got := Opportunities(opps)
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 70000.0, got.TotalValue)
	assert.Equal(t, 35000.0, got.AverageValue)

	empty := Opportunities(nil)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.AverageValue)
}
