package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lead-console/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func sqliteLead(id int64, name string, score float64, status model.Status) model.Lead {
	return model.Lead{
		ID: id, Name: name, Company: "TechCorp",
		Email: "lead@techcorp.com", Source: "Website",
		Score: score, Status: status, CreatedAt: time.Now().UTC(),
	}
}

func TestSQLite_LeadCRUD(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := st.CreateLead(ctx, sqliteLead(0, "Sarah Johnson", 85, model.StatusNew))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	got, err := st.GetLead(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sarah Johnson", got.Name)
	assert.Equal(t, model.StatusNew, got.Status)

	status := model.StatusQualified
	updated, err := st.UpdateLead(ctx, created.ID, Patch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, model.StatusQualified, updated.Status)
	assert.Equal(t, "Sarah Johnson", updated.Name) // untouched fields survive

	require.NoError(t, st.DeleteLead(ctx, created.ID))
	_, err = st.GetLead(ctx, created.ID)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLite_GetLead_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetLead(context.Background(), 12345)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLite_ListLeads_SearchAndSort(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for _, l := range []model.Lead{
		sqliteLead(1, "Sarah Johnson", 85, model.StatusNew),
		sqliteLead(2, "Michael Chen", 72, model.StatusContacted),
		sqliteLead(3, "Emily Rodriguez", 91, model.StatusQualified),
	} {
		_, err := st.CreateLead(ctx, l)
		require.NoError(t, err)
	}

	found, err := st.ListLeads(ctx, Filter{Search: "SARAH"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, int64(1), found[0].ID)

	qualified, err := st.ListLeads(ctx, Filter{Status: "Qualified"})
	require.NoError(t, err)
	require.Len(t, qualified, 1)
	assert.Equal(t, int64(3), qualified[0].ID)

	asc, err := st.ListLeads(ctx, Filter{SortBy: "score", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, asc, 3)
	assert.Equal(t, 72.0, asc[0].Score)
	assert.Equal(t, 91.0, asc[2].Score)
}

func TestSQLite_ImportUpserts(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.CreateLead(ctx, sqliteLead(100, "Original", 50, model.StatusNew))
	require.NoError(t, err)

	require.NoError(t, st.ImportLeads(ctx, []model.Lead{
		sqliteLead(100, "Updated", 60, model.StatusContacted),
		sqliteLead(101, "Fresh", 70, model.StatusNew),
	}))

	got, err := st.GetLead(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Name)

	all, err := st.ListLeads(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLite_ConvertLead(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	lead, err := st.CreateLead(ctx, sqliteLead(0, "Emily Rodriguez", 91, model.StatusQualified))
	require.NoError(t, err)

	opp, err := st.ConvertLead(ctx, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Emily Rodriguez - TechCorp", opp.Name)
	assert.Equal(t, model.StageDiscovery, opp.Stage)

	_, err = st.GetLead(ctx, lead.ID)
	assert.True(t, eris.Is(err, ErrNotFound))

	opps, err := st.ListOpportunities(ctx)
	require.NoError(t, err)
	require.Len(t, opps, 1)
}

func TestSQLite_ConvertLead_MissingLeavesNoTrace(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.ConvertLead(ctx, 999)
	assert.True(t, eris.Is(err, ErrNotFound))

	opps, err := st.ListOpportunities(ctx)
	require.NoError(t, err)
	assert.Empty(t, opps)
}

func TestSQLite_ReplaceLeads(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.CreateLead(ctx, sqliteLead(1, "Old", 10, model.StatusNew))
	require.NoError(t, err)

	require.NoError(t, st.ReplaceLeads(ctx, []model.Lead{
		sqliteLead(2, "New A", 20, model.StatusNew),
		sqliteLead(3, "New B", 30, model.StatusNew),
	}))

	all, err := st.ListLeads(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	_, err = st.GetLead(ctx, 1)
	assert.True(t, eris.Is(err, ErrNotFound))
}

func TestSQLite_OpportunityCRUD(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	created, err := st.CreateOpportunity(ctx, model.Opportunity{
		Name: "Maria Garcia - GlobalCorp", AccountName: "GlobalCorp",
		Stage: "Negotiation", Amount: 45000,
	})
	require.NoError(t, err)

	amount := 50000.0
	updated, err := st.UpdateOpportunity(ctx, created.ID, OpportunityPatch{Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, 50000.0, updated.Amount)
	assert.Equal(t, "Negotiation", updated.Stage)

	require.NoError(t, st.DeleteOpportunity(ctx, created.ID))
	assert.True(t, eris.Is(st.DeleteOpportunity(ctx, created.ID), ErrNotFound))
}

func TestSQLite_VersionBumps(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	assert.Zero(t, st.Version())
	_, err := st.CreateLead(ctx, sqliteLead(0, "V", 10, model.StatusNew))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), st.Version())
}
