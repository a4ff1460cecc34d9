package collect

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrodeal/docgen-cli/internal/model"
	"github.com/petrodeal/docgen-cli/internal/store"
)

// stubStore serves entities from maps; all other Store methods are unused by
// the collector.
type stubStore struct {
	store.Store
	vessels   map[int64]*model.Vessel
	ports     map[int64]*model.Port
	companies map[int64]*model.Company
}

func (s *stubStore) GetVessel(ctx context.Context, id int64) (*model.Vessel, error) {
	if v, ok := s.vessels[id]; ok {
		return v, nil
	}
	return nil, model.ErrEntityNotFound
}

func (s *stubStore) GetPort(ctx context.Context, id int64) (*model.Port, error) {
	if p, ok := s.ports[id]; ok {
		return p, nil
	}
	return nil, model.ErrEntityNotFound
}

func (s *stubStore) GetCompany(ctx context.Context, id int64) (*model.Company, error) {
	if c, ok := s.companies[id]; ok {
		return c, nil
	}
	return nil, model.ErrEntityNotFound
}

func (s *stubStore) GetRefinery(ctx context.Context, id int64) (*model.Refinery, error) {
	return nil, model.ErrEntityNotFound
}

func testStore() *stubStore {
	return &stubStore{
		vessels: map[int64]*model.Vessel{
			7: {ID: 7, Name: "MT Atlas", IMO: "9321483", Flag: "Malta", Deadweight: 115000},
		},
		ports: map[int64]*model.Port{
			3: {ID: 3, Name: "Port of Rotterdam", Country: "Netherlands"},
		},
		companies: map[int64]*model.Company{
			11: {ID: 11, Name: "Petra Trading DMCC", Country: "UAE", Email: "ops@petra.example"},
			12: {ID: 12, Name: "Nordsee Oil GmbH", Country: "Germany"},
		},
	}
}

func TestCollect_NamespacesByRole(t *testing.T) {
	c := New(testStore())
	refs := []model.EntityRef{
		{Kind: model.KindVessel, ID: 7},
		{Kind: model.KindCompany, Role: model.RoleBuyer, ID: 11},
		{Kind: model.KindCompany, Role: model.RoleSeller, ID: 12},
	}

	bag, warnings, err := c.Collect(context.Background(), refs, time.Now())
	require.NoError(t, err)
	assert.Empty(t, warnings)

	name, _ := bag.Get("vessel_name")
	assert.Equal(t, "MT Atlas", name)
	buyer, _ := bag.Get("buyer_company")
	assert.Equal(t, "Petra Trading DMCC", buyer)
	seller, _ := bag.Get("seller_company")
	assert.Equal(t, "Nordsee Oil GmbH", seller)
	imo, _ := bag.Get("imo_number")
	assert.Equal(t, "9321483", imo)

	// Empty columns never occupy a field.
	_, ok := bag.Get("vessel_destination")
	assert.False(t, ok)
}

func TestCollect_MissingEntityDegrades(t *testing.T) {
	c := New(testStore())
	refs := []model.EntityRef{
		{Kind: model.KindVessel, ID: 404},
		{Kind: model.KindPort, ID: 3},
	}

	bag, warnings, err := c.Collect(context.Background(), refs, time.Now())
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "vessel 404 not found")

	port, _ := bag.Get("port_name")
	assert.Equal(t, "Port of Rotterdam", port)
	_, ok := bag.Get("vessel_name")
	assert.False(t, ok)
}

// faultyStore fails port fetches with a transport error rather than a
// not-found sentinel.
type faultyStore struct {
	*stubStore
}

func (s *faultyStore) GetPort(ctx context.Context, id int64) (*model.Port, error) {
	return nil, errors.New("connection reset by peer")
}

func TestCollect_FetchErrorDegrades(t *testing.T) {
	c := New(&faultyStore{stubStore: testStore()})
	refs := []model.EntityRef{
		{Kind: model.KindVessel, ID: 7},
		{Kind: model.KindPort, ID: 3},
	}

	bag, warnings, err := c.Collect(context.Background(), refs, time.Now())
	require.NoError(t, err)
	require.NotNil(t, bag)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "port 3 fetch failed")
	assert.Contains(t, warnings[0], "connection reset by peer")

	name, _ := bag.Get("vessel_name")
	assert.Equal(t, "MT Atlas", name)
	_, ok := bag.Get("port_name")
	assert.False(t, ok)
}

func TestCollect_DeterministicAcrossRuns(t *testing.T) {
	c := New(testStore())
	refs := []model.EntityRef{
		{Kind: model.KindVessel, ID: 7},
		{Kind: model.KindPort, ID: 3},
		{Kind: model.KindCompany, Role: model.RoleBuyer, ID: 11},
	}
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	first, _, err := c.Collect(context.Background(), refs, now)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, _, err := c.Collect(context.Background(), refs, now)
		require.NoError(t, err)
		assert.Equal(t, first.Fields(), again.Fields())
	}
}

func TestCollect_ContextFields(t *testing.T) {
	c := New(testStore())
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	bag, _, err := c.Collect(context.Background(), nil, now)
	require.NoError(t, err)

	date, _ := bag.Get("current_date")
	assert.Equal(t, "2026-03-14", date)
	year, _ := bag.Get("current_year")
	assert.Equal(t, "2026", year)
}
