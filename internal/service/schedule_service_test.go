package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepstack/prepstack-api/internal/models"
	"github.com/prepstack/prepstack-api/internal/utils"
)

// fakeScheduleStore implements ScheduleStore in memory.
type fakeScheduleStore struct {
	windows map[int]*models.ScheduledTest
	nextID  int
}

func newFakeScheduleStore() *fakeScheduleStore {
	return &fakeScheduleStore{windows: map[int]*models.ScheduledTest{}, nextID: 1}
}

func (f *fakeScheduleStore) ListByCode(ctx context.Context, code string, publishedOnly bool) ([]models.ScheduledTest, error) {
	out := []models.ScheduledTest{}
	for _, st := range f.windows {
		if st.ProductCode != code {
			continue
		}
		if publishedOnly && !st.IsPublished {
			continue
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (f *fakeScheduleStore) GetByID(ctx context.Context, id int) (*models.ScheduledTest, error) {
	st, ok := f.windows[id]
	if !ok {
		return nil, utils.ErrScheduledTestNotFound
	}
	cp := *st
	return &cp, nil
}

func (f *fakeScheduleStore) Create(ctx context.Context, st *models.ScheduledTest) error {
	st.ID = f.nextID
	f.nextID++
	cp := *st
	f.windows[st.ID] = &cp
	return nil
}

func (f *fakeScheduleStore) Update(ctx context.Context, st *models.ScheduledTest) error {
	if _, ok := f.windows[st.ID]; !ok {
		return utils.ErrScheduledTestNotFound
	}
	cp := *st
	f.windows[st.ID] = &cp
	return nil
}

func (f *fakeScheduleStore) Delete(ctx context.Context, id int) error {
	if _, ok := f.windows[id]; !ok {
		return utils.ErrScheduledTestNotFound
	}
	delete(f.windows, id)
	return nil
}

func newScheduleTestService() (*ScheduleService, *fakeScheduleStore) {
	catalog, _ := newTestService(iat())
	store := newFakeScheduleStore()
	return NewScheduleService(store, catalog), store
}

func TestScheduleCreate(t *testing.T) {
	svc, store := newScheduleTestService()
	ctx := context.Background()

	starts := time.Now().UTC().Add(48 * time.Hour)
	st, err := svc.Create(ctx, "iat", &CreateScheduledTestRequest{
		Name:          "Mock Test 1",
		StartsAt:      starts,
		DurationMins:  90,
		QuestionCount: 60,
		IsPublished:   true,
	})
	require.NoError(t, err)
	assert.NotZero(t, st.ID)
	assert.Equal(t, "iat", st.ProductCode)
	assert.Equal(t, 90, st.DurationMins)
	require.Len(t, store.windows, 1)
}

func TestScheduleCreate_Rejections(t *testing.T) {
	svc, store := newScheduleTestService()
	ctx := context.Background()

	_, err := svc.Create(ctx, "unknown", &CreateScheduledTestRequest{
		Name: "Mock Test 1", StartsAt: time.Now(), DurationMins: 90,
	})
	assert.ErrorIs(t, err, utils.ErrTestSeriesNotFound)

	_, err = svc.Create(ctx, "iat", &CreateScheduledTestRequest{
		Name: "Mock Test 1", StartsAt: time.Now(), DurationMins: 0,
	})
	assert.EqualError(t, err, "duration must be at least 1 minute")

	assert.Empty(t, store.windows)
}

func TestScheduleListForSeries_PublishedOnly(t *testing.T) {
	svc, _ := newScheduleTestService()
	ctx := context.Background()

	starts := time.Now().UTC().Add(24 * time.Hour)
	_, err := svc.Create(ctx, "iat", &CreateScheduledTestRequest{
		Name: "Mock Test 1", StartsAt: starts, DurationMins: 90, IsPublished: true,
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "iat", &CreateScheduledTestRequest{
		Name: "Mock Test 2 (draft)", StartsAt: starts.Add(time.Hour), DurationMins: 90,
	})
	require.NoError(t, err)

	public, err := svc.ListForSeries(ctx, "iat", true)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Mock Test 1", public[0].Name)

	all, err := svc.ListForSeries(ctx, "iat", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.ListForSeries(ctx, "unknown", false)
	assert.ErrorIs(t, err, utils.ErrTestSeriesNotFound)
}

func TestScheduleUpdate_PartialMerge(t *testing.T) {
	svc, _ := newScheduleTestService()
	ctx := context.Background()

	starts := time.Now().UTC().Add(24 * time.Hour)
	st, err := svc.Create(ctx, "iat", &CreateScheduledTestRequest{
		Name: "Mock Test 1", StartsAt: starts, DurationMins: 90, QuestionCount: 60,
	})
	require.NoError(t, err)

	published := true
	updated, err := svc.Update(ctx, st.ID, &UpdateScheduledTestRequest{IsPublished: &published})
	require.NoError(t, err)

	// Only the published flag changed.
	assert.True(t, updated.IsPublished)
	assert.Equal(t, "Mock Test 1", updated.Name)
	assert.Equal(t, 90, updated.DurationMins)
	assert.Equal(t, 60, updated.QuestionCount)

	badDuration := 0
	_, err = svc.Update(ctx, st.ID, &UpdateScheduledTestRequest{DurationMins: &badDuration})
	assert.EqualError(t, err, "duration must be at least 1 minute")

	_, err = svc.Update(ctx, 999, &UpdateScheduledTestRequest{IsPublished: &published})
	assert.ErrorIs(t, err, utils.ErrScheduledTestNotFound)
}

func TestScheduleDelete(t *testing.T) {
	svc, store := newScheduleTestService()
	ctx := context.Background()

	st, err := svc.Create(ctx, "iat", &CreateScheduledTestRequest{
		Name: "Mock Test 1", StartsAt: time.Now().UTC(), DurationMins: 90,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, st.ID))
	assert.Empty(t, store.windows)
	assert.ErrorIs(t, svc.Delete(ctx, st.ID), utils.ErrScheduledTestNotFound)
}
