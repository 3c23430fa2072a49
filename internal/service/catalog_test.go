package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/volunteerhub/volunteer-signup/internal/dateutil"
	"github.com/volunteerhub/volunteer-signup/internal/model"
	"github.com/volunteerhub/volunteer-signup/internal/service/ports/mocks"
	"github.com/volunteerhub/volunteer-signup/internal/watch"
)

func mustDate(t *testing.T, s string) dateutil.CalendarDate {
	t.Helper()
	d, err := dateutil.Normalize(s)
	require.NoError(t, err)
	return d
}

func TestCatalogService_List_TypeRankOnSharedDate(t *testing.T) {
	events := &mocks.EventRepo{}
	svc := NewCatalogService(events, &mocks.Notifier{})

	d1 := mustDate(t, "2025-03-01")
	d2 := mustDate(t, "2025-03-08")
	// Storage order: date ascending only.
	events.On("List", mock.Anything).Return([]model.Event{
		{ID: "a", Date: d1, Type: model.TypeVarious},
		{ID: "b", Date: d1, Type: model.TypeHouseVisit},
		{ID: "c", Date: d1, Type: model.TypePublicEvidence},
		{ID: "d", Date: d2, Type: model.TypeVarious},
		{ID: "e", Date: d2, Type: model.TypeHouseVisit},
	}, nil)

	got, err := svc.List(context.Background())

	require.NoError(t, err)
	ids := make([]string, len(got))
	for i, e := range got {
		ids[i] = e.ID
	}
	// houseVisit before publicEvidence before various, per date.
	assert.Equal(t, []string{"b", "c", "a", "e", "d"}, ids)
}

func TestCatalogService_List_SortIsStable(t *testing.T) {
	events := &mocks.EventRepo{}
	svc := NewCatalogService(events, &mocks.Notifier{})

	d := mustDate(t, "2025-03-01")
	events.On("List", mock.Anything).Return([]model.Event{
		{ID: "first", Date: d, Type: model.TypeHouseVisit},
		{ID: "second", Date: d, Type: model.TypeHouseVisit},
	}, nil)

	got, err := svc.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "first", got[0].ID)
	assert.Equal(t, "second", got[1].ID)
}

func TestCatalogService_Create_Success(t *testing.T) {
	events := &mocks.EventRepo{}
	notifier := &mocks.Notifier{}
	svc := NewCatalogService(events, notifier)

	events.On("Create", mock.Anything, mock.MatchedBy(func(e *model.Event) bool {
		return e.Title == "호별 방문" && e.Capacity == 10 &&
			e.Type == model.TypeHouseVisit && e.Repeat == model.RepeatNone &&
			e.Date.Key() == "2025-03-01"
	})).Return(nil)

	event, err := svc.Create(context.Background(), model.CreateEventRequest{
		Title:    "  호별 방문  ",
		Date:     "2025-03-01T09:00:00Z",
		Type:     model.TypeHouseVisit,
		Capacity: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, event.Occupancy)
	assert.Contains(t, notifier.Topics(), watch.TopicEvents)
	events.AssertExpectations(t)
}

func TestCatalogService_Create_TimestampDocumentDate(t *testing.T) {
	events := &mocks.EventRepo{}
	svc := NewCatalogService(events, &mocks.Notifier{})

	events.On("Create", mock.Anything, mock.Anything).Return(nil)

	seconds := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC).Unix()
	event, err := svc.Create(context.Background(), model.CreateEventRequest{
		Title:    "전시대 봉사",
		Date:     map[string]any{"seconds": float64(seconds), "nanos": float64(0)},
		Type:     model.TypePublicEvidence,
		Capacity: 4,
	})

	require.NoError(t, err)
	assert.Equal(t, "2025-03-01", event.Date.Key())
}

func TestCatalogService_Create_InvalidDate(t *testing.T) {
	svc := NewCatalogService(&mocks.EventRepo{}, &mocks.Notifier{})

	_, err := svc.Create(context.Background(), model.CreateEventRequest{
		Title:    "봉사",
		Date:     "not-a-date",
		Type:     model.TypeVarious,
		Capacity: 5,
	})

	assert.ErrorIs(t, err, dateutil.ErrInvalidDate)
}

func TestCatalogService_Create_Validation(t *testing.T) {
	svc := NewCatalogService(&mocks.EventRepo{}, &mocks.Notifier{})

	tests := []struct {
		name string
		req  model.CreateEventRequest
	}{
		{"empty title", model.CreateEventRequest{Date: "2025-03-01", Type: model.TypeVarious, Capacity: 5}},
		{"zero capacity", model.CreateEventRequest{Title: "봉사", Date: "2025-03-01", Type: model.TypeVarious}},
		{"negative capacity", model.CreateEventRequest{Title: "봉사", Date: "2025-03-01", Type: model.TypeVarious, Capacity: -1}},
		{"unknown type", model.CreateEventRequest{Title: "봉사", Date: "2025-03-01", Type: "picnic", Capacity: 5}},
		{"unknown repeat", model.CreateEventRequest{Title: "봉사", Date: "2025-03-01", Type: model.TypeVarious, Capacity: 5, Repeat: "monthly"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestCatalogService_Update_KeepsOccupancyUntouched(t *testing.T) {
	events := &mocks.EventRepo{}
	svc := NewCatalogService(events, &mocks.Notifier{})

	events.On("Update", mock.Anything, mock.MatchedBy(func(e *model.Event) bool {
		// The update payload never carries an occupancy value.
		return e.ID == "ev1" && e.Occupancy == 0
	})).Return(nil)
	events.On("GetByID", mock.Anything, "ev1").Return(&model.Event{ID: "ev1", Occupancy: 3}, nil)

	got, err := svc.Update(context.Background(), "ev1", model.CreateEventRequest{
		Title:    "수정된 봉사",
		Date:     "2025-03-08",
		Type:     model.TypeVarious,
		Capacity: 8,
		Repeat:   model.RepeatWeekly,
	})

	require.NoError(t, err)
	assert.Equal(t, 3, got.Occupancy)
	events.AssertExpectations(t)
}

func TestCatalogService_Delete_NotFound(t *testing.T) {
	events := &mocks.EventRepo{}
	svc := NewCatalogService(events, &mocks.Notifier{})

	events.On("Delete", mock.Anything, "missing").Return(model.ErrNotFound)

	err := svc.Delete(context.Background(), "missing")

	assert.ErrorIs(t, err, model.ErrNotFound)
}
