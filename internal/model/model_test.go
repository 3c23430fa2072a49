package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvent_IsClosed(t *testing.T) {
	tests := []struct {
		name      string
		capacity  int
		occupancy int
		closed    bool
	}{
		{"empty", 5, 0, false},
		{"one seat left", 5, 4, false},
		{"exactly full", 5, 5, true},
		{"overshot counter", 5, 6, true},
		{"capacity one", 1, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Event{Capacity: tt.capacity, Occupancy: tt.occupancy}
			assert.Equal(t, tt.closed, e.IsClosed())
		})
	}
}

func TestEventType_Rank(t *testing.T) {
	assert.Equal(t, 1, TypeHouseVisit.Rank())
	assert.Equal(t, 2, TypePublicEvidence.Rank())
	assert.Equal(t, 3, TypeVarious.Rank())
	assert.Equal(t, 4, EventType("unknown").Rank())

	assert.True(t, TypeHouseVisit.Valid())
	assert.False(t, EventType("").Valid())
}

func TestCountVehicleSupport(t *testing.T) {
	members := []TeamMember{
		{ID: "a", Name: "김철수", VehicleSupport: VehicleYes},
		{ID: "b", Name: "이영희", VehicleSupport: VehicleNo},
		{ID: "c", Name: "박민수", VehicleSupport: VehicleYes},
	}
	assert.Equal(t, 2, CountVehicleSupport(members))
	assert.Equal(t, 0, CountVehicleSupport(nil))
}

func TestOccupancyKey(t *testing.T) {
	assert.Equal(t, "ev1-2025-03-01", OccupancyKey("ev1", "2025-03-01"))
}
