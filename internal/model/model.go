// Package model defines the core domain types for the volunteer signup system.
package model

import (
	"errors"
	"time"

	"github.com/volunteerhub/volunteer-signup/internal/dateutil"
)

// Sentinel errors shared across layers. Handlers map them to HTTP statuses.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrEventClosed = errors.New("event is full")
	ErrAuthFailure = errors.New("authentication failed")
)

// EventType classifies an event; it also partitions teams and their
// candidate volunteer pools.
type EventType string

const (
	TypeHouseVisit     EventType = "houseVisit"
	TypePublicEvidence EventType = "publicEvidence"
	TypeVarious        EventType = "various"
)

// Rank is the fixed sort rank applied after the chronological order.
func (t EventType) Rank() int {
	switch t {
	case TypeHouseVisit:
		return 1
	case TypePublicEvidence:
		return 2
	case TypeVarious:
		return 3
	default:
		return 4
	}
}

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool { return t.Rank() < 4 }

// RepeatRule describes how an event recurs.
type RepeatRule string

const (
	RepeatNone   RepeatRule = "none"
	RepeatWeekly RepeatRule = "weekly"
)

// Valid reports whether r is a known repeat rule.
func (r RepeatRule) Valid() bool { return r == RepeatNone || r == RepeatWeekly }

// VehicleSupport records whether a volunteer can bring a vehicle.
type VehicleSupport string

const (
	VehicleYes VehicleSupport = "yes"
	VehicleNo  VehicleSupport = "no"
)

// Valid reports whether v is a known vehicle support value.
func (v VehicleSupport) Valid() bool { return v == VehicleYes || v == VehicleNo }

// Event represents a scheduled volunteer opportunity with a capacity.
// Occupancy is maintained exclusively inside capacity-guarded transactions;
// the background auditor reconciles it against the signup recount.
type Event struct {
	ID        string                `json:"id"`
	Title     string                `json:"title"`
	Date      dateutil.CalendarDate `json:"date"`
	Type      EventType             `json:"type"`
	Capacity  int                   `json:"capacity"`
	Occupancy int                   `json:"occupancy"`
	Repeat    RepeatRule            `json:"repeat"`
	CreatedAt time.Time             `json:"created_at"`
}

// IsClosed reports whether the event has no remaining capacity.
func (e *Event) IsClosed() bool { return e.Occupancy >= e.Capacity }

// Signup is a volunteer's request to attend one event.
// Immutable after creation; removal is an admin-only operation.
type Signup struct {
	ID             string                `json:"id"`
	EventID        string                `json:"event_id"`
	VolunteerName  string                `json:"volunteer_name"`
	VehicleSupport VehicleSupport        `json:"vehicle_support"`
	VolunteerDate  dateutil.CalendarDate `json:"volunteer_date"`
	SubmittedAt    time.Time             `json:"submitted_at"`
}

// OccupancyKey identifies one (event, calendar day) bucket.
func OccupancyKey(eventID, dateKey string) string { return eventID + "-" + dateKey }

// OccupancyCount is one row of the full-scan signup aggregation.
type OccupancyCount struct {
	EventID string                `json:"event_id"`
	Date    dateutil.CalendarDate `json:"date"`
	Count   int                   `json:"count"`
}

// OccupancyDrift reports a stored counter that disagreed with the recount.
type OccupancyDrift struct {
	EventID string `json:"event_id"`
	Stored  int    `json:"stored"`
	Counted int    `json:"counted"`
}

// SignupDetail is the my-signups view: the signup with its source event
// (nil when the event was deleted) and the current size of its
// (event, date) bucket. Area is static text until map integration lands.
type SignupDetail struct {
	Signup   Signup `json:"signup"`
	Event    *Event `json:"event"`
	TeamSize int    `json:"team_size"`
	Area     string `json:"area"`
}

// Inquiry is a user question, answered at most once by an administrator.
// Re-answering overwrites the previous answer.
type Inquiry struct {
	ID          string    `json:"id"`
	UserName    string    `json:"user_name"`
	Question    string    `json:"question"`
	SubmittedAt time.Time `json:"submitted_at"`
	Answer      *string   `json:"answer,omitempty"`
	AnsweredBy  *string   `json:"answered_by,omitempty"`
}

// TeamMember is a copy of signup data frozen at assignment time.
// Edits or removal of the source signup do not propagate.
type TeamMember struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	VehicleSupport VehicleSupport `json:"vehicle_support"`
}

// Team is an administrator-curated grouping of accepted volunteers.
type Team struct {
	ID                  string       `json:"id"`
	Name                string       `json:"name"`
	Area                string       `json:"area"`
	Type                EventType    `json:"type"`
	Members             []TeamMember `json:"members"`
	VehicleSupportCount int          `json:"vehicle_support_count"`
	CreatedAt           time.Time    `json:"created_at"`
}

// CountVehicleSupport returns the number of members with vehicle support.
// Persisted team counts must equal this after every membership change.
func CountVehicleSupport(members []TeamMember) int {
	n := 0
	for _, m := range members {
		if m.VehicleSupport == VehicleYes {
			n++
		}
	}
	return n
}

// CreateEventRequest is the payload for creating or updating an event.
// Date is left untyped so all three normalizable shapes are accepted.
type CreateEventRequest struct {
	Title    string     `json:"title"`
	Date     any        `json:"date"`
	Type     EventType  `json:"type"`
	Capacity int        `json:"capacity"`
	Repeat   RepeatRule `json:"repeat"`
}

// SubmitSignupRequest is the payload for a volunteer signup.
type SubmitSignupRequest struct {
	VolunteerName  string         `json:"volunteer_name"`
	VehicleSupport VehicleSupport `json:"vehicle_support"`
}

// SubmitInquiryRequest is the payload for a new inquiry.
type SubmitInquiryRequest struct {
	UserName string `json:"user_name"`
	Question string `json:"question"`
}

// AnswerInquiryRequest is the payload for answering an inquiry.
type AnswerInquiryRequest struct {
	Answer string `json:"answer"`
}

// CreateTeamRequest is the payload for creating a team.
type CreateTeamRequest struct {
	Name    string       `json:"name"`
	Area    string       `json:"area"`
	Type    EventType    `json:"type"`
	Members []TeamMember `json:"members"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
