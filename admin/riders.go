package admin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/query"
)

// Rider statuses.
const (
	RiderActive    = "active"
	RiderInactive  = "inactive"
	RiderSuspended = "suspended"
)

// Rider is a delivery rider attached to a hub.
type Rider struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	HubID       string    `json:"hubId"`
	Status      string    `json:"status"`
	VehicleType string    `json:"vehicleType,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
	Deliveries  int       `json:"deliveries"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RiderStats are the rider counters.
type RiderStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Inactive  int `json:"inactive"`
	Suspended int `json:"suspended"`
}

// CreateRiderInput is the body of a rider registration.
type CreateRiderInput struct {
	Name        string `json:"name" validate:"required,min=3"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"required,e164"`
	HubID       string `json:"hubId" validate:"required"`
	VehicleType string `json:"vehicleType,omitempty" validate:"omitempty,oneof=bike car van"`
}

// UpdateRiderInput changes the set fields of a rider.
type UpdateRiderInput struct {
	ID          string `json:"-" validate:"required"`
	Name        string `json:"name,omitempty" validate:"omitempty,min=3"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       string `json:"phone,omitempty" validate:"omitempty,e164"`
	HubID       string `json:"hubId,omitempty"`
	VehicleType string `json:"vehicleType,omitempty" validate:"omitempty,oneof=bike car van"`
}

// RiderStatusInput moves a rider to another status.
type RiderStatusInput struct {
	ID     string `json:"-" validate:"required"`
	Status string `json:"status" validate:"required,oneof=active inactive suspended"`
	Reason string `json:"reason,omitempty" validate:"max=500"`
}

// RiderService is the riders domain.
type RiderService struct {
	Resource[Rider, RiderStats]
}

func newRiderService(c *api.Client) RiderService {
	return RiderService{newResource[Rider, RiderStats](c, DomainRiders, "/riders")}
}

// A rider write also changes the rider counts shown in hub rows, hub
// details and hub stats.
func (s RiderService) invalidated() []query.Key {
	return []query.Key{s.keys.Lists(), s.keys.Stats(), KeysFor(DomainHubs).All()}
}

// Create registers a rider.
func (s RiderService) Create() query.Mutation[CreateRiderInput, Rider] {
	return query.Mutation[CreateRiderInput, Rider]{
		Domain:      DomainRiders,
		Name:        "create",
		Call:        createCall[CreateRiderInput, Rider](s.api, s.path),
		Invalidates: s.invalidated(),
		InvalidatesFor: func(_ CreateRiderInput, out Rider) []query.Key {
			if out.ID == "" {
				return nil
			}
			return []query.Key{s.keys.Detail(out.ID)}
		},
		Success:  "Rider created successfully",
		Failure:  "Failed to create rider",
		Validate: true,
	}
}

// Update changes a rider.
func (s RiderService) Update() query.Mutation[UpdateRiderInput, Rider] {
	return query.Mutation[UpdateRiderInput, Rider]{
		Domain: DomainRiders,
		Name:   "update",
		Call: sendCall[UpdateRiderInput, Rider](s.api, http.MethodPut, func(in UpdateRiderInput) string {
			return s.itemPath(in.ID)
		}),
		Invalidates: s.invalidated(),
		InvalidatesFor: func(in UpdateRiderInput, _ Rider) []query.Key {
			return []query.Key{s.keys.Detail(in.ID)}
		},
		Success:  "Rider updated successfully",
		Failure:  "Failed to update rider",
		Validate: true,
	}
}

// SetStatus activates, deactivates or suspends a rider.
func (s RiderService) SetStatus() query.Mutation[RiderStatusInput, Rider] {
	return query.Mutation[RiderStatusInput, Rider]{
		Domain: DomainRiders,
		Name:   "set_status",
		Call: sendCall[RiderStatusInput, Rider](s.api, http.MethodPatch, func(in RiderStatusInput) string {
			return s.itemPath(in.ID, "status")
		}),
		Invalidates: s.invalidated(),
		InvalidatesFor: func(in RiderStatusInput, _ Rider) []query.Key {
			return []query.Key{s.keys.Detail(in.ID)}
		},
		SuccessFunc: func(in RiderStatusInput, _ Rider) string {
			return fmt.Sprintf("Rider status updated to %s", in.Status)
		},
		Failure:  "Failed to update rider status",
		Validate: true,
	}
}

// Delete removes a rider by id.
func (s RiderService) Delete() query.Mutation[string, Ack] {
	return query.Mutation[string, Ack]{
		Domain:      DomainRiders,
		Name:        "delete",
		Call:        deleteCall(s.api, func(id string) string { return s.itemPath(id) }),
		Invalidates: s.invalidated(),
		InvalidatesFor: func(id string, _ Ack) []query.Key {
			return []query.Key{s.keys.Detail(id)}
		},
		Success: "Rider deleted successfully",
		Failure: "Failed to delete rider",
	}
}
