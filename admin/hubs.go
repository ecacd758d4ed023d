package admin

import (
	"net/http"
	"time"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/query"
)

// Hub is a sorting and dispatch location.
type Hub struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Code       string    `json:"code"`
	City       string    `json:"city"`
	Address    string    `json:"address"`
	Phone      string    `json:"phone,omitempty"`
	Status     string    `json:"status"`
	Capacity   int       `json:"capacity,omitempty"`
	ManagerID  string    `json:"managerId,omitempty"`
	RiderCount int       `json:"riderCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// HubStats are the hub counters.
type HubStats struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Inactive    int `json:"inactive"`
	TotalRiders int `json:"totalRiders"`
}

// CreateHubInput is the body of a hub creation.
type CreateHubInput struct {
	Name      string `json:"name" validate:"required,min=3"`
	Code      string `json:"code" validate:"required,alphanum,max=12"`
	City      string `json:"city" validate:"required"`
	Address   string `json:"address" validate:"required"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,e164"`
	Capacity  int    `json:"capacity,omitempty" validate:"omitempty,min=1"`
	ManagerID string `json:"managerId,omitempty"`
}

// UpdateHubInput changes the set fields of a hub.
type UpdateHubInput struct {
	ID        string `json:"-" validate:"required"`
	Name      string `json:"name,omitempty" validate:"omitempty,min=3"`
	City      string `json:"city,omitempty"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty" validate:"omitempty,e164"`
	Status    string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Capacity  int    `json:"capacity,omitempty" validate:"omitempty,min=1"`
	ManagerID string `json:"managerId,omitempty"`
}

// HubService is the hubs domain.
type HubService struct {
	Resource[Hub, HubStats]
}

func newHubService(c *api.Client) HubService {
	return HubService{newResource[Hub, HubStats](c, DomainHubs, "/hubs")}
}

func (s HubService) invalidated() []query.Key {
	return []query.Key{s.keys.Lists(), s.keys.Stats(), KeysFor(DomainAnalytics).All()}
}

// Create adds a hub.
func (s HubService) Create() query.Mutation[CreateHubInput, Hub] {
	return query.Mutation[CreateHubInput, Hub]{
		Domain:      DomainHubs,
		Name:        "create",
		Call:        createCall[CreateHubInput, Hub](s.api, s.path),
		Invalidates: s.invalidated(),
		Success:     "Hub created successfully",
		Failure:     "Failed to create hub",
		Validate:    true,
	}
}

// Update changes a hub.
func (s HubService) Update() query.Mutation[UpdateHubInput, Hub] {
	return query.Mutation[UpdateHubInput, Hub]{
		Domain: DomainHubs,
		Name:   "update",
		Call: sendCall[UpdateHubInput, Hub](s.api, http.MethodPut, func(in UpdateHubInput) string {
			return s.itemPath(in.ID)
		}),
		Invalidates: s.invalidated(),
		InvalidatesFor: func(in UpdateHubInput, _ Hub) []query.Key {
			return []query.Key{s.keys.Detail(in.ID)}
		},
		Success:  "Hub updated successfully",
		Failure:  "Failed to update hub",
		Validate: true,
	}
}

// Delete removes a hub by id.
func (s HubService) Delete() query.Mutation[string, Ack] {
	return query.Mutation[string, Ack]{
		Domain:      DomainHubs,
		Name:        "delete",
		Call:        deleteCall(s.api, func(id string) string { return s.itemPath(id) }),
		Invalidates: s.invalidated(),
		InvalidatesFor: func(id string, _ Ack) []query.Key {
			return []query.Key{s.keys.Detail(id)}
		},
		Success: "Hub deleted successfully",
		Failure: "Failed to delete hub",
	}
}
