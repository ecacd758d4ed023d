package admin

import (
	"net/http"
	"time"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/query"
)

// Shipment is one parcel moving through the network.
type Shipment struct {
	ID             string    `json:"id"`
	TrackingNumber string    `json:"trackingNumber"`
	MerchantID     string    `json:"merchantId"`
	HubID          string    `json:"hubId"`
	RiderID        string    `json:"riderId,omitempty"`
	Recipient      string    `json:"recipientName"`
	Phone          string    `json:"recipientPhone"`
	Address        string    `json:"deliveryAddress"`
	Status         string    `json:"status"`
	CODAmount      float64   `json:"codAmount,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ShipmentStats are the shipment counters.
type ShipmentStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	InTransit int `json:"inTransit"`
	Delivered int `json:"delivered"`
	Returned  int `json:"returned"`
}

// CreateShipmentInput is the body of a shipment booking.
type CreateShipmentInput struct {
	MerchantID string  `json:"merchantId" validate:"required"`
	HubID      string  `json:"hubId" validate:"required"`
	Recipient  string  `json:"recipientName" validate:"required"`
	Phone      string  `json:"recipientPhone" validate:"required,e164"`
	Address    string  `json:"deliveryAddress" validate:"required,min=5"`
	Weight     float64 `json:"weight" validate:"gt=0"`
	CODAmount  float64 `json:"codAmount,omitempty" validate:"gte=0"`
}

// ShipmentStatusInput moves a shipment along its lifecycle.
type ShipmentStatusInput struct {
	ID     string `json:"-" validate:"required"`
	Status string `json:"status" validate:"required,oneof=pending picked_up in_transit out_for_delivery delivered returned cancelled"`
	Note   string `json:"note,omitempty"`
}

// AssignRiderInput assigns a shipment to a rider.
type AssignRiderInput struct {
	ShipmentID string `json:"-" validate:"required"`
	RiderID    string `json:"riderId" validate:"required"`
}

// ShipmentService is the shipments domain.
type ShipmentService struct {
	Resource[Shipment, ShipmentStats]
}

func newShipmentService(c *api.Client) ShipmentService {
	return ShipmentService{newResource[Shipment, ShipmentStats](c, DomainShipments, "/shipments")}
}

func (s ShipmentService) invalidated() []query.Key {
	return []query.Key{s.keys.Lists(), s.keys.Stats(), KeysFor(DomainAnalytics).All()}
}

// Create books a shipment.
func (s ShipmentService) Create() query.Mutation[CreateShipmentInput, Shipment] {
	return query.Mutation[CreateShipmentInput, Shipment]{
		Domain:      DomainShipments,
		Name:        "create",
		Call:        createCall[CreateShipmentInput, Shipment](s.api, s.path),
		Invalidates: s.invalidated(),
		Success:     "Shipment created successfully",
		Failure:     "Failed to create shipment",
		Validate:    true,
	}
}

// UpdateStatus changes a shipment status.
func (s ShipmentService) UpdateStatus() query.Mutation[ShipmentStatusInput, Shipment] {
	return query.Mutation[ShipmentStatusInput, Shipment]{
		Domain: DomainShipments,
		Name:   "update_status",
		Call: sendCall[ShipmentStatusInput, Shipment](s.api, http.MethodPatch, func(in ShipmentStatusInput) string {
			return s.itemPath(in.ID, "status")
		}),
		Invalidates: s.invalidated(),
		InvalidatesFor: func(in ShipmentStatusInput, _ Shipment) []query.Key {
			return []query.Key{s.keys.Detail(in.ID)}
		},
		Success:  "Shipment status updated",
		Failure:  "Failed to update shipment status",
		Validate: true,
	}
}

// AssignRider assigns a shipment. The rider's detail view shows its
// assignments, so it is refreshed as well.
func (s ShipmentService) AssignRider() query.Mutation[AssignRiderInput, Shipment] {
	return query.Mutation[AssignRiderInput, Shipment]{
		Domain: DomainShipments,
		Name:   "assign_rider",
		Call: sendCall[AssignRiderInput, Shipment](s.api, http.MethodPost, func(in AssignRiderInput) string {
			return s.itemPath(in.ShipmentID, "assign")
		}),
		Invalidates: s.invalidated(),
		InvalidatesFor: func(in AssignRiderInput, _ Shipment) []query.Key {
			return []query.Key{s.keys.Detail(in.ShipmentID), KeysFor(DomainRiders).Detail(in.RiderID)}
		},
		Success:  "Rider assigned successfully",
		Failure:  "Failed to assign rider",
		Validate: true,
	}
}

// Delete cancels and removes a shipment by id.
func (s ShipmentService) Delete() query.Mutation[string, Ack] {
	return query.Mutation[string, Ack]{
		Domain:      DomainShipments,
		Name:        "delete",
		Call:        deleteCall(s.api, func(id string) string { return s.itemPath(id) }),
		Invalidates: s.invalidated(),
		InvalidatesFor: func(id string, _ Ack) []query.Key {
			return []query.Key{s.keys.Detail(id)}
		},
		Success: "Shipment deleted successfully",
		Failure: "Failed to delete shipment",
	}
}
