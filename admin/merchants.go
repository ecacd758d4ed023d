package admin

import (
	"net/http"
	"time"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/query"
)

// Merchant is a shipper using the platform.
type Merchant struct {
	ID           string    `json:"id"`
	BusinessName string    `json:"businessName"`
	ContactName  string    `json:"contactName"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	City         string    `json:"city"`
	Status       string    `json:"status"`
	Shipments    int       `json:"shipments"`
	CreatedAt    time.Time `json:"createdAt"`
}

// MerchantStats are the merchant counters.
type MerchantStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Pending  int `json:"pending"`
	Inactive int `json:"inactive"`
}

// CreateMerchantInput is the body of a merchant onboarding.
type CreateMerchantInput struct {
	BusinessName string `json:"businessName" validate:"required,min=2"`
	ContactName  string `json:"contactName" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,e164"`
	City         string `json:"city" validate:"required"`
}

// UpdateMerchantInput changes the set fields of a merchant.
type UpdateMerchantInput struct {
	ID           string `json:"-" validate:"required"`
	BusinessName string `json:"businessName,omitempty" validate:"omitempty,min=2"`
	ContactName  string `json:"contactName,omitempty"`
	Email        string `json:"email,omitempty" validate:"omitempty,email"`
	Phone        string `json:"phone,omitempty" validate:"omitempty,e164"`
	City         string `json:"city,omitempty"`
	Status       string `json:"status,omitempty" validate:"omitempty,oneof=active pending inactive"`
}

// MerchantService is the merchants domain.
type MerchantService struct {
	Resource[Merchant, MerchantStats]
}

func newMerchantService(c *api.Client) MerchantService {
	return MerchantService{newResource[Merchant, MerchantStats](c, DomainMerchants, "/merchants")}
}

func (s MerchantService) detail(id string) []query.Key {
	return []query.Key{s.keys.Detail(id)}
}

// Create onboards a merchant.
func (s MerchantService) Create() query.Mutation[CreateMerchantInput, Merchant] {
	return query.Mutation[CreateMerchantInput, Merchant]{
		Domain:      DomainMerchants,
		Name:        "create",
		Call:        createCall[CreateMerchantInput, Merchant](s.api, s.path),
		Invalidates: []query.Key{s.keys.Lists(), s.keys.Stats()},
		Success:     "Merchant created successfully",
		Failure:     "Failed to create merchant",
		Validate:    true,
	}
}

// Update changes a merchant.
func (s MerchantService) Update() query.Mutation[UpdateMerchantInput, Merchant] {
	return query.Mutation[UpdateMerchantInput, Merchant]{
		Domain: DomainMerchants,
		Name:   "update",
		Call: sendCall[UpdateMerchantInput, Merchant](s.api, http.MethodPut, func(in UpdateMerchantInput) string {
			return s.itemPath(in.ID)
		}),
		Invalidates:    []query.Key{s.keys.Lists(), s.keys.Stats()},
		InvalidatesFor: func(in UpdateMerchantInput, _ Merchant) []query.Key { return s.detail(in.ID) },
		Success:        "Merchant updated successfully",
		Failure:        "Failed to update merchant",
		Validate:       true,
	}
}

// Delete removes a merchant by id.
func (s MerchantService) Delete() query.Mutation[string, Ack] {
	return query.Mutation[string, Ack]{
		Domain:         DomainMerchants,
		Name:           "delete",
		Call:           deleteCall(s.api, func(id string) string { return s.itemPath(id) }),
		Invalidates:    []query.Key{s.keys.Lists(), s.keys.Stats()},
		InvalidatesFor: func(id string, _ Ack) []query.Key { return s.detail(id) },
		Success:        "Merchant deleted successfully",
		Failure:        "Failed to delete merchant",
	}
}
