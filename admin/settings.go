package admin

import (
	"context"
	"net/http"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/query"
)

// Settings are the platform-wide options.
type Settings struct {
	CompanyName     string  `json:"companyName"`
	SupportEmail    string  `json:"supportEmail"`
	SupportPhone    string  `json:"supportPhone"`
	Currency        string  `json:"currency"`
	BaseDeliveryFee float64 `json:"baseDeliveryFee"`
	CODFeePercent   float64 `json:"codFeePercent"`
	MaintenanceMode bool    `json:"maintenanceMode"`
	NotificationsOn bool    `json:"notificationsEnabled"`
	DefaultPageSize int     `json:"defaultPageSize"`
}

// UpdateSettingsInput replaces the settings.
type UpdateSettingsInput struct {
	CompanyName     string  `json:"companyName" validate:"required"`
	SupportEmail    string  `json:"supportEmail" validate:"required,email"`
	SupportPhone    string  `json:"supportPhone" validate:"omitempty,e164"`
	Currency        string  `json:"currency" validate:"required,len=3"`
	BaseDeliveryFee float64 `json:"baseDeliveryFee" validate:"gte=0"`
	CODFeePercent   float64 `json:"codFeePercent" validate:"gte=0,lte=100"`
	MaintenanceMode bool    `json:"maintenanceMode"`
	NotificationsOn bool    `json:"notificationsEnabled"`
	DefaultPageSize int     `json:"defaultPageSize" validate:"omitempty,min=1,max=100"`
}

// SettingsService is the settings domain, a single document.
type SettingsService struct {
	api  *api.Client
	keys Keys
}

func newSettingsService(c *api.Client) SettingsService {
	return SettingsService{api: c, keys: KeysFor(DomainSettings)}
}

// Spec reads the settings.
func (s SettingsService) Spec() query.Spec[Settings] {
	return query.Spec[Settings]{
		Key:   s.keys.All(),
		Name:  "get",
		Fetch: getData[Settings](s.api, "/settings", nil),
	}
}

// Get fetches or serves the settings.
func (s SettingsService) Get(ctx context.Context, q *query.Client) (Settings, error) {
	return query.Get(ctx, q, s.Spec())
}

// Update replaces the settings.
func (s SettingsService) Update() query.Mutation[UpdateSettingsInput, Settings] {
	return query.Mutation[UpdateSettingsInput, Settings]{
		Domain: DomainSettings,
		Name:   "update",
		Call: sendCall[UpdateSettingsInput, Settings](s.api, http.MethodPut, func(UpdateSettingsInput) string {
			return "/settings"
		}),
		Invalidates: []query.Key{s.keys.All()},
		Success:     "Settings saved successfully",
		Failure:     "Failed to save settings",
		Validate:    true,
	}
}
