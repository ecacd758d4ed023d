package admin

import (
	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/query"
)

// Service groups every domain over one API client and one query store.
type Service struct {
	API   *api.Client
	Query *query.Client

	Hubs      HubService
	Riders    RiderService
	Merchants MerchantService
	Shipments ShipmentService
	Payments  PaymentService
	Wallets   WalletService
	Support   SupportService
	CMS       CMSService
	Settings  SettingsService
	Profile   ProfileService
	Analytics AnalyticsService
}

// New creates the domain services.
func New(apiClient *api.Client, queryClient *query.Client) (*Service, error) {
	if apiClient == nil || queryClient == nil {
		return nil, ErrNilClient
	}
	return &Service{
		API:       apiClient,
		Query:     queryClient,
		Hubs:      newHubService(apiClient),
		Riders:    newRiderService(apiClient),
		Merchants: newMerchantService(apiClient),
		Shipments: newShipmentService(apiClient),
		Payments:  newPaymentService(apiClient),
		Wallets:   newWalletService(apiClient),
		Support:   newSupportService(apiClient),
		CMS:       newCMSService(apiClient),
		Settings:  newSettingsService(apiClient),
		Profile:   newProfileService(apiClient),
		Analytics: newAnalyticsService(apiClient),
	}, nil
}
