package admin

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/query"
)

// Wallet holds the balance of a rider or merchant.
type Wallet struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"ownerId"`
	OwnerType string    `json:"ownerType"`
	OwnerName string    `json:"ownerName"`
	Balance   float64   `json:"balance"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// WalletStats are the wallet counters.
type WalletStats struct {
	Total        int     `json:"total"`
	Active       int     `json:"active"`
	Frozen       int     `json:"frozen"`
	TotalBalance float64 `json:"totalBalance"`
}

// WalletTransaction is one balance movement.
type WalletTransaction struct {
	ID          string    `json:"id"`
	WalletID    string    `json:"walletId"`
	Type        string    `json:"type"`
	Amount      float64   `json:"amount"`
	Balance     float64   `json:"balanceAfter"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AdjustWalletInput credits or debits a wallet.
type AdjustWalletInput struct {
	WalletID    string  `json:"-" validate:"required"`
	Type        string  `json:"type" validate:"required,oneof=credit debit"`
	Amount      float64 `json:"amount" validate:"gt=0"`
	Description string  `json:"description" validate:"required"`
}

// WalletStatusInput freezes or reactivates a wallet.
type WalletStatusInput struct {
	WalletID string `json:"-" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=active frozen"`
}

// WalletService is the wallets domain.
type WalletService struct {
	Resource[Wallet, WalletStats]
}

func newWalletService(c *api.Client) WalletService {
	return WalletService{newResource[Wallet, WalletStats](c, DomainWallets, "/wallets")}
}

// TransactionsKey is the prefix of every transactions page of a wallet.
func (s WalletService) TransactionsKey(walletID string) query.Key {
	return s.keys.Sub(scopeTransactions, walletID)
}

// TransactionsSpec reads one page of a wallet's transactions. It stays
// disabled while walletID is empty.
func (s WalletService) TransactionsSpec(walletID string, p ListParams) query.Spec[api.Page[WalletTransaction]] {
	walletID = strings.TrimSpace(walletID)
	p = p.Normalize()
	return query.Spec[api.Page[WalletTransaction]]{
		Key:          s.keys.Sub(scopeTransactions, walletID, p.KeyParams()),
		Name:         scopeTransactions,
		KeepPrevious: true,
		Enabled:      func() bool { return walletID != "" },
		Fetch: func(ctx context.Context) (api.Page[WalletTransaction], error) {
			return api.List[WalletTransaction](ctx, s.api, s.itemPath(walletID, "transactions"), p.Values())
		},
	}
}

func (s WalletService) affected(walletID string) []query.Key {
	return []query.Key{s.keys.Detail(walletID), s.TransactionsKey(walletID)}
}

// Adjust credits or debits a wallet.
func (s WalletService) Adjust() query.Mutation[AdjustWalletInput, Wallet] {
	return query.Mutation[AdjustWalletInput, Wallet]{
		Domain: DomainWallets,
		Name:   "adjust",
		Call: sendCall[AdjustWalletInput, Wallet](s.api, http.MethodPost, func(in AdjustWalletInput) string {
			return s.itemPath(in.WalletID, "adjust")
		}),
		Invalidates:    []query.Key{s.keys.Lists(), s.keys.Stats()},
		InvalidatesFor: func(in AdjustWalletInput, _ Wallet) []query.Key { return s.affected(in.WalletID) },
		Success:        "Wallet balance updated",
		Failure:        "Failed to adjust wallet",
		Validate:       true,
	}
}

// SetStatus freezes or reactivates a wallet.
func (s WalletService) SetStatus() query.Mutation[WalletStatusInput, Wallet] {
	return query.Mutation[WalletStatusInput, Wallet]{
		Domain: DomainWallets,
		Name:   "set_status",
		Call: sendCall[WalletStatusInput, Wallet](s.api, http.MethodPatch, func(in WalletStatusInput) string {
			return s.itemPath(in.WalletID, "status")
		}),
		Invalidates:    []query.Key{s.keys.Lists(), s.keys.Stats()},
		InvalidatesFor: func(in WalletStatusInput, _ Wallet) []query.Key { return s.affected(in.WalletID) },
		Success:        "Wallet status updated",
		Failure:        "Failed to update wallet status",
		Validate:       true,
	}
}
