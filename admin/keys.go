package admin

import "github.com/jonwraymond/fleetsync/query"

// Domains, the first element of every cache key.
const (
	DomainHubs      = "hubs"
	DomainRiders    = "riders"
	DomainMerchants = "merchants"
	DomainShipments = "shipments"
	DomainPayments  = "payments"
	DomainWallets   = "wallets"
	DomainSupport   = "support"
	DomainCMS       = "cms"
	DomainSettings  = "settings"
	DomainProfile   = "profile"
	DomainAnalytics = "analytics"
)

// Key scopes.
const (
	scopeList         = "list"
	scopeStats        = "stats"
	scopeDetail       = "detail"
	scopeTransactions = "transactions"
)

// Keys builds the cache keys of one domain:
//
//	[domain]                     everything
//	[domain, "list", params]     one list page
//	[domain, "stats"]            counters
//	[domain, "detail", id]       one record
type Keys struct {
	domain string
}

// KeysFor returns the key builder for domain.
func KeysFor(domain string) Keys { return Keys{domain: domain} }

// Domain returns the domain name.
func (k Keys) Domain() string { return k.domain }

// All is the prefix of every key of the domain.
func (k Keys) All() query.Key { return query.MustKey(k.domain) }

// Lists is the prefix of every list page.
func (k Keys) Lists() query.Key { return query.MustKey(k.domain, scopeList) }

// List is the key of one list page. Parameters too large for a key yield
// the zero key, which every read rejects with query.ErrInvalidKey.
func (k Keys) List(p ListParams) query.Key {
	key, err := query.NewKey(k.domain, scopeList, p.KeyParams())
	if err != nil {
		return query.Key{}
	}
	return key
}

// Stats is the key of the domain counters.
func (k Keys) Stats() query.Key { return query.MustKey(k.domain, scopeStats) }

// Details is the prefix of every detail key.
func (k Keys) Details() query.Key { return query.MustKey(k.domain, scopeDetail) }

// Detail is the key of one record.
func (k Keys) Detail(id string) query.Key { return query.MustKey(k.domain, scopeDetail, id) }

// Sub is the key [domain, scope, parts...] for domain-specific reads.
func (k Keys) Sub(scope string, parts ...any) query.Key {
	return query.MustKey(k.domain, append([]any{scope}, parts...)...)
}
