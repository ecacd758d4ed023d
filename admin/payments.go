package admin

import (
	"net/http"
	"time"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/query"
)

// Payment is a settlement between the platform and a merchant or rider.
type Payment struct {
	ID          string    `json:"id"`
	Reference   string    `json:"reference"`
	PayeeID     string    `json:"payeeId"`
	PayeeType   string    `json:"payeeType"`
	WalletID    string    `json:"walletId,omitempty"`
	Amount      float64   `json:"amount"`
	Method      string    `json:"method"`
	Status      string    `json:"status"`
	ProcessedAt time.Time `json:"processedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PaymentStats are the payment counters.
type PaymentStats struct {
	Total         int     `json:"total"`
	Pending       int     `json:"pending"`
	Completed     int     `json:"completed"`
	Failed        int     `json:"failed"`
	TotalAmount   float64 `json:"totalAmount"`
	PendingAmount float64 `json:"pendingAmount"`
}

// PaymentStatusInput approves, completes or rejects a payment.
type PaymentStatusInput struct {
	ID     string `json:"-" validate:"required"`
	Status string `json:"status" validate:"required,oneof=pending processing completed failed"`
	Note   string `json:"note,omitempty"`
}

// RefundInput refunds part or all of a payment.
type RefundInput struct {
	ID     string  `json:"-" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
	Reason string  `json:"reason" validate:"required,min=5"`
}

// PaymentService is the payments domain.
type PaymentService struct {
	Resource[Payment, PaymentStats]
}

func newPaymentService(c *api.Client) PaymentService {
	return PaymentService{newResource[Payment, PaymentStats](c, DomainPayments, "/payments")}
}

// Payments move wallet balances and revenue figures.
func (s PaymentService) invalidated() []query.Key {
	return []query.Key{
		s.keys.Lists(),
		s.keys.Stats(),
		KeysFor(DomainWallets).All(),
		KeysFor(DomainAnalytics).All(),
	}
}

// UpdateStatus changes a payment status.
func (s PaymentService) UpdateStatus() query.Mutation[PaymentStatusInput, Payment] {
	return query.Mutation[PaymentStatusInput, Payment]{
		Domain: DomainPayments,
		Name:   "update_status",
		Call: sendCall[PaymentStatusInput, Payment](s.api, http.MethodPatch, func(in PaymentStatusInput) string {
			return s.itemPath(in.ID, "status")
		}),
		Invalidates: s.invalidated(),
		InvalidatesFor: func(in PaymentStatusInput, _ Payment) []query.Key {
			return []query.Key{s.keys.Detail(in.ID)}
		},
		Success:  "Payment status updated",
		Failure:  "Failed to update payment",
		Validate: true,
	}
}

// Refund refunds a payment.
func (s PaymentService) Refund() query.Mutation[RefundInput, Payment] {
	return query.Mutation[RefundInput, Payment]{
		Domain: DomainPayments,
		Name:   "refund",
		Call: sendCall[RefundInput, Payment](s.api, http.MethodPost, func(in RefundInput) string {
			return s.itemPath(in.ID, "refund")
		}),
		Invalidates: s.invalidated(),
		InvalidatesFor: func(in RefundInput, _ Payment) []query.Key {
			return []query.Key{s.keys.Detail(in.ID)}
		},
		Success:  "Payment refunded successfully",
		Failure:  "Failed to refund payment",
		Validate: true,
	}
}
