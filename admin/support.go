package admin

import (
	"net/http"
	"time"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/query"
)

// Ticket is a support request from a merchant, rider or customer.
type Ticket struct {
	ID        string        `json:"id"`
	Subject   string        `json:"subject"`
	Category  string        `json:"category"`
	Priority  string        `json:"priority"`
	Status    string        `json:"status"`
	CreatedBy string        `json:"createdBy"`
	Replies   []TicketReply `json:"replies,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// TicketReply is one message on a ticket.
type TicketReply struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// TicketStats are the ticket counters.
type TicketStats struct {
	Total      int `json:"total"`
	Open       int `json:"open"`
	InProgress int `json:"inProgress"`
	Resolved   int `json:"resolved"`
	Closed     int `json:"closed"`
}

// ReplyInput adds a reply to a ticket.
type ReplyInput struct {
	TicketID string `json:"-" validate:"required"`
	Message  string `json:"message" validate:"required,min=2,max=5000"`
}

// TicketStatusInput moves a ticket to another status.
type TicketStatusInput struct {
	TicketID string `json:"-" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=open in_progress resolved closed"`
}

// SupportService is the support tickets domain.
type SupportService struct {
	Resource[Ticket, TicketStats]
}

func newSupportService(c *api.Client) SupportService {
	return SupportService{newResource[Ticket, TicketStats](c, DomainSupport, "/support/tickets")}
}

func (s SupportService) invalidated(ticketID string) []query.Key {
	return []query.Key{s.keys.Detail(ticketID)}
}

// Reply posts a reply.
func (s SupportService) Reply() query.Mutation[ReplyInput, Ticket] {
	return query.Mutation[ReplyInput, Ticket]{
		Domain: DomainSupport,
		Name:   "reply",
		Call: sendCall[ReplyInput, Ticket](s.api, http.MethodPost, func(in ReplyInput) string {
			return s.itemPath(in.TicketID, "replies")
		}),
		Invalidates:    []query.Key{s.keys.Lists(), s.keys.Stats()},
		InvalidatesFor: func(in ReplyInput, _ Ticket) []query.Key { return s.invalidated(in.TicketID) },
		Success:        "Reply sent successfully",
		Failure:        "Failed to send reply",
		Validate:       true,
	}
}

// UpdateStatus changes a ticket status.
func (s SupportService) UpdateStatus() query.Mutation[TicketStatusInput, Ticket] {
	return query.Mutation[TicketStatusInput, Ticket]{
		Domain: DomainSupport,
		Name:   "update_status",
		Call: sendCall[TicketStatusInput, Ticket](s.api, http.MethodPatch, func(in TicketStatusInput) string {
			return s.itemPath(in.TicketID, "status")
		}),
		Invalidates:    []query.Key{s.keys.Lists(), s.keys.Stats()},
		InvalidatesFor: func(in TicketStatusInput, _ Ticket) []query.Key { return s.invalidated(in.TicketID) },
		Success:        "Ticket status updated",
		Failure:        "Failed to update ticket",
		Validate:       true,
	}
}
