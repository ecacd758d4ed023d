package admin

import (
	"net/http"
	"time"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/query"
)

// Content is one CMS entry: a page, banner, FAQ or announcement.
type Content struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Body      string    `json:"body"`
	Published bool      `json:"published"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ContentStats are the CMS counters.
type ContentStats struct {
	Total     int            `json:"total"`
	Published int            `json:"published"`
	Drafts    int            `json:"drafts"`
	ByType    map[string]int `json:"byType,omitempty"`
}

// CreateContentInput is the body of a new CMS entry.
type CreateContentInput struct {
	Type      string `json:"type" validate:"required,oneof=page banner faq announcement"`
	Title     string `json:"title" validate:"required,min=3"`
	Slug      string `json:"slug" validate:"required"`
	Body      string `json:"body" validate:"required"`
	Published bool   `json:"published"`
}

// UpdateContentInput changes a CMS entry.
type UpdateContentInput struct {
	ID        string `json:"-" validate:"required"`
	Title     string `json:"title,omitempty" validate:"omitempty,min=3"`
	Slug      string `json:"slug,omitempty"`
	Body      string `json:"body,omitempty"`
	Published *bool  `json:"published,omitempty"`
}

// CMSService is the content domain. Lists are filtered by content type.
type CMSService struct {
	Resource[Content, ContentStats]
}

func newCMSService(c *api.Client) CMSService {
	return CMSService{newResource[Content, ContentStats](c, DomainCMS, "/cms")}
}

// ListOf reads one page of a content type; an empty type lists all.
func (s CMSService) ListOf(contentType string, p ListParams) query.Spec[api.Page[Content]] {
	return s.ListSpec(p.WithFilter("type", contentType).WithPage(p.Page))
}

// Every content type shares the list prefix, so any write refreshes all lists.
func (s CMSService) invalidated() []query.Key {
	return []query.Key{s.keys.Lists(), s.keys.Stats()}
}

// Create adds a CMS entry.
func (s CMSService) Create() query.Mutation[CreateContentInput, Content] {
	return query.Mutation[CreateContentInput, Content]{
		Domain:      DomainCMS,
		Name:        "create",
		Call:        createCall[CreateContentInput, Content](s.api, s.path),
		Invalidates: s.invalidated(),
		Success:     "Content created successfully",
		Failure:     "Failed to create content",
		Validate:    true,
	}
}

// Update changes a CMS entry.
func (s CMSService) Update() query.Mutation[UpdateContentInput, Content] {
	return query.Mutation[UpdateContentInput, Content]{
		Domain: DomainCMS,
		Name:   "update",
		Call: sendCall[UpdateContentInput, Content](s.api, http.MethodPut, func(in UpdateContentInput) string {
			return s.itemPath(in.ID)
		}),
		Invalidates: s.invalidated(),
		InvalidatesFor: func(in UpdateContentInput, _ Content) []query.Key {
			return []query.Key{s.keys.Detail(in.ID)}
		},
		Success:  "Content updated successfully",
		Failure:  "Failed to update content",
		Validate: true,
	}
}

// Delete removes a CMS entry by id.
func (s CMSService) Delete() query.Mutation[string, Ack] {
	return query.Mutation[string, Ack]{
		Domain:      DomainCMS,
		Name:        "delete",
		Call:        deleteCall(s.api, func(id string) string { return s.itemPath(id) }),
		Invalidates: s.invalidated(),
		InvalidatesFor: func(id string, _ Ack) []query.Key {
			return []query.Key{s.keys.Detail(id)}
		},
		Success: "Content deleted successfully",
		Failure: "Failed to delete content",
	}
}
