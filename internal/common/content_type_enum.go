package common

import "strings"

// ContentType mirrors the content.type column enum
type ContentType string

const (
	ContentTypeVideo   ContentType = "video"
	ContentTypeArticle ContentType = "article"
	ContentTypeGallery ContentType = "gallery"
	ContentTypeEvent   ContentType = "event"
)

func (ct ContentType) String() string {
	return string(ct)
}

func (ct ContentType) IsValid() bool {
	switch ct {
	case ContentTypeVideo, ContentTypeArticle, ContentTypeGallery, ContentTypeEvent:
		return true
	}
	return false
}

// ContentStatus is the publishing lifecycle. Published is terminal.
type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusReview    ContentStatus = "review"
	StatusScheduled ContentStatus = "scheduled"
	StatusPublished ContentStatus = "published"
)

func (cs ContentStatus) String() string {
	return string(cs)
}

func (cs ContentStatus) IsValid() bool {
	switch cs {
	case StatusDraft, StatusReview, StatusScheduled, StatusPublished:
		return true
	}
	return false
}

// EngagementType names one of the four engagement counters on content.
type EngagementType string

const (
	EngagementView    EngagementType = "view"
	EngagementLike    EngagementType = "like"
	EngagementComment EngagementType = "comment"
	EngagementShare   EngagementType = "share"
)

func (et EngagementType) String() string {
	return string(et)
}

func (et EngagementType) IsValid() bool {
	_, ok := engagementColumns[et]
	return ok
}

// Column returns the content column incremented by this engagement.
func (et EngagementType) Column() string {
	return engagementColumns[et]
}

var engagementColumns = map[EngagementType]string{
	EngagementView:    "views",
	EngagementLike:    "likes",
	EngagementComment: "comments",
	EngagementShare:   "shares",
}

// ParseEngagementType is lenient about case and surrounding whitespace.
func ParseEngagementType(s string) (EngagementType, error) {
	et := EngagementType(strings.ToLower(strings.TrimSpace(s)))
	if !et.IsValid() {
		return "", NewInvalidEngagementTypeError(s)
	}
	return et, nil
}
