package content

import (
	"strings"
	"time"

	"personafeed/internal/association"
	"personafeed/internal/common"
	"personafeed/internal/dbmysql"
)

// ContentInput is the body of POST /content and of each bulk item.
type ContentInput struct {
	Title         string               `json:"title" validate:"required,max=255"`
	Description   string               `json:"description"`
	Type          common.ContentType   `json:"type" validate:"omitempty,oneof=video article gallery event"`
	Status        common.ContentStatus `json:"status" validate:"omitempty,oneof=draft review scheduled"`
	ContentURL    string               `json:"content_url" validate:"omitempty,url,max=1024"`
	ThumbnailURL  string               `json:"thumbnail_url" validate:"omitempty,url,max=1024"`
	CompanyID     *int64               `json:"company_id" validate:"omitempty,gt=0"`
	AuthorID      *int64               `json:"author_id" validate:"omitempty,gt=0"`
	ScheduledDate *string              `json:"scheduled_date"`

	Personas  association.TargetSet `json:"personas"`
	Platforms association.TargetSet `json:"platforms"`
}

// ToModel validates the input and returns the row to insert, with dates
// normalised to whole UTC seconds.
func (in ContentInput) ToModel() (*dbmysql.Content, error) {
	if in.Status == common.StatusPublished {
		return nil, common.NewValidationError("content is published through the publish action")
	}
	if err := common.ValidateStruct(in); err != nil {
		return nil, err
	}

	c := &dbmysql.Content{
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Type:         in.Type,
		Status:       in.Status,
		ContentURL:   in.ContentURL,
		ThumbnailURL: in.ThumbnailURL,
		CompanyID:    in.CompanyID,
		AuthorID:     in.AuthorID,
	}
	if c.Type == "" {
		c.Type = common.ContentTypeVideo
	}
	if c.Status == "" {
		c.Status = common.StatusDraft
	}
	scheduled, err := parseOptionalDate(in.ScheduledDate)
	if err != nil {
		return nil, err
	}
	c.ScheduledDate = scheduled
	return c, nil
}

// ContentPatch is a partial update. Nil fields are left untouched; the two
// relation sets replace links only when set.
type ContentPatch struct {
	Title         *string               `json:"title" validate:"omitempty,min=1,max=255"`
	Description   *string               `json:"description"`
	Type          *common.ContentType   `json:"type" validate:"omitempty,oneof=video article gallery event"`
	Status        *common.ContentStatus `json:"status" validate:"omitempty,oneof=draft review scheduled"`
	ContentURL    *string               `json:"content_url" validate:"omitempty,url,max=1024"`
	ThumbnailURL  *string               `json:"thumbnail_url" validate:"omitempty,url,max=1024"`
	CompanyID     *int64                `json:"company_id" validate:"omitempty,gt=0"`
	AuthorID      *int64                `json:"author_id" validate:"omitempty,gt=0"`
	ScheduledDate *string               `json:"scheduled_date"`

	Personas  association.TargetSet `json:"personas"`
	Platforms association.TargetSet `json:"platforms"`
}

// Columns validates the patch and returns the column writes it implies.
// An empty scheduled_date clears the column.
func (p ContentPatch) Columns() (map[string]interface{}, error) {
	if p.Status != nil && *p.Status == common.StatusPublished {
		return nil, common.NewValidationError("content is published through the publish action")
	}
	if err := common.ValidateStruct(p); err != nil {
		return nil, err
	}

	cols := make(map[string]interface{})
	if p.Title != nil {
		cols["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Type != nil {
		cols["type"] = *p.Type
	}
	if p.Status != nil {
		cols["status"] = *p.Status
	}
	if p.ContentURL != nil {
		cols["content_url"] = *p.ContentURL
	}
	if p.ThumbnailURL != nil {
		cols["thumbnail_url"] = *p.ThumbnailURL
	}
	if p.CompanyID != nil {
		cols["company_id"] = *p.CompanyID
	}
	if p.AuthorID != nil {
		cols["author_id"] = *p.AuthorID
	}
	if p.ScheduledDate != nil {
		scheduled, err := parseOptionalDate(p.ScheduledDate)
		if err != nil {
			return nil, err
		}
		cols["scheduled_date"] = scheduled
	}
	return cols, nil
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := common.ParseTimestamp(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ContentWithRelations is a content row with its links in insertion order.
type ContentWithRelations struct {
	dbmysql.Content
	Personas  []dbmysql.NamedRef `json:"personas"`
	Platforms []dbmysql.NamedRef `json:"platforms"`
}
