package dbmysql

import (
	"time"

	"personafeed/internal/common"
)

// content.go
type Content struct {
	ID            int64                `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Title         string               `gorm:"column:title;size:255;not null" json:"title"`
	Description   string               `gorm:"column:description;type:text" json:"description"`
	Type          common.ContentType   `gorm:"column:type;type:enum('video','article','gallery','event');default:'video'" json:"type"`
	Status        common.ContentStatus `gorm:"column:status;type:enum('draft','review','scheduled','published');default:'draft';index" json:"status"`
	ContentURL    string               `gorm:"column:content_url;size:1024" json:"content_url"`
	ThumbnailURL  string               `gorm:"column:thumbnail_url;size:1024" json:"thumbnail_url"`
	CompanyID     *int64               `gorm:"column:company_id;index" json:"company_id"`
	AuthorID      *int64               `gorm:"column:author_id;index" json:"author_id"`
	ScheduledDate *time.Time           `gorm:"column:scheduled_date" json:"scheduled_date"`
	PublishDate   *time.Time           `gorm:"column:publish_date;index" json:"publish_date"`
	Views         int64                `gorm:"column:views;not null;default:0" json:"views"`
	Likes         int64                `gorm:"column:likes;not null;default:0" json:"likes"`
	Comments      int64                `gorm:"column:comments;not null;default:0" json:"comments"`
	Shares        int64                `gorm:"column:shares;not null;default:0" json:"shares"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Content) TableName() string {
	return "content"
}
