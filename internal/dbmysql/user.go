package dbmysql

import (
	"time"

	"gorm.io/gorm"
)

// User is the content author. Accounts are managed by the auth service; the
// feed only joins on it for the author's display handle.
type User struct {
	UserID    int64          `gorm:"primaryKey;column:user_id;autoIncrement" json:"user_id"`
	Handle    string         `gorm:"column:handle;uniqueIndex;size:50;not null" json:"handle"`
	Email     string         `gorm:"column:email;size:255" json:"email"`
	CompanyID *int64         `gorm:"column:company_id;index" json:"company_id"`
	Status    string         `gorm:"column:status;type:enum('active','banned','deleted');default:'active'" json:"status"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
