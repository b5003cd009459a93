package dbmysql

import "time"

type Persona struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name        string    `gorm:"column:name;size:255;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	AgeRange    string    `gorm:"column:age_range;size:50" json:"age_range"`
	IsActive    bool      `gorm:"column:is_active;not null" json:"is_active"`
	CompanyID   *int64    `gorm:"column:company_id;index" json:"company_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Persona) TableName() string {
	return "personas"
}

type Company struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name      string    `gorm:"column:name;size:255;not null" json:"name"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Company) TableName() string {
	return "companies"
}
