package dbmysql

// Junction rows carry only the two foreign keys. The surrogate id exists so
// hydration can return links in insertion order.

type ContentPersona struct {
	ID        int64 `gorm:"primaryKey;autoIncrement;column:id"`
	ContentID int64 `gorm:"column:content_id;not null;uniqueIndex:uq_content_persona"`
	PersonaID int64 `gorm:"column:persona_id;not null;uniqueIndex:uq_content_persona;index"`
}

func (ContentPersona) TableName() string {
	return "content_personas"
}

type ContentPlatform struct {
	ID         int64 `gorm:"primaryKey;autoIncrement;column:id"`
	ContentID  int64 `gorm:"column:content_id;not null;uniqueIndex:uq_content_platform"`
	PlatformID int64 `gorm:"column:platform_id;not null;uniqueIndex:uq_content_platform;index"`
}

func (ContentPlatform) TableName() string {
	return "content_platforms"
}

type PersonaPlatform struct {
	ID         int64 `gorm:"primaryKey;autoIncrement;column:id"`
	PersonaID  int64 `gorm:"column:persona_id;not null;uniqueIndex:uq_persona_platform"`
	PlatformID int64 `gorm:"column:platform_id;not null;uniqueIndex:uq_persona_platform;index"`
}

func (PersonaPlatform) TableName() string {
	return "persona_platforms"
}

type PersonaInterest struct {
	ID         int64 `gorm:"primaryKey;autoIncrement;column:id"`
	PersonaID  int64 `gorm:"column:persona_id;not null;uniqueIndex:uq_persona_interest"`
	InterestID int64 `gorm:"column:interest_id;not null;uniqueIndex:uq_persona_interest;index"`
}

func (PersonaInterest) TableName() string {
	return "persona_interests"
}
