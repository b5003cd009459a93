package dbmysql

// Dimension tables are keyed by a case-sensitive unique name; the binary
// collation makes "TikTok" and "tiktok" distinct rows.

type Platform struct {
	ID   int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name string `gorm:"column:name;type:varchar(100) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;not null;uniqueIndex" json:"name"`
}

func (Platform) TableName() string {
	return "platforms"
}

type Interest struct {
	ID   int64  `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name string `gorm:"column:name;type:varchar(100) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin;not null;uniqueIndex" json:"name"`
}

func (Interest) TableName() string {
	return "interests"
}

// NamedRef is the {id, name} projection used when hydrating associations.
type NamedRef struct {
	ID   int64  `gorm:"column:id" json:"id"`
	Name string `gorm:"column:name" json:"name"`
}
