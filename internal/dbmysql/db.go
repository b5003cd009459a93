package dbmysql

import (
	"fmt"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the service reads or writes.
// Referenced tables come before the tables that point at them.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Company{},
		&User{},
		&Platform{},
		&Interest{},
		&Persona{},
		&Content{},
		&ContentPersona{},
		&ContentPlatform{},
		&PersonaPlatform{},
		&PersonaInterest{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
