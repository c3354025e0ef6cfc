package store

import "fmt"

func AutoMigrate(db *DB) error {
	if err := db.AutoMigrate(
		&Transaction{},
		&StateValue{},
		&SyncCursor{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
