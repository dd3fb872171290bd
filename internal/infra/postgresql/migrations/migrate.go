package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"

	"lendingledger/internal/repository"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_catalog",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&repository.AuthorModel{},
					&repository.BookModel{},
					&repository.UserModel{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					&repository.UserModel{},
					&repository.BookModel{},
					&repository.AuthorModel{},
				)
			},
		},
		{
			ID: "000002_create_borrows",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.BorrowModel{}); err != nil {
					return err
				}
				// Weak references by design: no FK constraints, so deleting a
				// catalog row never cascades into loan history.
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_borrows_user_id ON borrows (user_id)`,
					`CREATE INDEX IF NOT EXISTS idx_borrows_book_id ON borrows (book_id)`,
					`CREATE INDEX IF NOT EXISTS idx_borrows_created ON borrows (created_at, id)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.BorrowModel{})
			},
		},
		{
			ID: "000003_create_notifications",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.QueuedMessageModel{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_notifications_due ON notifications (next_attempt_at) WHERE status = 'PENDING'`,
					`CREATE INDEX IF NOT EXISTS idx_notifications_correlation_id ON notifications (correlation_id)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.QueuedMessageModel{})
			},
		},
		{
			ID: "000004_create_notification_attempts",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.DeliveryAttemptModel{}); err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_attempts_message_id ON notification_attempts (message_id)`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&repository.DeliveryAttemptModel{})
			},
		},
		{
			ID: "000005_add_notification_lease",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&repository.QueuedMessageModel{}); err != nil {
					return err
				}
				return tx.Exec(`CREATE INDEX IF NOT EXISTS idx_notifications_lease ON notifications (lease_expires_at) WHERE status = 'IN_FLIGHT'`).Error
			},
			Rollback: func(tx *gorm.DB) error {
				if err := tx.Exec(`DROP INDEX IF EXISTS idx_notifications_lease`).Error; err != nil {
					return err
				}
				return tx.Migrator().DropColumn(&repository.QueuedMessageModel{}, "lease_expires_at")
			},
		},
	})

	return m.Migrate()
}
