package setup

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/phebueno/back-chat-uol/internal/domain"
)

// MigrateDB handles all database migrations using the provided GORM DB instance.
// participants 表用自定义 SQL 创建 (name 主键需要显式长度)，messages 走 AutoMigrate。
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}

	if err := migrateParticipantsTable(db); err != nil {
		return fmt.Errorf("failed to migrate participants table: %w", err)
	}

	if err := db.AutoMigrate(&domain.Message{}); err != nil {
		logrus.Errorf("Failed to auto-migrate messages table: %v", err)
		return fmt.Errorf("failed to auto-migrate messages table: %w", err)
	}

	logrus.Info("Database migration completed successfully")
	return nil
}

// migrateParticipantsTable 创建或校验 participants 表
func migrateParticipantsTable(db *gorm.DB) error {
	var count int64
	db.Raw("SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = 'participants'").Scan(&count)

	if count == 0 {
		return createParticipantsTable(db)
	}
	// 表已存在：让 AutoMigrate 对齐列和索引
	if err := db.AutoMigrate(&domain.Participant{}); err != nil {
		logrus.Errorf("Failed to auto-migrate participants table: %v", err)
		return fmt.Errorf("failed to migrate participant indexes: %w", err)
	}
	logrus.Info("Participants table schema checked/updated successfully")
	return nil
}

// createParticipantsTable 创建 participants 表。
// name 作为主键承担唯一性约束：并发同名 join 由它串行化。
// last_activity 用 DATETIME(3) 保留毫秒精度并建索引供清扫查询。
func createParticipantsTable(db *gorm.DB) error {
	sql := `
	CREATE TABLE participants (
		name VARCHAR(191) NOT NULL PRIMARY KEY,
		last_activity DATETIME(3) NOT NULL,
		created_at DATETIME(3),
		INDEX idx_last_activity (last_activity)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin;
	`
	if err := db.Exec(sql).Error; err != nil {
		logrus.Errorf("Failed to create participants table: %v", err)
		return fmt.Errorf("failed to create participants table: %w", err)
	}
	logrus.Info("Participants table created successfully")
	return nil
}
