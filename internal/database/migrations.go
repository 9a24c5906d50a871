package database

import (
	"fmt"

	applog "github.com/yukikurage/project-dashboard-api/internal/logger"
	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns string
	unique  bool
	where   string
}

// Composite indexes that struct tags cannot express.
var indexes = []index{
	{table: "tasks", name: "idx_tasks_project_status", columns: "project_id, status"},
	{table: "tasks", name: "idx_tasks_assignee_status", columns: "assigned_to, status"},
	{table: "messages", name: "idx_messages_thread", columns: "from_user_id, to_user_id, timestamp"},
	{table: "notifications", name: "idx_notifications_user_read", columns: "user_id, read"},
	// Deduplicates reminders; notifications without a ref key are unconstrained.
	{table: "notifications", name: "idx_notifications_user_ref", columns: "user_id, ref_key", unique: true, where: "ref_key <> ''"},
}

// AddIndexes creates the composite indexes that do not exist yet.
func AddIndexes(db *gorm.DB) error {
	for _, idx := range indexes {
		var count int64
		err := db.Raw(
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND name = ?",
			idx.table, idx.name,
		).Scan(&count).Error
		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			applog.Debug("Index %s already exists, skipping", idx.name)
			continue
		}

		if err := db.Exec(idx.statement()).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		applog.Debug("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}

func (i index) statement() string {
	kind := "INDEX"
	if i.unique {
		kind = "UNIQUE INDEX"
	}
	sql := fmt.Sprintf("CREATE %s %s ON %s (%s)", kind, i.name, i.table, i.columns)
	if i.where != "" {
		sql += " WHERE " + i.where
	}
	return sql
}
