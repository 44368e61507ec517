package database

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// SupportsLastInsertId returns true if the driver supports LastInsertId()
	SupportsLastInsertId() bool

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// UpsertDailyStatsAdd returns the SQL that inserts a daily_stats row or
	// adds the new values onto the existing (child_id, date) row.
	// Placeholders: child_id, date, activities_completed, total_points, total_time_minutes.
	UpsertDailyStatsAdd() string

	// UpsertDailyStatsSet returns the SQL that inserts a daily_stats row or
	// overwrites the existing (child_id, date) row's totals. Same placeholders
	// as UpsertDailyStatsAdd. Used by recalculation, which must be idempotent.
	UpsertDailyStatsSet() string

	// UpsertWeeklyStatus returns the SQL that inserts or updates the
	// weekly_reimbursement_status row for (child_id, week_start_date).
	// Placeholders: child_id, week_start_date, can_reimburse, last_reimbursement_date.
	UpsertWeeklyStatus() string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders not inside quotes
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// Upsert statements shared by the dialects that speak ON CONFLICT
// (sqlite and postgres).
const onConflictDailyStatsAdd = `
	INSERT INTO daily_stats (child_id, date, activities_completed, total_points, total_time_minutes)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (child_id, date) DO UPDATE SET
		activities_completed = daily_stats.activities_completed + excluded.activities_completed,
		total_points = daily_stats.total_points + excluded.total_points,
		total_time_minutes = daily_stats.total_time_minutes + excluded.total_time_minutes
`

const onConflictDailyStatsSet = `
	INSERT INTO daily_stats (child_id, date, activities_completed, total_points, total_time_minutes)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (child_id, date) DO UPDATE SET
		activities_completed = excluded.activities_completed,
		total_points = excluded.total_points,
		total_time_minutes = excluded.total_time_minutes
`

const onConflictWeeklyStatus = `
	INSERT INTO weekly_reimbursement_status (child_id, week_start_date, can_reimburse, last_reimbursement_date)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (child_id, week_start_date) DO UPDATE SET
		can_reimburse = excluded.can_reimburse,
		last_reimbursement_date = excluded.last_reimbursement_date
`
