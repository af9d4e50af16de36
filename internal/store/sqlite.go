package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mpetrov/tempo/internal/models"

	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store using modernc.org/sqlite (pure Go, no CGO).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite only supports one concurrent writer. Limiting to a single
	// connection serializes all DB access through Go's connection pool,
	// preventing "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for concurrent reads
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	// Set busy timeout so concurrent writes wait instead of failing immediately
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// boolToInt converts a bool to 0 or 1 for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// newULID generates a new ULID string.
func newULID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// Migrate runs all embedded SQL migration files in order.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	_, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT (datetime('now'))
	)`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	// Sort by filename
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()

		// Check if already applied
		var count int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE filename = ?", name).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if count > 0 {
			continue
		}

		data, err := migrationsFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}

		if _, err := s.db.ExecContext(ctx, "INSERT INTO schema_migrations (filename) VALUES (?)", name); err != nil {
			return fmt.Errorf("record migration %s: %w", name, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Sessions ---

const sessionColumns = `id, activity_id, activity_name, category_id, category_name, routine_id, start_time, end_time, actual_duration_minutes, expected_duration_minutes, is_planned, source, is_running`

func (s *SQLiteStore) CreateSession(ctx context.Context, sess *models.Session) error {
	if sess.ID == "" {
		sess.ID = newULID()
	}
	if sess.StartTime.IsZero() {
		sess.StartTime = time.Now()
	}
	// Timestamps are stored in UTC so windowed comparisons behave.
	sess.StartTime = sess.StartTime.UTC()
	if sess.EndTime != nil {
		t := sess.EndTime.UTC()
		sess.EndTime = &t
	}
	sess.IsRunning = sess.EndTime == nil

	var actual sql.NullFloat64
	if sess.ActualDurationMinutes != nil {
		actual = sql.NullFloat64{Float64: *sess.ActualDurationMinutes, Valid: true}
	}
	var expected sql.NullInt64
	if sess.ExpectedDurationMinutes != nil {
		expected = sql.NullInt64{Int64: int64(*sess.ExpectedDurationMinutes), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, nullString(sess.ActivityID), sess.ActivityName,
		nullString(sess.CategoryID), sess.CategoryName, nullString(sess.RoutineID),
		sess.StartTime, sess.EndTime, actual, expected,
		boolToInt(sess.IsPlanned), string(sess.Source), boolToInt(sess.IsRunning),
	)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStore) StopSession(ctx context.Context, id string, end time.Time) (*models.Session, error) {
	sess, err := s.getRunningSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, nil // not running: a no-op by contract
	}

	end = end.UTC()
	minutes := end.Sub(sess.StartTime).Minutes()
	if minutes < 0 {
		minutes = 0
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE sessions SET end_time = ?, actual_duration_minutes = ?, is_running = 0 WHERE id = ?`,
		end, minutes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("stop session: %w", err)
	}

	sess.EndTime = &end
	sess.ActualDurationMinutes = &minutes
	sess.IsRunning = false
	return sess, nil
}

func (s *SQLiteStore) getRunningSession(ctx context.Context, id string) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ? AND is_running = 1`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get running session: %w", err)
	}
	return sess, nil
}

func (s *SQLiteStore) GetRunningSessions(ctx context.Context) ([]*models.Session, error) {
	return s.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE is_running = 1 ORDER BY start_time`)
}

func (s *SQLiteStore) GetSessionsForRoutine(ctx context.Context, routineID string, since time.Time) ([]*models.Session, error) {
	return s.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE routine_id = ? AND start_time >= ? ORDER BY start_time`,
		routineID, since.UTC())
}

func (s *SQLiteStore) ListSessions(ctx context.Context, filter SessionFilter) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var conditions []string
	var args []any

	if filter.ActivityID != "" {
		conditions = append(conditions, "activity_id = ?")
		args = append(args, filter.ActivityID)
	}
	if filter.RoutineID != "" {
		conditions = append(conditions, "routine_id = ?")
		args = append(args, filter.RoutineID)
	}
	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, string(filter.Source))
	}
	if filter.From != nil {
		conditions = append(conditions, "start_time >= ?")
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		conditions = append(conditions, "start_time < ?")
		args = append(args, filter.To.UTC())
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY start_time DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	return s.querySessions(ctx, query, args...)
}

func (s *SQLiteStore) querySessions(ctx context.Context, query string, args ...any) ([]*models.Session, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*models.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*models.Session, error) {
	sess := &models.Session{}
	var activityID, categoryID, routineID sql.NullString
	var endTime sql.NullTime
	var actual sql.NullFloat64
	var expected sql.NullInt64
	var isPlanned, isRunning int
	var source string

	err := row.Scan(&sess.ID, &activityID, &sess.ActivityName,
		&categoryID, &sess.CategoryName, &routineID,
		&sess.StartTime, &endTime, &actual, &expected,
		&isPlanned, &source, &isRunning)
	if err != nil {
		return nil, err
	}

	sess.ActivityID = activityID.String
	sess.CategoryID = categoryID.String
	sess.RoutineID = routineID.String
	if endTime.Valid {
		t := endTime.Time
		sess.EndTime = &t
	}
	if actual.Valid {
		v := actual.Float64
		sess.ActualDurationMinutes = &v
	}
	if expected.Valid {
		v := int(expected.Int64)
		sess.ExpectedDurationMinutes = &v
	}
	sess.IsPlanned = isPlanned == 1
	sess.IsRunning = isRunning == 1
	sess.Source = models.SessionSource(source)
	return sess, nil
}

// nullString maps "" to NULL so foreign-key-ish columns stay clean.
func nullString(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// --- Activities ---

func (s *SQLiteStore) CreateActivity(ctx context.Context, a *models.Activity) error {
	if a.ID == "" {
		a.ID = newULID()
	}
	a.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (id, name, category_id, default_expected_minutes, usage_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, nullString(a.CategoryID), a.DefaultExpectedMinutes, a.UsageCount, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create activity: %w", err)
	}
	return nil
}

const activityColumns = `a.id, a.name, a.category_id, a.default_expected_minutes, a.usage_count, a.created_at, c.name, c.color`

func (s *SQLiteStore) GetActivity(ctx context.Context, id string) (*models.Activity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activities a
		LEFT JOIN categories c ON c.id = a.category_id
		WHERE a.id = ?`, id)
	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("activity not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get activity: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) GetActivityByName(ctx context.Context, name string) (*models.Activity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+activityColumns+` FROM activities a
		LEFT JOIN categories c ON c.id = a.category_id
		WHERE a.name = ? COLLATE NOCASE`, name)
	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("activity not found: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("get activity by name: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) ListActivities(ctx context.Context) ([]*models.Activity, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+activityColumns+` FROM activities a
		LEFT JOIN categories c ON c.id = a.category_id
		ORDER BY a.name`)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var activities []*models.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

func (s *SQLiteStore) IncrementActivityUsage(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE activities SET usage_count = usage_count + 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("increment activity usage: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("activity not found: %s", id)
	}
	return nil
}

func scanActivity(row rowScanner) (*models.Activity, error) {
	a := &models.Activity{}
	var categoryID, categoryName, categoryColor sql.NullString
	err := row.Scan(&a.ID, &a.Name, &categoryID, &a.DefaultExpectedMinutes, &a.UsageCount, &a.CreatedAt, &categoryName, &categoryColor)
	if err != nil {
		return nil, err
	}
	a.CategoryID = categoryID.String
	a.CategoryName = categoryName.String
	a.CategoryColor = categoryColor.String
	return a, nil
}

// --- Categories ---

func (s *SQLiteStore) CreateCategory(ctx context.Context, c *models.Category) error {
	if c.ID == "" {
		c.ID = newULID()
	}
	c.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, color, created_at) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Color, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	c := &models.Category{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, color, created_at FROM categories WHERE name = ? COLLATE NOCASE`, name,
	).Scan(&c.ID, &c.Name, &c.Color, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("category not found: %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("get category by name: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, color, created_at FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []*models.Category
	for rows.Next() {
		c := &models.Category{}
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// --- Routines ---

func (s *SQLiteStore) CreateRoutine(ctx context.Context, r *models.Routine) error {
	if r.ID == "" {
		r.ID = newULID()
	}
	if r.Type == "" {
		r.Type = models.RoutineTypeCustom
	}
	r.CreatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO routines (id, name, type, created_at) VALUES (?, ?, ?, ?)`,
		r.ID, r.Name, string(r.Type), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create routine: %w", err)
	}

	for i, item := range r.Items {
		if item.ID == "" {
			item.ID = newULID()
		}
		item.RoutineID = r.ID
		if item.DisplayOrder == 0 {
			item.DisplayOrder = i
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO routine_items (id, routine_id, activity_id, expected_duration_minutes, scheduled_time, display_order)
			VALUES (?, ?, ?, ?, ?, ?)`,
			item.ID, item.RoutineID, nullString(item.ActivityID),
			item.ExpectedDurationMinutes, item.ScheduledTime, item.DisplayOrder,
		)
		if err != nil {
			return fmt.Errorf("create routine item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRoutineWithItems(ctx context.Context, id string) (*models.Routine, error) {
	r := &models.Routine{}
	var rtype string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, created_at FROM routines WHERE id = ?`, id,
	).Scan(&r.ID, &r.Name, &rtype, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get routine: %w", err)
	}
	r.Type = models.RoutineType(rtype)

	rows, err := s.db.QueryContext(ctx,
		`SELECT i.id, i.routine_id, i.activity_id, i.expected_duration_minutes, i.scheduled_time, i.display_order,
			a.id, a.name, a.category_id, a.default_expected_minutes, a.usage_count, a.created_at, c.name, c.color
		FROM routine_items i
		LEFT JOIN activities a ON a.id = i.activity_id
		LEFT JOIN categories c ON c.id = a.category_id
		WHERE i.routine_id = ? ORDER BY i.display_order`, id)
	if err != nil {
		return nil, fmt.Errorf("get routine items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		item := &models.RoutineItem{}
		var itemActivityID sql.NullString
		var aID, aName, aCategoryID, cName, cColor sql.NullString
		var aDefault, aUsage sql.NullInt64
		var aCreated sql.NullTime

		if err := rows.Scan(&item.ID, &item.RoutineID, &itemActivityID,
			&item.ExpectedDurationMinutes, &item.ScheduledTime, &item.DisplayOrder,
			&aID, &aName, &aCategoryID, &aDefault, &aUsage, &aCreated, &cName, &cColor); err != nil {
			return nil, fmt.Errorf("scan routine item: %w", err)
		}

		item.ActivityID = itemActivityID.String
		if aID.Valid {
			item.Activity = &models.Activity{
				ID:                     aID.String,
				Name:                   aName.String,
				CategoryID:             aCategoryID.String,
				CategoryName:           cName.String,
				CategoryColor:          cColor.String,
				DefaultExpectedMinutes: int(aDefault.Int64),
				UsageCount:             int(aUsage.Int64),
				CreatedAt:              aCreated.Time,
			}
		}
		r.Items = append(r.Items, item)
	}
	return r, rows.Err()
}

func (s *SQLiteStore) GetRoutineByName(ctx context.Context, name string) (*models.Routine, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM routines WHERE name = ? COLLATE NOCASE`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get routine by name: %w", err)
	}
	return s.GetRoutineWithItems(ctx, id)
}

func (s *SQLiteStore) ListRoutines(ctx context.Context) ([]*models.Routine, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, type, created_at FROM routines ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var routines []*models.Routine
	for rows.Next() {
		r := &models.Routine{}
		var rtype string
		if err := rows.Scan(&r.ID, &r.Name, &rtype, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan routine: %w", err)
		}
		r.Type = models.RoutineType(rtype)
		routines = append(routines, r)
	}
	return routines, rows.Err()
}

func (s *SQLiteStore) DeleteRoutine(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM routines WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete routine: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("routine not found: %s", id)
	}
	return nil
}

// --- Settings ---

func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteSetting(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key)
	if err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	return nil
}

// --- Reminders ---

func (s *SQLiteStore) UpsertReminder(ctx context.Context, r *models.Reminder) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (session_id, label, fire_at, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET label = excluded.label, fire_at = excluded.fire_at`,
		r.SessionID, r.Label, r.FireAt.UTC(), r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert reminder: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DeleteReminder(ctx context.Context, sessionID string) error {
	// Deleting a reminder that was never scheduled is a no-op by contract.
	_, err := s.db.ExecContext(ctx, "DELETE FROM reminders WHERE session_id = ?", sessionID)
	if err != nil {
		return fmt.Errorf("delete reminder: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DueReminders(ctx context.Context, now time.Time) ([]*models.Reminder, error) {
	return s.queryReminders(ctx,
		"SELECT session_id, label, fire_at, created_at FROM reminders WHERE fire_at <= ? ORDER BY fire_at", now.UTC())
}

func (s *SQLiteStore) ListReminders(ctx context.Context) ([]*models.Reminder, error) {
	return s.queryReminders(ctx,
		"SELECT session_id, label, fire_at, created_at FROM reminders ORDER BY fire_at")
}

func (s *SQLiteStore) queryReminders(ctx context.Context, query string, args ...any) ([]*models.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var reminders []*models.Reminder
	for rows.Next() {
		r := &models.Reminder{}
		if err := rows.Scan(&r.SessionID, &r.Label, &r.FireAt, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}
		reminders = append(reminders, r)
	}
	return reminders, rows.Err()
}
