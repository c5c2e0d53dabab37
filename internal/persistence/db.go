// Package persistence provides the SQLite journal: creature snapshots, the
// event log and plan outcomes. Plans are recorded for diagnostics only and
// are never restored.
package persistence

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/goap-creatures/internal/creature"
	"github.com/talgya/goap-creatures/internal/engine"
	"github.com/talgya/goap-creatures/internal/goap"
)

// Plan outcomes.
const (
	OutcomeActive      = "active"
	OutcomeCompleted   = "completed"
	OutcomeAbandoned   = "abandoned"
	OutcomeInvalidated = "invalidated" // A step's preconditions failed
	OutcomeSuperseded  = "superseded"  // Replaced by a newer plan
)

// DB wraps a SQLite connection for the journal.
type DB struct {
	conn *sqlx.DB
}

// PlanRecord is one adopted plan and how it ended.
type PlanRecord struct {
	PlanID    string         `json:"plan_id" db:"plan_id"`
	Creature  string         `json:"creature" db:"creature"`
	Goal      string         `json:"goal" db:"goal"`
	Actions   string         `json:"actions" db:"actions"`
	Cost      float64        `json:"cost" db:"cost"`
	AdoptedAt time.Duration  `json:"adopted_at" db:"adopted_at"`
	EndedAt   *time.Duration `json:"ended_at,omitempty" db:"ended_at"`
	Outcome   string         `json:"outcome" db:"outcome"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS creatures (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		pos_x REAL NOT NULL,
		pos_y REAL NOT NULL,
		pos_z REAL NOT NULL,
		hunger REAL NOT NULL,
		day_timer REAL NOT NULL,
		sleeping INTEGER NOT NULL,
		alive INTEGER NOT NULL,
		grabbed INTEGER NOT NULL,
		meals INTEGER NOT NULL,
		kills INTEGER NOT NULL,
		remembered INTEGER NOT NULL,
		goal TEXT,
		action TEXT,
		saved_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sim_time INTEGER NOT NULL,
		creature TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		goal TEXT NOT NULL,
		action TEXT NOT NULL,
		plan_id TEXT NOT NULL,
		cost REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS plans (
		plan_id TEXT PRIMARY KEY,
		creature TEXT NOT NULL,
		goal TEXT NOT NULL,
		actions TEXT NOT NULL,
		cost REAL NOT NULL,
		adopted_at INTEGER NOT NULL,
		ended_at INTEGER,
		outcome TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_time ON events(sim_time);
	CREATE INDEX IF NOT EXISTS idx_events_creature ON events(creature);
	CREATE INDEX IF NOT EXISTS idx_plans_creature ON plans(creature, outcome);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveCreatures writes all creature snapshots to the database (full replace).
func (db *DB) SaveCreatures(snaps []creature.Snapshot, at time.Duration) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM creatures"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO creatures
		(id, name, kind, pos_x, pos_y, pos_z, hunger, day_timer, sleeping, alive,
		 grabbed, meals, kills, remembered, goal, action, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range snaps {
		var goal, action string
		if c.Agent != nil {
			goal, action = string(c.Agent.Goal), string(c.Agent.Action)
		}
		_, err := stmt.Exec(
			c.ID.String(), c.Name, c.Kind,
			c.Position.X, c.Position.Y, c.Position.Z,
			c.Hunger, c.DayTimer, boolInt(c.Sleeping), boolInt(c.Alive),
			boolInt(c.Grabbed), c.Meals, c.Kills, c.Remembered,
			goal, action, int64(at),
		)
		if err != nil {
			return fmt.Errorf("insert creature %s: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// LoadCreatures returns the last saved snapshots. Positions and controller
// state are not part of the result.
func (db *DB) LoadCreatures() ([]creature.Snapshot, error) {
	var snaps []creature.Snapshot
	err := db.conn.Select(&snaps, `SELECT id, name, kind, hunger, day_timer, sleeping,
		alive, grabbed, meals, kills, remembered FROM creatures ORDER BY name`)
	return snaps, err
}

// SaveEvents appends events and folds plan events into the plans table.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(`INSERT INTO events
			(sim_time, creature, category, description, goal, action, plan_id, cost)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			int64(e.Time), e.Creature, e.Category, e.Description,
			e.Goal, e.Action, e.PlanID, e.Cost,
		)
		if err != nil {
			return err
		}
		if err := recordPlan(tx, e); err != nil {
			return fmt.Errorf("record plan %s: %w", e.PlanID, err)
		}
	}

	return tx.Commit()
}

func recordPlan(tx *sqlx.Tx, e engine.Event) error {
	if e.PlanID == "" {
		return nil
	}

	var outcome string
	switch goap.EventKind(e.Category) {
	case goap.EventPlanAdopted:
		if _, err := tx.Exec(`UPDATE plans SET outcome = ?, ended_at = ?
			WHERE creature = ? AND outcome = ? AND plan_id != ?`,
			OutcomeSuperseded, int64(e.Time), e.Creature, OutcomeActive, e.PlanID,
		); err != nil {
			return err
		}
		_, err := tx.Exec(`INSERT OR IGNORE INTO plans
			(plan_id, creature, goal, actions, cost, adopted_at, outcome)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.PlanID, e.Creature, e.Goal, strings.Join(e.Actions, " > "), e.Cost,
			int64(e.Time), OutcomeActive,
		)
		return err
	case goap.EventPlanCompleted:
		outcome = OutcomeCompleted
	case goap.EventGoalAbandoned:
		outcome = OutcomeAbandoned
	case goap.EventPreconditionsViolated:
		outcome = OutcomeInvalidated
	default:
		return nil
	}

	_, err := tx.Exec(`UPDATE plans SET outcome = ?, ended_at = ? WHERE plan_id = ? AND outcome = ?`,
		outcome, int64(e.Time), e.PlanID, OutcomeActive,
	)
	return err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveWorldState saves creature snapshots, flushes the simulation's pending
// events and records the current frame.
func (db *DB) SaveWorldState(sim *engine.Simulation, eng *engine.Engine) error {
	snaps := sim.Snapshot()
	events := sim.TakeJournal()
	slog.Info("saving world state", "creatures", len(snaps), "events", len(events))

	if err := db.SaveCreatures(snaps, eng.Now()); err != nil {
		return fmt.Errorf("save creatures: %w", err)
	}
	if err := db.SaveEvents(events); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("last_frame", strconv.FormatUint(eng.Frame(), 10)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	slog.Info("world state saved", "frame", eng.Frame())
	return nil
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		`SELECT sim_time, creature, category, description, goal, action, plan_id, cost
		FROM events ORDER BY id DESC LIMIT ?`,
		limit,
	)
	return events, err
}

// RecentPlans returns the most recently adopted N plans, newest first. An
// empty creature name matches every creature.
func (db *DB) RecentPlans(creatureName string, limit int) ([]PlanRecord, error) {
	var plans []PlanRecord
	err := db.conn.Select(&plans,
		`SELECT plan_id, creature, goal, actions, cost, adopted_at, ended_at, outcome
		FROM plans WHERE (? = '' OR creature = ?) ORDER BY adopted_at DESC, rowid DESC LIMIT ?`,
		creatureName, creatureName, limit,
	)
	return plans, err
}

// PlanOutcomes counts plans by outcome.
func (db *DB) PlanOutcomes() (map[string]int, error) {
	var rows []struct {
		Outcome string `db:"outcome"`
		N       int    `db:"n"`
	}
	if err := db.conn.Select(&rows, "SELECT outcome, COUNT(*) AS n FROM plans GROUP BY outcome"); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Outcome] = r.N
	}
	return out, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
