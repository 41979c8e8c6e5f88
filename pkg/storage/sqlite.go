package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jpfeil/hubsampler/pkg/core"
	"github.com/jpfeil/hubsampler/pkg/errors"
	"github.com/jpfeil/hubsampler/pkg/logging"
)

// SQLiteStorage persists trials in a SQLite database. Parameter maps,
// distributions, system attributes, and objective values are stored as
// JSON columns; every Storage call runs in its own transaction, which
// is the atomicity unit the core relies on.
type SQLiteStorage struct {
	db *sql.DB
}

// SQLiteConfig controls database tuning.
type SQLiteConfig struct {
	Path           string
	MaxConnections int
	EnableWAL      bool
}

// NewSQLiteStorage opens (and if needed initializes) a trial database.
func NewSQLiteStorage(config SQLiteConfig) (*SQLiteStorage, error) {
	if config.Path == "" {
		config.Path = "hubsampler_trials.db"
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if config.MaxConnections > 0 {
		db.SetMaxOpenConns(config.MaxConnections)
	} else {
		db.SetMaxOpenConns(10)
	}
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStorage{db: db}
	if err := s.initDB(); err != nil {
		db.Close()
		return nil, err
	}

	if config.EnableWAL {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		logging.GetLogger().Warn(context.Background(), "failed to set pragma: %v", err)
	}

	return s, nil
}

func (s *SQLiteStorage) initDB() error {
	query := `
	CREATE TABLE IF NOT EXISTS trials (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		study_id TEXT NOT NULL,
		number INTEGER NOT NULL,
		state INTEGER NOT NULL,
		params TEXT NOT NULL,
		distributions TEXT NOT NULL,
		system_attrs TEXT NOT NULL,
		objective_values TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_trials_study ON trials(study_id);
	CREATE INDEX IF NOT EXISTS idx_trials_study_state ON trials(study_id, state);
	`

	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteStorage) CreateTrial(studyID string) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, errors.Wrap(err, errors.StorageFailed, "failed to begin transaction")
	}
	defer tx.Rollback()

	var number int
	if err := tx.QueryRow(
		"SELECT COUNT(*) FROM trials WHERE study_id = ?", studyID,
	).Scan(&number); err != nil {
		return 0, errors.Wrap(err, errors.StorageFailed, "failed to count trials")
	}

	res, err := tx.Exec(
		`INSERT INTO trials (study_id, number, state, params, distributions, system_attrs, objective_values)
		 VALUES (?, ?, ?, '{}', '{}', '{}', 'null')`,
		studyID, number, int(core.TrialStateRunning),
	)
	if err != nil {
		return 0, errors.Wrap(err, errors.StorageFailed, "failed to insert trial")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, errors.StorageFailed, "failed to read trial id")
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, errors.StorageFailed, "failed to commit trial")
	}
	return int(id), nil
}

func (s *SQLiteStorage) GetTrial(trialID int) (*core.Trial, error) {
	row := s.db.QueryRow(
		`SELECT id, number, state, params, distributions, system_attrs, objective_values
		 FROM trials WHERE id = ?`, trialID,
	)
	t, err := scanTrial(row)
	if err == sql.ErrNoRows {
		return nil, errors.Newf(errors.TrialNotFound, "no trial with id %d", trialID)
	}
	return t, err
}

func (s *SQLiteStorage) GetTrials(studyID string, states ...core.TrialState) ([]*core.Trial, error) {
	query := `SELECT id, number, state, params, distributions, system_attrs, objective_values
		 FROM trials WHERE study_id = ?`
	args := []interface{}{studyID}
	if len(states) > 0 {
		query += " AND state IN (?" // at least one placeholder
		for range states[1:] {
			query += ", ?"
		}
		query += ")"
		for _, st := range states {
			args = append(args, int(st))
		}
	}
	query += " ORDER BY number"

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "failed to query trials")
	}
	defer rows.Close()

	var trials []*core.Trial
	for rows.Next() {
		t, err := scanTrial(rows)
		if err != nil {
			return nil, err
		}
		trials = append(trials, t)
	}
	return trials, rows.Err()
}

func (s *SQLiteStorage) SetTrialParam(trialID int, name string, value interface{}, dist core.Distribution) error {
	distJSON, err := core.MarshalDistribution(dist)
	if err != nil {
		return errors.Wrap(err, errors.InvalidInput, "failed to encode distribution")
	}

	return s.updateJSONColumns(trialID, func(params, dists, attrs map[string]json.RawMessage) error {
		valueJSON, err := json.Marshal(value)
		if err != nil {
			return errors.Wrap(err, errors.InvalidInput, "failed to encode parameter value")
		}
		params[name] = valueJSON
		dists[name] = distJSON
		return nil
	})
}

func (s *SQLiteStorage) SetTrialSystemAttr(trialID int, key string, value interface{}) error {
	return s.updateJSONColumns(trialID, func(params, dists, attrs map[string]json.RawMessage) error {
		valueJSON, err := json.Marshal(value)
		if err != nil {
			return errors.Wrap(err, errors.InvalidInput, "failed to encode attribute value")
		}
		attrs[key] = valueJSON
		return nil
	})
}

// updateJSONColumns performs a single read-modify-write of a trial's
// JSON columns inside one transaction.
func (s *SQLiteStorage) updateJSONColumns(trialID int, modify func(params, dists, attrs map[string]json.RawMessage) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to begin transaction")
	}
	defer tx.Rollback()

	var paramsRaw, distsRaw, attrsRaw string
	err = tx.QueryRow(
		"SELECT params, distributions, system_attrs FROM trials WHERE id = ?", trialID,
	).Scan(&paramsRaw, &distsRaw, &attrsRaw)
	if err == sql.ErrNoRows {
		return errors.Newf(errors.TrialNotFound, "no trial with id %d", trialID)
	}
	if err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to read trial")
	}

	params, err := decodeJSONMap(paramsRaw)
	if err != nil {
		return err
	}
	dists, err := decodeJSONMap(distsRaw)
	if err != nil {
		return err
	}
	attrs, err := decodeJSONMap(attrsRaw)
	if err != nil {
		return err
	}

	if err := modify(params, dists, attrs); err != nil {
		return err
	}

	paramsOut, _ := json.Marshal(params)
	distsOut, _ := json.Marshal(dists)
	attrsOut, _ := json.Marshal(attrs)
	if _, err := tx.Exec(
		"UPDATE trials SET params = ?, distributions = ?, system_attrs = ? WHERE id = ?",
		string(paramsOut), string(distsOut), string(attrsOut), trialID,
	); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to update trial")
	}
	return errors.Wrap(tx.Commit(), errors.StorageFailed, "failed to commit trial update")
}

func (s *SQLiteStorage) TellTrial(trialID int, state core.TrialState, values []float64) error {
	if !state.Finished() {
		return errors.New(errors.InvalidTrialState, "TellTrial requires a terminal state")
	}

	valuesJSON, err := json.Marshal(values)
	if err != nil {
		return errors.Wrap(err, errors.InvalidInput, "failed to encode objective values")
	}

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to begin transaction")
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRow("SELECT state FROM trials WHERE id = ?", trialID).Scan(&current)
	if err == sql.ErrNoRows {
		return errors.Newf(errors.TrialNotFound, "no trial with id %d", trialID)
	}
	if err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to read trial state")
	}
	if core.TrialState(current).Finished() {
		return errors.Newf(errors.InvalidTrialState, "trial %d is already finished", trialID)
	}

	if _, err := tx.Exec(
		"UPDATE trials SET state = ?, objective_values = ? WHERE id = ?",
		int(state), string(valuesJSON), trialID,
	); err != nil {
		return errors.Wrap(err, errors.StorageFailed, "failed to finish trial")
	}
	return errors.Wrap(tx.Commit(), errors.StorageFailed, "failed to commit trial finish")
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func decodeJSONMap(raw string) (map[string]json.RawMessage, error) {
	m := make(map[string]json.RawMessage)
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "corrupt JSON column")
	}
	return m, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrial(row rowScanner) (*core.Trial, error) {
	var (
		id, number, state             int
		paramsRaw, distsRaw, attrsRaw string
		valuesRaw                     string
	)
	if err := row.Scan(&id, &number, &state, &paramsRaw, &distsRaw, &attrsRaw, &valuesRaw); err != nil {
		return nil, err
	}

	t := &core.Trial{
		ID:            id,
		Number:        number,
		State:         core.TrialState(state),
		Params:        make(map[string]interface{}),
		Distributions: make(core.SearchSpace),
		SystemAttrs:   make(map[string]interface{}),
	}

	if err := json.Unmarshal([]byte(paramsRaw), &t.Params); err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "corrupt params column")
	}
	if err := json.Unmarshal([]byte(attrsRaw), &t.SystemAttrs); err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "corrupt system_attrs column")
	}
	if err := json.Unmarshal([]byte(valuesRaw), &t.Values); err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "corrupt objective_values column")
	}

	dists := make(map[string]json.RawMessage)
	if err := json.Unmarshal([]byte(distsRaw), &dists); err != nil {
		return nil, errors.Wrap(err, errors.StorageFailed, "corrupt distributions column")
	}
	for name, raw := range dists {
		dist, err := core.UnmarshalDistribution(raw)
		if err != nil {
			return nil, errors.Wrap(err, errors.StorageFailed, "corrupt distribution entry")
		}
		t.Distributions[name] = dist
	}

	return t, nil
}
