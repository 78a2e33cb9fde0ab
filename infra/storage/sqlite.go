package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/fleetops/fleetd/core/model"
	"github.com/fleetops/fleetd/core/store"
)

// SQLiteStore persists fleet records to a SQLite database. Records are
// stored as JSON alongside the scalar columns used for filtering.
type SQLiteStore struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS vehicles (
    id TEXT PRIMARY KEY,
    status TEXT NOT NULL,
    record TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS reports (
    id TEXT PRIMARY KEY,
    vehicle_id TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    record TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS reports_vehicle ON reports(vehicle_id);
CREATE TABLE IF NOT EXISTS activity_logs (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL,
    vehicle_id TEXT NOT NULL,
    ts INTEGER NOT NULL,
    record TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS activity_logs_vehicle ON activity_logs(vehicle_id);
`

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Vehicles() store.VehicleStore         { return (*sqliteVehicles)(s) }
func (s *SQLiteStore) Reports() store.ReportStore           { return (*sqliteReports)(s) }
func (s *SQLiteStore) ActivityLogs() store.ActivityLogStore { return (*sqliteLogs)(s) }

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, store.ErrUnavailable, err)
}

type sqliteVehicles SQLiteStore

func (s *sqliteVehicles) Insert(ctx context.Context, v model.Vehicle) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO vehicles (id, status, record) VALUES (?, ?, ?)`,
		v.ID, string(v.Status), string(b)); err != nil {
		return unavailable("insert vehicle", err)
	}
	return nil
}

func (s *sqliteVehicles) FindByID(ctx context.Context, id string) (model.Vehicle, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM vehicles WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Vehicle{}, store.ErrNotFound
	}
	if err != nil {
		return model.Vehicle{}, unavailable("find vehicle", err)
	}
	var v model.Vehicle
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return model.Vehicle{}, fmt.Errorf("unmarshal vehicle: %w", err)
	}
	return v, nil
}

func (s *sqliteVehicles) FindAll(ctx context.Context, f store.Filter) ([]model.Vehicle, error) {
	query := `SELECT record FROM vehicles`
	var args []any
	if f.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(f.Status))
	}
	query += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("list vehicles", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.Vehicle
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, unavailable("scan vehicle", err)
		}
		var v model.Vehicle
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, fmt.Errorf("unmarshal vehicle: %w", err)
		}
		res = append(res, v)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list vehicles", err)
	}
	return res, nil
}

func (s *sqliteVehicles) Update(ctx context.Context, v model.Vehicle) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE vehicles SET status = ?, record = ? WHERE id = ?`,
		string(v.Status), string(b), v.ID)
	if err != nil {
		return unavailable("update vehicle", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("update vehicle", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *sqliteVehicles) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
	if err != nil {
		return unavailable("delete vehicle", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable("delete vehicle", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

type sqliteReports SQLiteStore

func (s *sqliteReports) Insert(ctx context.Context, r model.Report) error {
	b, err := json.Marshal(r)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO reports (id, vehicle_id, created_at, record) VALUES (?, ?, ?, ?)`,
		r.ID, r.VehicleID, r.CreatedAt.UnixNano(), string(b)); err != nil {
		return unavailable("insert report", err)
	}
	return nil
}

func (s *sqliteReports) FindByVehicle(ctx context.Context, vehicleID string) ([]model.Report, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM reports WHERE vehicle_id = ? ORDER BY created_at`, vehicleID)
	if err != nil {
		return nil, unavailable("list reports", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.Report
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, unavailable("scan report", err)
		}
		var r model.Report
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			return nil, fmt.Errorf("unmarshal report: %w", err)
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list reports", err)
	}
	return res, nil
}

type sqliteLogs SQLiteStore

func (s *sqliteLogs) Append(ctx context.Context, e model.ActivityLogEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO activity_logs (id, vehicle_id, ts, record) VALUES (?, ?, ?, ?)`,
		e.ID, e.VehicleID, e.Timestamp.UnixNano(), string(b)); err != nil {
		return unavailable("append activity", err)
	}
	return nil
}

func (s *sqliteLogs) FindByVehicle(ctx context.Context, vehicleID string) ([]model.ActivityLogEntry, error) {
	// seq breaks timestamp ties in insertion order.
	rows, err := s.db.QueryContext(ctx,
		`SELECT record FROM activity_logs WHERE vehicle_id = ? ORDER BY ts, seq`, vehicleID)
	if err != nil {
		return nil, unavailable("list activity", err)
	}
	defer func() { _ = rows.Close() }()
	var res []model.ActivityLogEntry
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, unavailable("scan activity", err)
		}
		var e model.ActivityLogEntry
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			return nil, fmt.Errorf("unmarshal activity: %w", err)
		}
		res = append(res, e)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list activity", err)
	}
	return res, nil
}
