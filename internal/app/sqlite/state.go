package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
)

// NewState creates a new instance of the group state repository.
func NewState(db *sql.DB) State {
	return State{db: db}
}

// State keeps the latest state record of every group.
type State struct {
	db *sql.DB
}

// FindAll returns the records of all groups.
func (r State) FindAll(ctx context.Context) ([]app.StateRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT record FROM group_states ORDER BY group_id`)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "sqlite.State.FindAll.Query"})
	}
	defer rows.Close()
	res := make([]app.StateRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errors.WrapContext(err, errors.Context{Path: "sqlite.State.FindAll.scanRecord"})
		}
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "sqlite.State.FindAll.Err"})
	}
	return res, nil
}

// FindByGroup returns the record of the group.
func (r State) FindByGroup(ctx context.Context, id app.GroupID) (app.StateRecord, error) {
	row := r.db.QueryRowContext(ctx, `SELECT record FROM group_states WHERE group_id = ?`, string(id))
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		err = errtype.ErrNotFound
	}
	if err != nil {
		return app.StateRecord{}, errors.WrapContext(err, errors.Context{
			Path:   "sqlite.State.FindByGroup.scanRecord",
			Params: errors.Params{"group": id},
		})
	}
	return rec, nil
}

// Save creates or replaces the record of the group.
func (r State) Save(ctx context.Context, rec app.StateRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "sqlite.State.Save.Marshal", Params: errors.Params{"group": rec.GroupID}})
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO group_states (group_id, state, requested_version, record, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (group_id) DO UPDATE SET
			state = excluded.state,
			requested_version = excluded.requested_version,
			record = excluded.record,
			updated_at = excluded.updated_at`,
		string(rec.GroupID), string(rec.State), rec.RequestedVersion, string(data), rec.UpdatedAt.UTC(),
	)
	if err != nil {
		return errors.WrapContext(err, errors.Context{
			Path:   "sqlite.State.Save.Exec",
			Params: errors.Params{"group": rec.GroupID, "state": rec.State},
		})
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (app.StateRecord, error) {
	var (
		data string
		rec  app.StateRecord
	)
	if err := s.Scan(&data); err != nil {
		return rec, err
	}
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return rec, errors.WrapContext(err, errors.Context{Path: "sqlite.scanRecord.Unmarshal"})
	}
	return rec, nil
}
