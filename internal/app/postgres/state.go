package postgres

import (
	"context"
	"encoding/json"
	"github.com/beldeveloper/bluegreen/internal/app"
	"github.com/beldeveloper/bluegreen/internal/app/errtype"
	"github.com/beldeveloper/go-errors-context"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// NewState creates a new instance of the repository.
func NewState(conn *pgxpool.Pool) app.StateRepo {
	return State{conn: conn}
}

// State implements the group state repository.
type State struct {
	conn *pgxpool.Pool
}

// FindAll returns the records of all groups.
func (r State) FindAll(ctx context.Context) ([]app.StateRecord, error) {
	q := `SELECT "record" FROM "group_states" ORDER BY "group_id"`
	rows, err := r.conn.Query(ctx, q)
	if err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "postgres.State.FindAll.Query"})
	}
	defer rows.Close()
	res := make([]app.StateRecord, 0)
	var data []byte
	for rows.Next() {
		err = rows.Scan(&data)
		if err != nil {
			return nil, errors.WrapContext(err, errors.Context{Path: "postgres.State.FindAll.Scan"})
		}
		var rec app.StateRecord
		if err = json.Unmarshal(data, &rec); err != nil {
			return nil, errors.WrapContext(err, errors.Context{Path: "postgres.State.FindAll.Unmarshal"})
		}
		res = append(res, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.WrapContext(err, errors.Context{Path: "postgres.State.FindAll.Err"})
	}
	return res, nil
}

// FindByGroup returns the record of the group.
func (r State) FindByGroup(ctx context.Context, id app.GroupID) (app.StateRecord, error) {
	var (
		data []byte
		rec  app.StateRecord
	)
	q := `SELECT "record" FROM "group_states" WHERE "group_id" = $1`
	err := r.conn.QueryRow(ctx, q, string(id)).Scan(&data)
	if err == pgx.ErrNoRows {
		return rec, errors.WrapContext(errtype.ErrNotFound, errors.Context{
			Path:   "postgres.State.FindByGroup.Scan",
			Params: errors.Params{"group": id},
		})
	}
	if err != nil {
		return rec, errors.WrapContext(err, errors.Context{
			Path:   "postgres.State.FindByGroup.Scan",
			Params: errors.Params{"group": id},
		})
	}
	if err = json.Unmarshal(data, &rec); err != nil {
		return rec, errors.WrapContext(err, errors.Context{
			Path:   "postgres.State.FindByGroup.Unmarshal",
			Params: errors.Params{"group": id},
		})
	}
	return rec, nil
}

// Save creates or replaces the record of the group.
func (r State) Save(ctx context.Context, rec app.StateRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.WrapContext(err, errors.Context{Path: "postgres.State.Save.Marshal", Params: errors.Params{"group": rec.GroupID}})
	}
	q := `INSERT INTO "group_states" ("group_id", "state", "requested_version", "record", "updated_at")
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT ("group_id") DO UPDATE SET
			"state" = EXCLUDED."state",
			"requested_version" = EXCLUDED."requested_version",
			"record" = EXCLUDED."record",
			"updated_at" = EXCLUDED."updated_at"`
	_, err = r.conn.Exec(ctx, q, string(rec.GroupID), string(rec.State), rec.RequestedVersion, string(data), rec.UpdatedAt)
	if err != nil {
		return errors.WrapContext(err, errors.Context{
			Path:   "postgres.State.Save.Exec",
			Params: errors.Params{"group": rec.GroupID, "state": rec.State},
		})
	}
	return nil
}
