package source

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/matzehuels/floorview/pkg/errors"
	"github.com/matzehuels/floorview/pkg/floorplan"
	"github.com/matzehuels/floorview/pkg/floorplan/geom"
)

// Schema creates the tables read by [Postgres].
const Schema = `
CREATE TABLE IF NOT EXISTS floors (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS rooms (
	floor_id TEXT NOT NULL REFERENCES floors(id) ON DELETE CASCADE,
	id       TEXT NOT NULL,
	name     TEXT NOT NULL DEFAULT '',
	position INTEGER NOT NULL DEFAULT 0,
	x        DOUBLE PRECISION NOT NULL,
	y        DOUBLE PRECISION NOT NULL,
	width    DOUBLE PRECISION NOT NULL,
	height   DOUBLE PRECISION NOT NULL,
	light_on BOOLEAN NOT NULL DEFAULT FALSE,
	PRIMARY KEY (floor_id, id)
);`

const (
	selectFloor = `SELECT name FROM floors WHERE id = $1`
	selectRooms = `SELECT id, name, x, y, width, height, light_on FROM rooms WHERE floor_id = $1 ORDER BY position, id`
	selectIDs   = `SELECT id FROM floors ORDER BY id`
)

// Postgres reads floors and their rooms. Rooms are returned in position
// order, which is also the paint order.
type Postgres struct {
	db    *sql.DB
	owned bool
}

// OpenPostgres connects with dsn and checks the connection.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "open database")
	}
	db.SetMaxOpenConns(4)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping database")
	}
	return &Postgres{db: db, owned: true}, nil
}

// NewPostgres uses db. Close leaves it open.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Floor(ctx context.Context, id string) (*floorplan.Floor, error) {
	f := floorplan.Floor{ID: id}
	err := p.db.QueryRowContext(ctx, selectFloor, id).Scan(&f.Name)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "query floor %q", id)
	}

	rows, err := p.db.QueryContext(ctx, selectRooms, id)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "query rooms of %q", id)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			b floorplan.RoomBlock
			r geom.Rect
		)
		if err := rows.Scan(&b.ID, &b.Name, &r.X, &r.Y, &r.Width, &r.Height, &b.LightOn); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		b.Rect = r
		f.Blocks = append(f.Blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rooms: %w", err)
	}
	return &f, nil
}

func (p *Postgres) Floors(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, selectIDs)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list floors")
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan floor id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (p *Postgres) Close() error {
	if p.owned {
		return p.db.Close()
	}
	return nil
}
