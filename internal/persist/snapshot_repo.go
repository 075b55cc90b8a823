package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// ErrNoSnapshot is returned by Latest when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// SnapshotRepo stores compressed world snapshots and keeps the most recent
// ones.
type SnapshotRepo struct {
	db   *DB
	keep int
}

// NewSnapshotRepo keeps at most keep snapshots; keep <= 0 keeps all.
func NewSnapshotRepo(db *DB, keep int) *SnapshotRepo {
	return &SnapshotRepo{db: db, keep: keep}
}

// Save writes snap and prunes older rows in one transaction.
func (r *SnapshotRepo) Save(ctx context.Context, snap Snapshot) error {
	body, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO world_snapshots (tick, taken_at, actor_count, body)
		 VALUES ($1, $2, $3, $4)`,
		int64(snap.Tick), snap.TakenAt, len(snap.Actors), body,
	); err != nil {
		return fmt.Errorf("snapshot insert: %w", err)
	}

	if r.keep > 0 {
		if _, err := tx.Exec(ctx,
			`DELETE FROM world_snapshots
			 WHERE id NOT IN (SELECT id FROM world_snapshots ORDER BY id DESC LIMIT $1)`,
			r.keep,
		); err != nil {
			return fmt.Errorf("snapshot prune: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Latest loads the most recently saved snapshot.
func (r *SnapshotRepo) Latest(ctx context.Context) (Snapshot, error) {
	var body []byte
	err := r.db.Pool.QueryRow(ctx,
		`SELECT body FROM world_snapshots ORDER BY id DESC LIMIT 1`,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return Snapshot{}, ErrNoSnapshot
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot latest: %w", err)
	}
	return DecodeSnapshot(body)
}

// Count returns the number of stored snapshots.
func (r *SnapshotRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM world_snapshots`).Scan(&n)
	return n, err
}
