package main

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// RankingStore is a sorted name -> score table
type RankingStore interface {
	Increment(ctx context.Context, name string) error
	Remove(ctx context.Context, name string) error
	// TopN returns a flat [name, score, name, score, ...] list, best first
	TopN(ctx context.Context, n int) ([]interface{}, error)
}

// SQLiteRanking keeps the ranking in a SQLite database
type SQLiteRanking struct {
	conn *sql.DB
}

// OpenRanking opens (or creates) the ranking database
func OpenRanking(path string) (*SQLiteRanking, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ranking db: %w", err)
	}
	// single writer; also keeps ":memory:" databases on one connection
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}

	r := &SQLiteRanking{conn: conn}
	if err := r.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return r, nil
}

// Close closes the database connection
func (r *SQLiteRanking) Close() error {
	return r.conn.Close()
}

func (r *SQLiteRanking) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ranking (
		name TEXT PRIMARY KEY,
		score INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_ranking_score ON ranking(score DESC);
	`
	if _, err := r.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrate ranking: %w", err)
	}
	return nil
}

// Increment adds one point to name, creating the row on first score
func (r *SQLiteRanking) Increment(ctx context.Context, name string) error {
	_, err := r.conn.ExecContext(ctx, `
		INSERT INTO ranking (name, score) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET score = score + 1, updated_at = CURRENT_TIMESTAMP`, name)
	if err != nil {
		return fmt.Errorf("increment %q: %w", name, err)
	}
	return nil
}

// Remove deletes name from the ranking
func (r *SQLiteRanking) Remove(ctx context.Context, name string) error {
	if _, err := r.conn.ExecContext(ctx, `DELETE FROM ranking WHERE name = ?`, name); err != nil {
		return fmt.Errorf("remove %q: %w", name, err)
	}
	return nil
}

// TopN returns the n best scores as a flat name/score list
func (r *SQLiteRanking) TopN(ctx context.Context, n int) ([]interface{}, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT name, score FROM ranking ORDER BY score DESC, updated_at ASC, name ASC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query ranking: %w", err)
	}
	defer rows.Close()

	list := make([]interface{}, 0, 2*n)
	for rows.Next() {
		var name string
		var score int64
		if err := rows.Scan(&name, &score); err != nil {
			return nil, fmt.Errorf("scan ranking: %w", err)
		}
		list = append(list, name, score)
	}
	return list, rows.Err()
}

const (
	rankingQueueSize = 256
	rankingOpTimeout = 2 * time.Second
)

type rankingOp struct {
	name   string
	remove bool
}

// RankingWorker applies score changes off the tick goroutine and publishes
// the refreshed top list after every batch.
type RankingWorker struct {
	store RankingStore
	topN  int
	ops   chan rankingOp
	log   zerolog.Logger
	wg    sync.WaitGroup

	mu     sync.RWMutex
	latest []interface{}
}

// NewRankingWorker creates a worker over store; call Start to run it
func NewRankingWorker(store RankingStore, topN int, log zerolog.Logger) *RankingWorker {
	return &RankingWorker{
		store: store,
		topN:  topN,
		ops:   make(chan rankingOp, rankingQueueSize),
		log:   log.With().Str("component", "ranking").Logger(),
	}
}

// Increment enqueues a point for name (non-blocking)
func (w *RankingWorker) Increment(name string) {
	w.enqueue(rankingOp{name: name})
}

// Remove enqueues the removal of name (non-blocking)
func (w *RankingWorker) Remove(name string) {
	w.enqueue(rankingOp{name: name, remove: true})
}

func (w *RankingWorker) enqueue(op rankingOp) {
	select {
	case w.ops <- op:
	default:
		// queue full, drop rather than block the game loop
		rankingDropped.Inc()
	}
}

// Latest returns the last published list, nil before the first refresh
func (w *RankingWorker) Latest() []interface{} {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.latest
}

// Start loads the initial list and processes updates until ctx is done
func (w *RankingWorker) Start(ctx context.Context, publish func([]interface{})) {
	w.refresh(ctx, publish)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			select {
			case op := <-w.ops:
				w.apply(ctx, op)
				// drain whatever queued up meanwhile, then publish once
				for drained := false; !drained; {
					select {
					case op := <-w.ops:
						w.apply(ctx, op)
					default:
						drained = true
					}
				}
				w.refresh(ctx, publish)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Wait blocks until the worker goroutine has exited
func (w *RankingWorker) Wait() {
	w.wg.Wait()
}

func (w *RankingWorker) apply(ctx context.Context, op rankingOp) {
	ctx, cancel := context.WithTimeout(ctx, rankingOpTimeout)
	defer cancel()

	var err error
	if op.remove {
		err = w.store.Remove(ctx, op.name)
	} else {
		err = w.store.Increment(ctx, op.name)
	}
	if err != nil {
		w.log.Error().Err(err).Str("name", op.name).Bool("remove", op.remove).Msg("ranking update failed")
	}
}

func (w *RankingWorker) refresh(ctx context.Context, publish func([]interface{})) {
	ctx, cancel := context.WithTimeout(ctx, rankingOpTimeout)
	defer cancel()

	list, err := w.store.TopN(ctx, w.topN)
	if err != nil {
		w.log.Error().Err(err).Msg("ranking refresh failed")
		return
	}
	w.mu.Lock()
	w.latest = list
	w.mu.Unlock()
	if publish != nil {
		publish(list)
	}
}
