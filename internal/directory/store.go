// Package directory is the supplier directory: a persistent supplier
// table with its reviews, the per-role profiles behind sessions and an
// in-process change feed that tells live views when to re-rank.
package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // SQLite driver

	"recommend-service/internal/recommend/model"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrUnknownBackend = errors.New("unknown directory backend")
	ErrClosed         = errors.New("directory closed")
	ErrMissingID      = errors.New("supplier without id")
)

const subscriberBuffer = 16

type Options struct {
	Backend Backend
	DSN     string
}

type entry struct {
	supplier  model.Supplier
	available bool
	updatedAt int64
}

type profileKey struct{ userID, role string }

// Store keeps suppliers, reviews and profiles in a SQL database, or in maps when
// the backend is BackendMemory.
type Store struct {
	db      *sql.DB
	backend Backend
	log     zerolog.Logger
	now     func() time.Time

	mu       sync.RWMutex
	mem      map[string]entry
	profiles map[profileKey]Profile
	reviews  map[string]Review // by order id
	closed   bool

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

// Open connects to the configured backend and creates the tables.
func Open(ctx context.Context, opt Options, log zerolog.Logger) (*Store, error) {
	s := &Store{
		backend: opt.Backend,
		log:     log.With().Str("component", "directory").Str("backend", string(opt.Backend)).Logger(),
		now:     time.Now,
		subs:    make(map[int]chan Event),
	}

	var err error
	switch opt.Backend {
	case BackendMemory:
		s.mem = make(map[string]entry)
		s.profiles = make(map[profileKey]Profile)
		s.reviews = make(map[string]Review)
		return s, nil

	case BackendSQLite:
		dsn := opt.DSN
		if dsn == "" {
			dsn = "data/suppliers.db"
		}
		if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
			if dir := filepath.Dir(dsn); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return nil, fmt.Errorf("create sqlite dir %q: %w", dir, err)
				}
			}
		}
		s.db, err = sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
		}
		// one writer; also keeps a :memory: database alive across calls
		s.db.SetMaxOpenConns(1)

	case BackendMySQL:
		cfg, perr := mysql.ParseDSN(opt.DSN)
		if perr != nil {
			return nil, fmt.Errorf("mysql dsn (user:password@tcp(host:port)/dbname): %w", perr)
		}
		cfg.ParseTime = true
		conn, cerr := mysql.NewConnector(cfg)
		if cerr != nil {
			return nil, fmt.Errorf("mysql connector: %w", cerr)
		}
		s.db = sql.OpenDB(conn)

	case BackendPostgres:
		s.db, err = sql.Open("pgx", opt.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgresql: %w", err)
		}

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opt.Backend)
	}

	if err := s.db.PingContext(ctx); err != nil {
		_ = s.db.Close()
		return nil, fmt.Errorf("connect %s: %w", opt.Backend, err)
	}
	for _, q := range createStatements(opt.Backend) {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			_ = s.db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}
	s.log.Debug().Msg("directory opened")
	return s, nil
}

func (s *Store) Backend() Backend { return s.backend }

// Close releases the database and closes every subscriber channel.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.subMu.Lock()
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	s.subMu.Unlock()

	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Upsert inserts or replaces suppliers by id and marks them in stock.
func (s *Store) Upsert(ctx context.Context, suppliers []model.Supplier) error {
	if len(suppliers) == 0 {
		return nil
	}
	ids := make([]string, 0, len(suppliers))
	for _, sp := range suppliers {
		if strings.TrimSpace(sp.ID) == "" {
			return ErrMissingID
		}
		ids = append(ids, sp.ID)
	}
	ts := s.now().UnixMilli()

	if s.db == nil {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return ErrClosed
		}
		for _, sp := range suppliers {
			s.mem[sp.ID] = entry{supplier: sp, available: true, updatedAt: ts}
		}
		s.mu.Unlock()
	} else {
		if err := s.upsertSQL(ctx, suppliers, ts); err != nil {
			return err
		}
	}

	s.publish(Event{Kind: EventUpsert, IDs: ids, At: time.UnixMilli(ts)})
	return nil
}

func (s *Store) upsertSQL(ctx context.Context, suppliers []model.Supplier, ts int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, upsertQuery(s.backend, "suppliers", supplierColumns, []string{"id"}))
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, sp := range suppliers {
		price, err := json.Marshal(sp.OriginalPrice)
		if err != nil {
			return fmt.Errorf("encode price of %s: %w", sp.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			sp.ID, sp.GroupID, sp.Name, sp.Product, sp.Price, string(price),
			sp.Location, sp.Latitude, sp.Longitude, sp.Rating,
			sp.DeliveryRadius, sp.DeliveryCharge, sp.Image,
			nullBool(sp.Verified), nullInt(sp.MemberYears),
			true, ts,
		)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", sp.ID, err)
		}
	}
	return tx.Commit()
}

// List returns in-stock suppliers ordered by name, then id.
func (s *Store) List(ctx context.Context) ([]model.Supplier, error) {
	if s.db == nil {
		s.mu.RLock()
		out := make([]model.Supplier, 0, len(s.mem))
		for _, e := range s.mem {
			if e.available {
				out = append(out, e.supplier)
			}
		}
		s.mu.RUnlock()
		sort.Slice(out, func(i, j int) bool {
			if out[i].Name != out[j].Name {
				return out[i].Name < out[j].Name
			}
			return out[i].ID < out[j].ID
		})
		return out, nil
	}

	q := fmt.Sprintf("SELECT %s FROM suppliers WHERE stock_available = %s ORDER BY name, id",
		strings.Join(supplierColumns[:15], ", "), ph(s.backend, 1))
	rows, err := s.db.QueryContext(ctx, q, true)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	out := []model.Supplier{}
	for rows.Next() {
		sp, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, rows.Err()
}

// Get returns one in-stock supplier.
func (s *Store) Get(ctx context.Context, id string) (model.Supplier, error) {
	if s.db == nil {
		s.mu.RLock()
		e, ok := s.mem[id]
		s.mu.RUnlock()
		if !ok || !e.available {
			return model.Supplier{}, ErrNotFound
		}
		return e.supplier, nil
	}

	q := fmt.Sprintf("SELECT %s FROM suppliers WHERE id = %s AND stock_available = %s",
		strings.Join(supplierColumns[:15], ", "), ph(s.backend, 1), ph(s.backend, 2))
	sp, err := scanSupplier(s.db.QueryRowContext(ctx, q, id, true))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Supplier{}, ErrNotFound
	}
	return sp, err
}

// Delete marks a supplier out of stock. The row stays for history.
func (s *Store) Delete(ctx context.Context, id string) error {
	ts := s.now().UnixMilli()

	if s.db == nil {
		s.mu.Lock()
		e, ok := s.mem[id]
		if !ok || !e.available {
			s.mu.Unlock()
			return ErrNotFound
		}
		e.available = false
		e.updatedAt = ts
		s.mem[id] = e
		s.mu.Unlock()
	} else {
		q := fmt.Sprintf("UPDATE suppliers SET stock_available = %s, updated_at = %s WHERE id = %s AND stock_available = %s",
			ph(s.backend, 1), ph(s.backend, 2), ph(s.backend, 3), ph(s.backend, 4))
		res, err := s.db.ExecContext(ctx, q, false, ts, id, true)
		if err != nil {
			return fmt.Errorf("delete %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return ErrNotFound
		}
	}

	s.publish(Event{Kind: EventDelete, IDs: []string{id}, At: time.UnixMilli(ts)})
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSupplier(sc scanner) (model.Supplier, error) {
	var (
		sp       model.Supplier
		price    string
		verified sql.NullBool
		years    sql.NullInt64
	)
	err := sc.Scan(
		&sp.ID, &sp.GroupID, &sp.Name, &sp.Product, &sp.Price, &price,
		&sp.Location, &sp.Latitude, &sp.Longitude, &sp.Rating,
		&sp.DeliveryRadius, &sp.DeliveryCharge, &sp.Image,
		&verified, &years,
	)
	if err != nil {
		return model.Supplier{}, err
	}
	if price != "" {
		if err := json.Unmarshal([]byte(price), &sp.OriginalPrice); err != nil {
			return model.Supplier{}, fmt.Errorf("decode price of %s: %w", sp.ID, err)
		}
	}
	if verified.Valid {
		v := verified.Bool
		sp.Verified = &v
	}
	if years.Valid {
		y := int(years.Int64)
		sp.MemberYears = &y
	}
	return sp, nil
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func nullInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
