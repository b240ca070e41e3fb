package strata

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hlop3z/strata/internal/chain"
	"github.com/hlop3z/strata/internal/dialect"
	"github.com/hlop3z/strata/internal/introspect"
	"github.com/hlop3z/strata/internal/lock"
	"github.com/hlop3z/strata/internal/migrate"
	"github.com/hlop3z/strata/internal/reconcile"
	"github.com/hlop3z/strata/internal/trigger"
	"github.com/hlop3z/strata/internal/version"
)

// Client is the main entry point for the Strata migration engine.
//
// Create a new client with New() and close it with Close() when done.
//
// Example:
//
//	client, err := strata.New(
//	    strata.WithDatabaseURL("postgres://localhost/mydb"),
//	    strata.WithMigrationsDir("./migrations"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	result, err := client.RunPendingMigrations(strata.TargetLatest)
type Client struct {
	db         *sql.DB
	ownsDB     bool
	dialect    dialect.Dialect
	config     *Config
	runner     *migrate.Runner
	registered []migrate.Unit
	closed     bool
}

// TargetLatest applies every remaining unit.
const TargetLatest = migrate.TargetLatest

// New creates a new Client with the given options.
//
// At minimum, WithDatabaseURL or WithDB must be provided. The dialect is
// auto-detected from the URL if not explicitly set; injected connections
// must set it explicitly.
func New(opts ...Option) (*Client, error) {
	cfg := &Config{
		MigrationsDir: "./migrations",
		TriggersDir:   "./triggers",
		Schema:        "public",
		Timeout:       30 * time.Second,
		LockTimeout:   lock.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.DB == nil && cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}

	if cfg.Dialect == "" {
		if cfg.DB != nil {
			return nil, fmt.Errorf("%w: injected connections require WithDialect", ErrUnsupportedDialect)
		}
		cfg.Dialect = detectDialect(cfg.DatabaseURL)
	}

	d := dialect.Get(cfg.Dialect)
	if d == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDialect, cfg.Dialect)
	}

	db := cfg.DB
	ownsDB := false
	if db == nil {
		var err error
		db, err = openDatabase(cfg.DatabaseURL, d)
		if err != nil {
			return nil, fmt.Errorf("strata: failed to connect to %s: %w", redactURL(cfg.DatabaseURL), err)
		}
		ownsDB = true
	}

	runner := migrate.NewRunner(db, d)
	runner.AllowGap = cfg.AllowGap

	return &Client{
		db:      db,
		ownsDB:  ownsDB,
		dialect: d,
		config:  cfg,
		runner:  runner,
	}, nil
}

// Close releases the client's database connection.
// Injected connections are left open for their owner.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.ownsDB {
		return c.db.Close()
	}
	return nil
}

// DB exposes the underlying connection for collaborators that need
// direct store access during a migration window (e.g. ops tooling).
func (c *Client) DB() *sql.DB {
	return c.db
}

// Dialect returns the active dialect name.
func (c *Client) Dialect() string {
	return c.dialect.Name()
}

// RegisterUnit adds an imperative migration unit defined in Go.
// Registered units merge with the file-loaded sequence by token.
func (c *Client) RegisterUnit(u migrate.Unit) {
	c.registered = append(c.registered, u)
}

// Units loads the full ordered unit sequence: files plus registered.
func (c *Client) Units() ([]migrate.Unit, error) {
	fileUnits, err := migrate.LoadDir(c.config.MigrationsDir)
	if err != nil {
		return nil, err
	}
	return migrate.Merge(fileUnits, c.registered)
}

// RunPendingMigrations applies every unapplied unit up to target under
// the migration lock. target is TargetLatest or a version token.
// Any migration failure or lock timeout is returned, never swallowed.
func (c *Client) RunPendingMigrations(target string) (*migrate.RunResult, error) {
	if c.closed {
		return nil, ErrClosed
	}

	units, err := c.Units()
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.opCtx()
	defer cancel()

	var result *migrate.RunResult
	run := func(ctx context.Context) error {
		var err error
		result, err = c.runner.Run(ctx, units, target)
		return err
	}

	if c.config.SkipLock {
		err = run(ctx)
	} else {
		err = lock.WithMigrationLock(ctx, c.db, c.dialect, c.config.LockTimeout, run)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// CurrentSchemaVersion returns the highest applied version token, or ""
// when nothing has been applied (including before first use).
func (c *Client) CurrentSchemaVersion() (string, error) {
	if c.closed {
		return "", ErrClosed
	}

	ctx, cancel := c.opCtx()
	defer cancel()

	token, _, err := c.runner.Store().CurrentVersion(ctx)
	return token, err
}

// UnitStatus pairs a unit with whether it has been applied.
type UnitStatus struct {
	Token   string
	Name    string
	Applied bool
}

// MigrationStatus reports each known unit with its applied state.
func (c *Client) MigrationStatus() ([]UnitStatus, error) {
	if c.closed {
		return nil, ErrClosed
	}

	units, err := c.Units()
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.opCtx()
	defer cancel()

	applied, err := c.runner.Store().Applied(ctx)
	if err != nil {
		return nil, err
	}

	appliedSet := make(map[string]bool, len(applied))
	for _, rec := range applied {
		appliedSet[rec.Token] = true
	}

	statuses := make([]UnitStatus, len(units))
	for i, u := range units {
		statuses[i] = UnitStatus{
			Token:   u.Token,
			Name:    u.Name,
			Applied: appliedSet[u.Token],
		}
	}
	return statuses, nil
}

// History returns the applied records, oldest first.
func (c *Client) History() ([]version.Record, error) {
	if c.closed {
		return nil, ErrClosed
	}

	ctx, cancel := c.opCtx()
	defer cancel()

	return c.runner.Store().Applied(ctx)
}

// TriggerArtifactPath returns the conventional path of the raw SQL
// artifact for the active dialect: <triggers-dir>/<dialect>.sql.
func (c *Client) TriggerArtifactPath() string {
	return filepath.Join(c.config.TriggersDir, c.dialect.Name()+".sql")
}

// ValidateTriggerConsistency extracts trigger/function definitions from
// the dialect's artifact file and checks their column references against
// the live schema. A missing artifact file means there is nothing to
// validate and yields an empty list.
//
// Findings come back as values; callers decide whether they are warnings
// or hard failures.
func (c *Client) ValidateTriggerConsistency() ([]trigger.ValidationError, error) {
	if c.closed {
		return nil, ErrClosed
	}

	path := c.TriggerArtifactPath()
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	defs, err := trigger.ExtractTriggers(string(src), c.dialect.Name())
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.opCtx()
	defer cancel()

	ins := introspect.New(c.db, c.dialect)
	return trigger.Validate(ctx, defs, ins)
}

// VerifyResult reports chain integrity between the store and disk.
type VerifyResult struct {
	// AppliedRoot is the merkle root over the applied records.
	AppliedRoot string

	// UnitRoot is the merkle root over the on-disk units that correspond
	// to applied records.
	UnitRoot string

	// Diverged lists units whose recorded checksum no longer matches
	// the file on disk.
	Diverged []chain.Divergence
}

// Verify compares recorded unit checksums against the files on disk and
// reports any released unit that was edited or removed after applying.
func (c *Client) Verify() (*VerifyResult, error) {
	if c.closed {
		return nil, ErrClosed
	}

	units, err := c.Units()
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.opCtx()
	defer cancel()

	applied, err := c.runner.Store().Applied(ctx)
	if err != nil {
		return nil, err
	}

	appliedRoot, err := chain.Root(chain.AppliedEntries(applied))
	if err != nil {
		return nil, err
	}

	appliedUnits := units
	if len(units) > len(applied) {
		appliedUnits = units[:len(applied)]
	}
	unitRoot, err := chain.Root(chain.UnitEntries(appliedUnits))
	if err != nil {
		return nil, err
	}

	return &VerifyResult{
		AppliedRoot: appliedRoot,
		UnitRoot:    unitRoot,
		Diverged:    chain.Compare(applied, units),
	}, nil
}

// ReconcilePermissions re-grants schema access to the runtime principal
// after a destructive reset. A no-op when no runtime role is configured
// or the dialect has no privilege model.
func (c *Client) ReconcilePermissions() error {
	if c.closed {
		return ErrClosed
	}
	if c.config.RuntimeRole == "" {
		return nil
	}

	ctx, cancel := c.opCtx()
	defer cancel()

	r := reconcile.New(c.db, c.dialect)
	return r.ReconcileAfterReset(ctx, c.config.Schema, c.config.RuntimeRole)
}

func (c *Client) opCtx() (context.Context, context.CancelFunc) {
	timeout := c.config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// detectDialect infers the dialect from the connection URL shape.
func detectDialect(url string) string {
	url = strings.ToLower(url)

	switch {
	case strings.HasPrefix(url, "postgres://"),
		strings.HasPrefix(url, "postgresql://"):
		return "postgres"

	case strings.HasPrefix(url, "sqlite://"),
		strings.HasPrefix(url, "sqlite3://"),
		strings.HasPrefix(url, "file:"):
		return "sqlite"

	case strings.HasSuffix(url, ".db"),
		strings.HasSuffix(url, ".sqlite"),
		strings.HasSuffix(url, ".sqlite3"):
		return "sqlite"
	}

	// Default to postgres if no match
	return "postgres"
}

// openDatabase opens a database connection for the dialect.
func openDatabase(url string, d dialect.Dialect) (*sql.DB, error) {
	dsn := url
	if d.Name() == "sqlite" {
		dsn = convertSQLiteURL(url)
	}

	db, err := sql.Open(dialect.DriverName(d), dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// convertSQLiteURL converts a sqlite:// URL to a file path, or returns the path as-is.
func convertSQLiteURL(url string) string {
	url = strings.TrimPrefix(url, "sqlite://")
	url = strings.TrimPrefix(url, "sqlite3://")
	return url
}

// redactURL hides the password portion of a connection URL for display.
func redactURL(url string) string {
	start := strings.Index(url, "://")
	if start == -1 {
		return url
	}
	start += 3

	end := strings.Index(url[start:], "@")
	if end == -1 {
		return url
	}
	end += start

	credentials := url[start:end]
	if colonIdx := strings.Index(credentials, ":"); colonIdx != -1 {
		user := credentials[:colonIdx]
		return url[:start] + user + ":***@" + url[end+1:]
	}

	return url
}
