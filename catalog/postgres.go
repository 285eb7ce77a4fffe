package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/diegoalsls/serverless-architecture-smes-analytics/storage"
	"github.com/diegoalsls/serverless-architecture-smes-analytics/table"
)

// PostgresService backs the catalog with a Postgres schema per
// database and a registry table of crawlers. Starting a crawler loads
// every CSV under the dataset prefix into a text-typed table named
// after the dataset, replacing prior contents.
type PostgresService struct {
	pool  *pgxpool.Pool
	store storage.Store
	log   zerolog.Logger
}

// NewPostgresService builds the service over an existing pool.
func NewPostgresService(pool *pgxpool.Pool, store storage.Store, log zerolog.Logger) *PostgresService {
	return &PostgresService{pool: pool, store: store, log: log}
}

func (s *PostgresService) DatabaseExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.schemata WHERE schema_name = $1)`,
		name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query schemata: %w", err)
	}
	return exists, nil
}

func (s *PostgresService) EnsureDatabase(ctx context.Context, name string) error {
	if _, err := s.pool.Exec(ctx, `CREATE SCHEMA IF NOT EXISTS `+quoteIdent(name)); err != nil {
		return fmt.Errorf("create schema %s: %w", name, err)
	}
	_, err := s.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+quoteIdent(name)+`.crawlers (
		name text PRIMARY KEY,
		dataset text NOT NULL,
		bucket text NOT NULL,
		prefix text NOT NULL,
		delimiter text NOT NULL,
		state text NOT NULL DEFAULT 'READY'
	)`)
	if err != nil {
		return fmt.Errorf("create crawler registry: %w", err)
	}
	return nil
}

func (s *PostgresService) CrawlerExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+registry()+` WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		if isUndefinedTable(err) {
			return false, nil
		}
		return false, fmt.Errorf("query crawlers: %w", err)
	}
	return exists, nil
}

func (s *PostgresService) EnsureCrawler(ctx context.Context, name string, ds Dataset) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO `+registry()+` (name, dataset, bucket, prefix, delimiter)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE SET dataset = $2, bucket = $3, prefix = $4, delimiter = $5`,
		name, ds.Name, ds.Bucket, ds.Prefix, string(ds.Delimiter))
	if err != nil {
		return fmt.Errorf("register crawler %s: %w", name, err)
	}
	return nil
}

func (s *PostgresService) CrawlerState(ctx context.Context, name string) (CrawlerState, error) {
	var state string
	err := s.pool.QueryRow(ctx, `SELECT state FROM `+registry()+` WHERE name = $1`, name).Scan(&state)
	if err != nil {
		return "", fmt.Errorf("query crawler state %s: %w", name, err)
	}
	return CrawlerState(state), nil
}

// StartCrawler runs one crawl synchronously: the state flips to
// RUNNING for its duration and back to READY on success.
func (s *PostgresService) StartCrawler(ctx context.Context, name string) error {
	var dataset, bucket, prefix, delim string
	err := s.pool.QueryRow(ctx,
		`SELECT dataset, bucket, prefix, delimiter FROM `+registry()+` WHERE name = $1`, name).
		Scan(&dataset, &bucket, &prefix, &delim)
	if err != nil {
		return fmt.Errorf("lookup crawler %s: %w", name, err)
	}

	if _, err := s.pool.Exec(ctx, `UPDATE `+registry()+` SET state = 'RUNNING' WHERE name = $1`, name); err != nil {
		return fmt.Errorf("mark crawler running: %w", err)
	}
	if err := s.crawl(ctx, dataset, bucket, prefix, rune(delim[0])); err != nil {
		return fmt.Errorf("crawl %s: %w", dataset, err)
	}
	if _, err := s.pool.Exec(ctx, `UPDATE `+registry()+` SET state = 'READY' WHERE name = $1`, name); err != nil {
		return fmt.Errorf("mark crawler ready: %w", err)
	}
	return nil
}

func (s *PostgresService) crawl(ctx context.Context, dataset, bucket, prefix string, delimiter rune) error {
	infos, err := s.store.List(ctx, bucket, prefix)
	if err != nil {
		return fmt.Errorf("list %s: %w", prefix, err)
	}

	var frames []*table.Table
	for _, info := range infos {
		if !strings.HasSuffix(strings.ToLower(info.Key), ".csv") {
			continue
		}
		raw, err := s.store.Get(ctx, bucket, info.Key)
		if err != nil {
			return fmt.Errorf("get %s: %w", info.Key, err)
		}
		t, err := table.ReadCSV(raw, delimiter)
		if err != nil {
			return fmt.Errorf("parse %s: %w", info.Key, err)
		}
		frames = append(frames, t)
	}
	if len(frames) == 0 {
		s.log.Warn().Str("dataset", dataset).Str("prefix", prefix).Msg("crawl found no files")
		return nil
	}
	t := table.Concat(frames...)

	cols := columnIdents(t.Columns)

	target := quoteIdent(DatabaseName) + "." + quoteIdent(dataset)
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdent(c) + " text"
	}
	if _, err := s.pool.Exec(ctx, `DROP TABLE IF EXISTS `+target); err != nil {
		return fmt.Errorf("drop %s: %w", dataset, err)
	}
	if _, err := s.pool.Exec(ctx, `CREATE TABLE `+target+` (`+strings.Join(defs, ", ")+`)`); err != nil {
		return fmt.Errorf("create %s: %w", dataset, err)
	}

	rows := make([][]any, t.Len())
	for r := range t.Rows {
		row := make([]any, len(cols))
		for c := range cols {
			row[c] = t.Get(r, t.Columns[c])
		}
		rows[r] = row
	}
	copied, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{DatabaseName, dataset}, cols, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy into %s: %w", dataset, err)
	}
	s.log.Info().Str("dataset", dataset).Int64("rows", copied).Msg("crawl loaded")
	return nil
}

func registry() string {
	return quoteIdent(DatabaseName) + ".crawlers"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// columnIdents sanitizes every header and disambiguates clashes with a
// numeric suffix, probing until the candidate is unused so a source
// column literally named like an earlier suffix cannot collide either.
func columnIdents(headers []string) []string {
	cols := make([]string, len(headers))
	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		base := sanitizeIdent(h, i)
		ident := base
		for n := 2; seen[ident]; n++ {
			ident = fmt.Sprintf("%s_%d", base, n)
		}
		seen[ident] = true
		cols[i] = ident
	}
	return cols
}

// sanitizeIdent turns a CSV header into a usable column identifier:
// accents stripped, lowercased, runs of non-alphanumerics collapsed
// to underscores.
func sanitizeIdent(header string, pos int) string {
	h := table.RemoveAccents(strings.ToLower(strings.TrimSpace(header)))
	var b strings.Builder
	lastUnder := false
	for _, r := range h {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnder = false
		default:
			if !lastUnder && b.Len() > 0 {
				b.WriteByte('_')
				lastUnder = true
			}
		}
	}
	out := strings.TrimRight(b.String(), "_")
	if out == "" {
		return fmt.Sprintf("col_%d", pos)
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "c_" + out
	}
	return out
}

func isUndefinedTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "42P01")
}
