// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus persists the article corpus in SQLite and exposes the
// read-only accessors the query pipeline consumes: full scans, id lookups,
// keyword search, and the entity dictionary.
package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/scholar-search/pkg/types"
)

// Store manages the corpus SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the corpus database at cfg.DBPath and creates
// the schema if it does not exist.
func NewStore(cfg types.StorageConfig) (*Store, error) {
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = filepath.Join("data", "corpus.db")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			id TEXT PRIMARY KEY,
			title TEXT,
			abstract TEXT,
			year INTEGER,
			publication_name TEXT,
			doi TEXT,
			keywords TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS authors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_author_id TEXT UNIQUE,
			full_name TEXT NOT NULL,
			orcid TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS affiliations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_affiliation_id TEXT UNIQUE,
			institution_name TEXT NOT NULL,
			country TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS article_authors (
			article_id TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			author_id INTEGER NOT NULL REFERENCES authors(id) ON DELETE CASCADE,
			PRIMARY KEY (article_id, author_id)
		)`,
		`CREATE TABLE IF NOT EXISTS article_affiliations (
			article_id TEXT NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			affiliation_id INTEGER NOT NULL REFERENCES affiliations(id) ON DELETE CASCADE,
			PRIMARY KEY (article_id, affiliation_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_article_authors_article ON article_authors(article_id)`,
		`CREATE INDEX IF NOT EXISTS idx_article_affiliations_article ON article_affiliations(article_id)`,
		`CREATE INDEX IF NOT EXISTS idx_articles_year ON articles(year)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table over the searchable text fields, kept in sync
	// with triggers. Backs the relational keyword fallback path.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='articles_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE articles_fts USING fts5(title, abstract, keywords, content=articles, content_rowid=rowid)`,
			`CREATE TRIGGER articles_ai AFTER INSERT ON articles BEGIN
				INSERT INTO articles_fts(rowid, title, abstract, keywords)
				VALUES (new.rowid, new.title, new.abstract, new.keywords);
			END`,
			`CREATE TRIGGER articles_ad AFTER DELETE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title, abstract, keywords)
				VALUES('delete', old.rowid, old.title, old.abstract, old.keywords);
			END`,
			`CREATE TRIGGER articles_au AFTER UPDATE ON articles BEGIN
				INSERT INTO articles_fts(articles_fts, rowid, title, abstract, keywords)
				VALUES('delete', old.rowid, old.title, old.abstract, old.keywords);
				INSERT INTO articles_fts(rowid, title, abstract, keywords)
				VALUES (new.rowid, new.title, new.abstract, new.keywords);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// ErrNotFound is returned by ArticleByID for an unknown article id.
var ErrNotFound = fmt.Errorf("article not found")

// ArticleByID fetches a single article with its authors and affiliations.
func (s *Store) ArticleByID(ctx context.Context, id string) (types.Article, error) {
	articles, err := s.articlesWhere(ctx, `WHERE a.id = ?`, id)
	if err != nil {
		return types.Article{}, err
	}
	if len(articles) == 0 {
		return types.Article{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return articles[0], nil
}

// ArticlesByIDs fetches the given articles, keyed by id. Unknown ids are
// simply absent from the result; the caller decides whether that is an
// integrity problem.
func (s *Store) ArticlesByIDs(ctx context.Context, ids []string) (map[string]types.Article, error) {
	if len(ids) == 0 {
		return map[string]types.Article{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	articles, err := s.articlesWhere(ctx, `WHERE a.id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]types.Article, len(articles))
	for _, a := range articles {
		byID[a.ID] = a
	}
	return byID, nil
}

// FetchAll returns every article in the corpus ordered by id. Used by the
// offline index builder.
func (s *Store) FetchAll(ctx context.Context) ([]types.Article, error) {
	return s.articlesWhere(ctx, ``)
}

// Count returns the number of articles in the corpus.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM articles`).Scan(&n)
	return n, err
}

// KeywordSearch runs FTS5 full-text matching over title, abstract, and
// keywords and returns matching article ids in relevance order. Tokens are
// OR-combined so partial matches still surface. Returns no error for a
// query that produces no usable tokens, just an empty result.
func (s *Store) KeywordSearch(ctx context.Context, text string, limit int) ([]string, error) {
	tokens := strings.Fields(Normalize(text))
	if len(tokens) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	// Quote tokens so FTS5 operators in user text cannot break the match
	// expression.
	quoted := make([]string, len(tokens))
	for i, tok := range tokens {
		quoted[i] = `"` + tok + `"`
	}
	match := strings.Join(quoted, " OR ")

	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id FROM articles_fts
		 JOIN articles a ON a.rowid = articles_fts.rowid
		 WHERE articles_fts MATCH ?
		 ORDER BY articles_fts.rank
		 LIMIT ?`, match, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning keyword match: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// articlesWhere fetches articles matching the WHERE clause and hydrates
// their author and affiliation lists with two follow-up queries.
func (s *Store) articlesWhere(ctx context.Context, where string, args ...any) ([]types.Article, error) {
	query := `SELECT a.id, a.title, a.abstract, a.year, a.publication_name, a.doi, a.keywords
		FROM articles a ` + where + ` ORDER BY a.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying articles: %w", err)
	}
	defer rows.Close()

	var articles []types.Article
	index := make(map[string]int)
	for rows.Next() {
		var (
			a        types.Article
			keywords sql.NullString
			pubName  sql.NullString
			doi      sql.NullString
			year     sql.NullInt64
		)
		if err := rows.Scan(&a.ID, &a.Title, &a.Abstract, &year, &pubName, &doi, &keywords); err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		a.Year = int(year.Int64)
		a.PublicationName = pubName.String
		a.DOI = doi.String
		a.Keywords = splitKeywords(keywords.String)
		index[a.ID] = len(articles)
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, nil
	}

	ids := make([]string, len(articles))
	inArgs := make([]any, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
		inArgs[i] = a.ID
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	authorRows, err := s.db.QueryContext(ctx,
		`SELECT aa.article_id, au.full_name
		 FROM article_authors aa JOIN authors au ON au.id = aa.author_id
		 WHERE aa.article_id IN (`+placeholders+`)
		 ORDER BY aa.rowid`, inArgs...)
	if err != nil {
		return nil, fmt.Errorf("querying authors: %w", err)
	}
	defer authorRows.Close()
	for authorRows.Next() {
		var articleID, name string
		if err := authorRows.Scan(&articleID, &name); err != nil {
			return nil, fmt.Errorf("scanning author: %w", err)
		}
		if i, ok := index[articleID]; ok {
			articles[i].Authors = append(articles[i].Authors, name)
		}
	}
	if err := authorRows.Err(); err != nil {
		return nil, err
	}

	affilRows, err := s.db.QueryContext(ctx,
		`SELECT af.article_id, f.institution_name, f.country
		 FROM article_affiliations af JOIN affiliations f ON f.id = af.affiliation_id
		 WHERE af.article_id IN (`+placeholders+`)
		 ORDER BY af.rowid`, inArgs...)
	if err != nil {
		return nil, fmt.Errorf("querying affiliations: %w", err)
	}
	defer affilRows.Close()
	for affilRows.Next() {
		var articleID, institution string
		var country sql.NullString
		if err := affilRows.Scan(&articleID, &institution, &country); err != nil {
			return nil, fmt.Errorf("scanning affiliation: %w", err)
		}
		if i, ok := index[articleID]; ok {
			articles[i].Institutions = append(articles[i].Institutions, institution)
			if country.String != "" {
				articles[i].Countries = appendUnique(articles[i].Countries, country.String)
			}
		}
	}
	return articles, affilRows.Err()
}

// splitKeywords splits the stored keyword column on the "; " separator.
func splitKeywords(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	var keywords []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			keywords = append(keywords, p)
		}
	}
	return keywords
}

func appendUnique(list []string, v string) []string {
	for _, have := range list {
		if have == v {
			return list
		}
	}
	return append(list, v)
}
