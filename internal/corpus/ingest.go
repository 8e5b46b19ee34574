// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RawRecord is one article as exported by the acquisition stage.
type RawRecord struct {
	ID              string           `json:"scopus_id"`
	Title           string           `json:"title"`
	Abstract        string           `json:"abstract"`
	CoverDate       string           `json:"cover_date"`
	PublicationName string           `json:"publication_name"`
	DOI             string           `json:"doi"`
	Keywords        string           `json:"keywords"`
	SubjectArea     string           `json:"subject_area"`
	Authors         []RawAuthor      `json:"authors"`
	Affiliations    []RawAffiliation `json:"affiliations"`
}

// RawAuthor is an author entry inside a raw record.
type RawAuthor struct {
	AuthorID      string `json:"author_id"`
	PreferredName string `json:"preferred_name"`
	Initials      string `json:"initials"`
	Surname       string `json:"surname"`
	ORCID         string `json:"orcid"`
}

// RawAffiliation is an affiliation entry inside a raw record.
type RawAffiliation struct {
	AffiliationID   string `json:"affiliation_id"`
	InstitutionName string `json:"institution_name"`
	Country         string `json:"country"`
}

// FullName returns the preferred name, falling back to initials + surname.
func (a RawAuthor) FullName() string {
	if a.PreferredName != "" {
		return a.PreferredName
	}
	return strings.TrimSpace(a.Initials + " " + a.Surname)
}

// IngestSummary holds counts from a corpus ingestion run.
type IngestSummary struct {
	Articles   int
	Duplicates int
	Failed     int
}

// Ingest reads a JSON array of raw records from r and populates the corpus
// tables, normalizing authors and affiliations into their own tables.
// Records sharing an id with an earlier record in the same run are skipped
// as duplicates; a record that fails to insert is reported on w and counted
// but does not abort the run.
func (s *Store) Ingest(ctx context.Context, r io.Reader, w io.Writer) (IngestSummary, error) {
	var records []RawRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return IngestSummary{}, fmt.Errorf("decoding raw records: %w", err)
	}
	if len(records) == 0 {
		return IngestSummary{}, fmt.Errorf("no records to ingest")
	}

	var summary IngestSummary
	seen := make(map[string]bool, len(records))

	for _, rec := range records {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if rec.ID == "" || seen[rec.ID] {
			summary.Duplicates++
			continue
		}
		seen[rec.ID] = true

		if err := s.ingestRecord(ctx, rec); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", rec.ID, err)
			summary.Failed++
			continue
		}
		summary.Articles++
	}

	fmt.Fprintf(w, "\ningested: %d, duplicates: %d, failed: %d\n",
		summary.Articles, summary.Duplicates, summary.Failed)
	return summary, nil
}

func (s *Store) ingestRecord(ctx context.Context, rec RawRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO articles (id, title, abstract, year, publication_name, doi, keywords)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, abstract=excluded.abstract, year=excluded.year,
			publication_name=excluded.publication_name, doi=excluded.doi,
			keywords=excluded.keywords`,
		rec.ID, rec.Title, rec.Abstract, yearFromCoverDate(rec.CoverDate),
		rec.PublicationName, rec.DOI, rec.Keywords,
	)
	if err != nil {
		return fmt.Errorf("upserting article: %w", err)
	}

	for _, author := range rec.Authors {
		name := author.FullName()
		if name == "" {
			continue
		}
		authorID, err := upsertEntity(ctx, tx,
			`INSERT INTO authors (source_author_id, full_name, orcid) VALUES (?, ?, ?)
			 ON CONFLICT(source_author_id) DO UPDATE SET full_name=excluded.full_name
			 RETURNING id`,
			`SELECT id FROM authors WHERE full_name = ? AND source_author_id IS NULL`,
			`INSERT INTO authors (full_name, orcid) VALUES (?, ?) RETURNING id`,
			author.AuthorID, name, author.ORCID)
		if err != nil {
			return fmt.Errorf("upserting author %q: %w", name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO article_authors (article_id, author_id) VALUES (?, ?)`,
			rec.ID, authorID); err != nil {
			return fmt.Errorf("linking author %q: %w", name, err)
		}
	}

	for _, affil := range rec.Affiliations {
		if affil.InstitutionName == "" {
			continue
		}
		affilID, err := upsertEntity(ctx, tx,
			`INSERT INTO affiliations (source_affiliation_id, institution_name, country) VALUES (?, ?, ?)
			 ON CONFLICT(source_affiliation_id) DO UPDATE SET institution_name=excluded.institution_name
			 RETURNING id`,
			`SELECT id FROM affiliations WHERE institution_name = ? AND source_affiliation_id IS NULL`,
			`INSERT INTO affiliations (institution_name, country) VALUES (?, ?) RETURNING id`,
			affil.AffiliationID, affil.InstitutionName, affil.Country)
		if err != nil {
			return fmt.Errorf("upserting affiliation %q: %w", affil.InstitutionName, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO article_affiliations (article_id, affiliation_id) VALUES (?, ?)`,
			rec.ID, affilID); err != nil {
			return fmt.Errorf("linking affiliation %q: %w", affil.InstitutionName, err)
		}
	}

	return tx.Commit()
}

// upsertEntity inserts or finds an author/affiliation row and returns its id.
// Entities with a source id upsert on that id; entities without one are
// matched by name so repeated ingests do not duplicate them.
func upsertEntity(ctx context.Context, tx *sql.Tx, upsertBySource, selectByName, insertByName, sourceID, name, extra string) (int64, error) {
	if sourceID != "" {
		var id int64
		err := tx.QueryRowContext(ctx, upsertBySource, sourceID, name, extra).Scan(&id)
		return id, err
	}

	var id int64
	err := tx.QueryRowContext(ctx, selectByName, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}
	err = tx.QueryRowContext(ctx, insertByName, name, extra).Scan(&id)
	return id, err
}

// yearFromCoverDate extracts the leading 4-digit year from a cover date
// such as "2023-05-17". Returns zero when no year is present.
func yearFromCoverDate(coverDate string) int {
	if len(coverDate) < 4 {
		return 0
	}
	year, err := strconv.Atoi(coverDate[:4])
	if err != nil || year < 1000 {
		return 0
	}
	return year
}
