package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/lexscout/lexscout/pkg/config"
	"github.com/lexscout/lexscout/pkg/scraper"
)

var DebugLog func(string, ...interface{})

type DB struct {
	conn    *sql.DB
	enabled bool
}

type SectionRecord struct {
	ChapterNumber string
	ChapterTitle  string
	ArticleNumber string
	ArticleTitle  string
	SectionNumber string
	Text          string
	SourceURL     string
	Status        string
	FirstSeen     time.Time
	LastSeen      time.Time
}

const (
	StatusNew      = "NEW"
	StatusActive   = "ACTIVE"
	StatusRepealed = "REPEALED"
)

func New(cfg *config.Database) (*DB, error) {
	db := &DB{
		enabled: cfg.Enabled,
	}

	if !cfg.Enabled {
		fmt.Println("[INF] Database connection disabled.")
		return db, nil
	}

	postgresConn, err := sql.Open("postgres", cfg.ConnString("postgres"))
	if err != nil {
		fmt.Println("[INF] Database connection disabled.")
		return db, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer postgresConn.Close()

	if err := postgresConn.Ping(); err != nil {
		fmt.Println("[INF] Database connection disabled.")
		return db, fmt.Errorf("failed to ping postgres: %w", err)
	}

	var exists bool
	err = postgresConn.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.Name).Scan(&exists)
	if err != nil {
		fmt.Println("[INF] Database connection disabled.")
		return db, fmt.Errorf("failed to check database existence: %w", err)
	}

	if !exists {
		_, err = postgresConn.Exec(fmt.Sprintf("CREATE DATABASE %s", cfg.Name))
		if err != nil {
			fmt.Println("[INF] Database connection disabled.")
			return db, fmt.Errorf("failed to create database: %w", err)
		}
		fmt.Printf("[INF] Database '%s' created successfully.\n", cfg.Name)
	}

	conn, err := sql.Open("postgres", cfg.ConnString(""))
	if err != nil {
		fmt.Println("[INF] Database connection disabled.")
		return db, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		fmt.Println("[INF] Database connection disabled.")
		return db, fmt.Errorf("failed to ping database: %w", err)
	}

	db.conn = conn
	fmt.Println("[INF] Database connection active.")

	if err := db.initSchema(); err != nil {
		return db, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

func (db *DB) initSchema() error {
	if !db.enabled || db.conn == nil {
		return nil
	}

	schema := `
	CREATE TABLE IF NOT EXISTS sections (
		id SERIAL PRIMARY KEY,
		chapter_number VARCHAR(10) NOT NULL,
		chapter_title TEXT NOT NULL DEFAULT '',
		article_number VARCHAR(10) NOT NULL DEFAULT '',
		article_title TEXT NOT NULL DEFAULT '',
		section_number VARCHAR(64) NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		source_url TEXT NOT NULL DEFAULT '',
		status VARCHAR(20) NOT NULL DEFAULT 'NEW',
		first_seen TIMESTAMP NOT NULL DEFAULT NOW(),
		last_seen TIMESTAMP NOT NULL DEFAULT NOW(),
		UNIQUE(chapter_number, section_number)
	);

	CREATE INDEX IF NOT EXISTS idx_chapter ON sections(chapter_number);
	CREATE INDEX IF NOT EXISTS idx_status ON sections(status);
	CREATE INDEX IF NOT EXISTS idx_section_number ON sections(section_number);
	`

	_, err := db.conn.Exec(schema)
	return err
}

func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

func (db *DB) IsEnabled() bool {
	return db.enabled && db.conn != nil
}

// TrackSections reconciles one chapter's crawl against the stored corpus in
// a single transaction: unseen sections are inserted as NEW, re-seen ones
// refreshed to ACTIVE, and stored sections missing from this crawl marked
// REPEALED. Sections without a section number cannot be keyed and are
// skipped.
func (db *DB) TrackSections(chapterNumber string, sections []scraper.Section) error {
	if !db.IsEnabled() {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	currentSections := make(map[string]scraper.Section)
	for _, section := range sections {
		if section.SectionNumber == "" {
			continue
		}
		currentSections[section.SectionNumber] = section
	}

	for sectionNumber, section := range currentSections {
		var exists bool
		err := tx.QueryRow(`
			SELECT EXISTS(SELECT 1 FROM sections WHERE chapter_number = $1 AND section_number = $2)
		`, chapterNumber, sectionNumber).Scan(&exists)
		if err != nil {
			return err
		}

		if exists {
			if DebugLog != nil {
				DebugLog("updating section %s §%s to ACTIVE in database", chapterNumber, sectionNumber)
			}
			_, err = tx.Exec(`
				UPDATE sections
				SET status = 'ACTIVE', text = $3, article_number = $4, article_title = $5,
					chapter_title = $6, source_url = $7, last_seen = NOW()
				WHERE chapter_number = $1 AND section_number = $2
			`, chapterNumber, sectionNumber, section.Text, section.ArticleNumber,
				section.ArticleTitle, section.ChapterTitle, section.SourceURL)
		} else {
			if DebugLog != nil {
				DebugLog("inserting new section %s §%s with status NEW into database", chapterNumber, sectionNumber)
			}
			_, err = tx.Exec(`
				INSERT INTO sections (chapter_number, chapter_title, article_number, article_title,
					section_number, text, source_url, status, first_seen, last_seen)
				VALUES ($1, $2, $3, $4, $5, $6, $7, 'NEW', NOW(), NOW())
			`, chapterNumber, section.ChapterTitle, section.ArticleNumber, section.ArticleTitle,
				sectionNumber, section.Text, section.SourceURL)
		}

		if err != nil {
			return err
		}
	}

	rows, err := tx.Query(`
		SELECT section_number FROM sections
		WHERE chapter_number = $1 AND status != 'REPEALED'
	`, chapterNumber)
	if err != nil {
		return err
	}
	defer rows.Close()

	var repealedSections []string
	for rows.Next() {
		var sectionNumber string
		if err := rows.Scan(&sectionNumber); err != nil {
			return err
		}
		if _, ok := currentSections[sectionNumber]; !ok {
			repealedSections = append(repealedSections, sectionNumber)
		}
	}

	for _, sectionNumber := range repealedSections {
		if DebugLog != nil {
			DebugLog("marking section %s §%s as REPEALED in database (not found in current crawl)", chapterNumber, sectionNumber)
		}
		_, err = tx.Exec(`
			UPDATE sections
			SET status = 'REPEALED', last_seen = NOW()
			WHERE chapter_number = $1 AND section_number = $2
		`, chapterNumber, sectionNumber)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (db *DB) QuerySections(chapterNumber string, status string) ([]SectionRecord, error) {
	if !db.IsEnabled() {
		return nil, fmt.Errorf("database is not enabled")
	}

	query := `
		SELECT chapter_number, chapter_title, article_number, article_title,
			section_number, text, source_url, status, first_seen, last_seen
		FROM sections
		WHERE chapter_number = $1
	`
	args := []interface{}{chapterNumber}

	if status != "" {
		query += " AND status = $2"
		args = append(args, status)
	}

	query += " ORDER BY first_seen DESC"

	return db.scanSections(query, args...)
}

func (db *DB) QueryAllSections(status string) ([]SectionRecord, error) {
	if !db.IsEnabled() {
		return nil, fmt.Errorf("database is not enabled")
	}

	query := `
		SELECT chapter_number, chapter_title, article_number, article_title,
			section_number, text, source_url, status, first_seen, last_seen
		FROM sections
	`
	var args []interface{}

	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}

	query += " ORDER BY chapter_number, first_seen DESC"

	return db.scanSections(query, args...)
}

// LookupSection fetches a single section by its number, optionally scoped
// to a chapter.
func (db *DB) LookupSection(sectionNumber, chapterNumber string) (*SectionRecord, error) {
	if !db.IsEnabled() {
		return nil, fmt.Errorf("database is not enabled")
	}

	query := `
		SELECT chapter_number, chapter_title, article_number, article_title,
			section_number, text, source_url, status, first_seen, last_seen
		FROM sections
		WHERE section_number = $1
	`
	args := []interface{}{sectionNumber}

	if chapterNumber != "" {
		query += " AND chapter_number = $2"
		args = append(args, chapterNumber)
	}

	query += " LIMIT 1"

	records, err := db.scanSections(query, args...)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("section %s not found", sectionNumber)
	}

	return &records[0], nil
}

func (db *DB) scanSections(query string, args ...interface{}) ([]SectionRecord, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SectionRecord
	for rows.Next() {
		var r SectionRecord
		if err := rows.Scan(&r.ChapterNumber, &r.ChapterTitle, &r.ArticleNumber, &r.ArticleTitle,
			&r.SectionNumber, &r.Text, &r.SourceURL, &r.Status, &r.FirstSeen, &r.LastSeen); err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}
