package repository

import (
	"database/sql"
	"errors"
	"strings"

	_ "github.com/glebarez/go-sqlite"
)

// SQLiteRepository is a Repository backed by an SQLite database file.
// Children are stored newline-separated alongside the resource row.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(filename string) SQLiteRepository {
	if filename == "" {
		filename = "file::memory:?cache=shared"
	}
	db, err := sql.Open("sqlite", filename)
	if err != nil {
		panic(err)
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS resources (
		path TEXT PRIMARY KEY,
		resource_type TEXT,
		content BLOB,
		children TEXT
	)`)
	if err != nil {
		panic(err)
	}
	return SQLiteRepository{
		db: db,
	}
}

func (s SQLiteRepository) Get(path string) (Resource, bool, error) {
	res := Resource{Path: path}
	var children string
	err := s.db.QueryRow(
		"SELECT resource_type, content, children FROM resources WHERE path = ?", path).
		Scan(&res.ResourceType, &res.Content, &children)
	if errors.Is(err, sql.ErrNoRows) {
		return Resource{}, false, nil
	}
	if err != nil {
		return Resource{}, false, err
	}
	if children != "" {
		res.Children = strings.Split(children, "\n")
	}
	return res, true, nil
}

func (s SQLiteRepository) Put(res Resource) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO resources (path, resource_type, content, children) VALUES (?, ?, ?, ?)",
		res.Path, res.ResourceType, res.Content, strings.Join(res.Children, "\n"))
	return err
}

func (s SQLiteRepository) Delete(path string) error {
	_, err := s.db.Exec("DELETE FROM resources WHERE path = ?", path)
	return err
}
