package database

import (
	"database/sql"
)

type PgMasterRepository struct {
	conn *sql.DB
}

func NewPgMasterRepository(dsn string) (*PgMasterRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PgMasterRepository{conn: db}, nil
}

func (db *PgMasterRepository) Ping() error {
	return db.conn.Ping()
}

func (db *PgMasterRepository) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
