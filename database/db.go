package database

import (
	"database/sql"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/reversa-app/reversa/config"
)

var instance *Datasource
var once sync.Once

// Datasource wraps the authoritative Postgres connection. It is the only
// shared mutable resource of the engine.
type Datasource struct {
	Conn *sql.DB
}

func NewDataSource(configuration *config.Configuration) (IDataSource, error) {
	return GetDBConnection(configuration)
}

// GetDBConnection initializes the singleton datasource on first use.
func GetDBConnection(configuration *config.Configuration) (*Datasource, error) {
	var err error
	once.Do(func() {
		conn, errConn := ConnectDB(configuration.DataSource.Dns)
		if errConn != nil {
			err = errConn
			return
		}
		instance = &Datasource{Conn: conn}
	})
	if err != nil {
		return nil, err
	}
	return instance, nil
}

// ConnectDB opens the Postgres connection and ensures the schema exists.
func ConnectDB(dns string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dns)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		logrus.WithError(err).Error("database connection failed")
		return nil, err
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the engine's tables. The unique indexes declared here are
// the idempotency mechanism: duplicate idempotency keys, order ids, batch
// keys and raw-line hashes are rejected by the store, not by application
// locks.
func Migrate(db *sql.DB) error {
	if err := createReturnsTable(db); err != nil {
		return err
	}
	if err := createLedgerEventsTable(db); err != nil {
		return err
	}
	if err := createImportBatchesTable(db); err != nil {
		return err
	}
	return createRawImportLinesTable(db)
}

func createReturnsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS returns (
			id SERIAL PRIMARY KEY,
			return_id TEXT NOT NULL UNIQUE,
			order_id TEXT NOT NULL UNIQUE,
			store TEXT,
			sku TEXT,
			customer_name TEXT,
			product_value NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (product_value >= 0),
			freight_value NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (freight_value >= 0),
			status TEXT NOT NULL DEFAULT 'pendente',
			logistics_status TEXT NOT NULL DEFAULT '',
			reason_label TEXT,
			reason_category TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createLedgerEventsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS ledger_events (
			id SERIAL PRIMARY KEY,
			event_id TEXT NOT NULL UNIQUE,
			return_id TEXT NOT NULL REFERENCES returns(return_id) ON DELETE CASCADE,
			category TEXT NOT NULL,
			title TEXT NOT NULL,
			message TEXT,
			meta_data JSONB,
			idempotency_key TEXT UNIQUE,
			actor TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func createImportBatchesTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS import_batches (
			id SERIAL PRIMARY KEY,
			batch_id TEXT NOT NULL UNIQUE,
			batch_key TEXT UNIQUE,
			file_name TEXT,
			total INTEGER NOT NULL DEFAULT 0,
			created INTEGER NOT NULL DEFAULT 0,
			updated INTEGER NOT NULL DEFAULT 0,
			errors INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMP
		)
	`)
	return err
}

func createRawImportLinesTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS raw_import_lines (
			id SERIAL PRIMARY KEY,
			batch_id TEXT NOT NULL REFERENCES import_batches(batch_id) ON DELETE CASCADE,
			return_id TEXT REFERENCES returns(return_id) ON DELETE CASCADE,
			line_number INTEGER NOT NULL,
			content TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			UNIQUE (batch_id, content_hash)
		)
	`)
	return err
}
