package telemetry

import (
	"database/sql"

	"github.com/probelab/probectl/internal/errors"
)

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE TABLE IF NOT EXISTS cycles (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            timestamp INTEGER NOT NULL,
            state TEXT NOT NULL,
            cause TEXT,
            fired INTEGER,
            crossed INTEGER,
            cross_tick INTEGER,
            sample_mv INTEGER,
            trig_out_mv INTEGER,
            trig_out_ns INTEGER,
            intensity_mv INTEGER,
            intensity_ns INTEGER,
            cooldown_us INTEGER
        )
    `)
	if err != nil {
		return errors.New().Wrap(ErrSchemaInit, err)
	}

	return nil
}
