package main

import (
	"errors"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/yjkogan/stuff-tracker/internal/util"
)

const migrationsURL = "file://resources/migrations"

// migrateUp applies every pending migration to the sqlite database at path,
// creating the file if needed.
func migrateUp(path string) (err error) {
	migrator, err := migrate.New(migrationsURL, "sqlite3://"+path)
	if err != nil {
		return err
	}
	defer func() {
		srcErr, dbErr := migrator.Close()
		if err == nil {
			err = util.ConcatErrors([]error{srcErr, dbErr})
		}
	}()

	if err := migrator.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return err
	}

	version, _, err := migrator.Version()
	if err != nil {
		return err
	}
	log.Printf("info: database migrated to version %d", version)

	return nil
}
