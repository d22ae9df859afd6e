// Command generate_schema rebuilds internal/database/schema.sql by applying
// every migration to an in-memory database. With -check it only reports
// whether the committed file is stale.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"asset-organizer/internal/database"
	"asset-organizer/internal/database/migrations"
)

func main() {
	check := flag.Bool("check", false, "fail if schema.sql is out of date instead of rewriting it")
	out := flag.String("out", filepath.Join("internal", "database", "schema.sql"), "schema file, relative to the module root")
	flag.Parse()

	if err := run(*out, *check); err != nil {
		fmt.Fprintf(os.Stderr, "generate_schema: %v\n", err)
		os.Exit(1)
	}
}

func run(out string, check bool) error {
	db, err := database.OpenConnection(":memory:")
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.MigrateUp(db); err != nil {
		return err
	}
	schema, err := database.DumpSchema(db)
	if err != nil {
		return err
	}

	if check {
		current, err := os.ReadFile(out)
		if err != nil {
			return err
		}
		if !bytes.Equal(current, []byte(schema)) {
			return fmt.Errorf("%s is stale; run go generate ./internal/database", out)
		}
		return nil
	}

	if err := os.WriteFile(out, []byte(schema), 0644); err != nil {
		return err
	}
	version, err := migrations.LatestVersion()
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s (schema version %d)\n", out, version)
	return nil
}
