package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"cricket-hub/pkg/database"

	"github.com/joho/godotenv"
)

// scripts run in this order
var scripts = []string{"001_schema.sql", "002_policies.sql"}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run prints every migration script and, with -apply, executes them. A
// missing script is a warning; the exit code is non-zero only when -apply
// was requested and failed.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	fs.SetOutput(stderr)
	dir := fs.String("dir", "migrations", "directory holding the SQL scripts")
	apply := fs.Bool("apply", false, "execute the scripts against DATABASE_URL")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(stderr, "Warning: .env file not found")
	}

	loaded := printScripts(*dir, stdout, stderr)

	if !*apply {
		return 0
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		fmt.Fprintln(stderr, "DATABASE_URL environment variable is not set")
		return 1
	}
	if err := applyScripts(dbURL, loaded, stderr); err != nil {
		fmt.Fprintf(stderr, "Failed to apply migrations: %v\n", err)
		return 1
	}
	return 0
}

type script struct {
	name string
	sql  string
}

// printScripts writes each script to out under a header comment
func printScripts(dir string, out, errOut io.Writer) []script {
	var loaded []script
	for _, name := range scripts {
		path := filepath.Join(dir, name)
		body, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(errOut, "Warning: could not read %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "-- ===== %s =====\n%s\n", name, body)
		loaded = append(loaded, script{name: name, sql: string(body)})
	}
	return loaded
}

func applyScripts(dbURL string, loaded []script, log io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.NewPostgresDB(ctx, dbURL)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, s := range loaded {
		if err := db.ExecScript(ctx, s.sql); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		fmt.Fprintf(log, "Applied %s\n", s.name)
	}
	return nil
}
