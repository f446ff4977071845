package db

import (
	"fmt"
	"io"
	"io/fs"
	"strconv"
)

// RunMigrateCommand handles the 'migrate' subcommand against the database
// at dbPath using the embedded migrations.
func RunMigrateCommand(args []string, dbPath string, out io.Writer) error {
	if len(args) < 1 {
		PrintMigrateHelp(out)
		return fmt.Errorf("missing migrate action")
	}
	action := args[0]
	if action == "help" {
		PrintMigrateHelp(out)
		return nil
	}

	// Open without schema initialisation: migrations manage the schema.
	database, err := OpenDB(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()
	migrations := MigrationsFS()

	switch action {
	case "up":
		if err := database.MigrateUp(migrations); err != nil {
			return err
		}
		return printVersion(out, database, migrations)

	case "down":
		if err := database.MigrateDown(migrations); err != nil {
			return err
		}
		return printVersion(out, database, migrations)

	case "status":
		version, dirty, err := database.MigrateVersion(migrations)
		if err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}
		fmt.Fprintln(out, "=== Migration Status ===")
		fmt.Fprintf(out, "Current version: %d\n", version)
		fmt.Fprintf(out, "Dirty: %v\n", dirty)
		if dirty {
			fmt.Fprintln(out, "A migration failed mid-execution; inspect the database, then run: gesture-report migrate force <version>")
		}
		return nil

	case "version":
		n, err := versionArg(args)
		if err != nil {
			return err
		}
		if err := database.MigrateTo(migrations, uint(n)); err != nil {
			return err
		}
		return printVersion(out, database, migrations)

	case "force":
		n, err := versionArg(args)
		if err != nil {
			return err
		}
		if err := database.MigrateForce(migrations, n); err != nil {
			return err
		}
		fmt.Fprintf(out, "Migration version forced to %d\n", n)
		return nil

	default:
		PrintMigrateHelp(out)
		return fmt.Errorf("unknown migrate action: %s", action)
	}
}

func versionArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("usage: gesture-report migrate %s <version_number>", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid version number: %s", args[1])
	}
	return n, nil
}

func printVersion(out io.Writer, database *DB, migrations fs.FS) error {
	version, dirty, err := database.MigrateVersion(migrations)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}

// PrintMigrateHelp prints usage for the migrate subcommand.
func PrintMigrateHelp(out io.Writer) {
	fmt.Fprint(out, `Usage: gesture-report migrate <action> [args]

Actions:
  up                 Apply all pending migrations
  down               Roll back the most recent migration
  status             Show the current migration version
  version <n>        Migrate up or down to version n
  force <n>          Force the recorded version (dirty-state recovery only)
  help               Show this help
`)
}
