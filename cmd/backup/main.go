package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chorequest/internal/config"
	"chorequest/internal/database"
	"chorequest/internal/service"
)

const usage = `ChoreQuest Database Backup Tool

Usage:
  backup export [-output <file>]           Write every family, profile, task, pet and record to JSON
  backup import -input <file> [-clear]     Load a JSON export, optionally replacing all data

Options:
  -output <file>   Export path (default: backup_YYYYMMDD_HHMMSS.json)
  -input <file>    Import path (required)
  -clear           Delete existing data before importing
  -yes             Skip the confirmation prompt for -clear

Login sessions are not exported; everyone signs in again after a restore.

Environment Variables:
  DATABASE_TYPE    sqlite, postgres, or mysql (default: sqlite)
  DB_PATH          SQLite database path (default: ./chorequest.db)
  DATABASE_URL     PostgreSQL or MySQL connection URL
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%s failed: %v", os.Args[1], err)
	}
}

func run(command string, args []string) error {
	switch command {
	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		output := fs.String("output", "", "Export path")
		fs.Parse(args)

		backups, closeDB, err := openBackupService()
		if err != nil {
			return err
		}
		defer closeDB()
		return export(backups, *output)

	case "import":
		fs := flag.NewFlagSet("import", flag.ExitOnError)
		input := fs.String("input", "", "Import path")
		clear := fs.Bool("clear", false, "Delete existing data before importing")
		yes := fs.Bool("yes", false, "Skip the confirmation prompt")
		fs.Parse(args)

		if *input == "" {
			return fmt.Errorf("-input is required")
		}
		if _, err := os.Stat(*input); err != nil {
			return fmt.Errorf("cannot read input: %w", err)
		}
		if *clear && !*yes && !confirm("This deletes all existing data. Type 'yes' to confirm: ") {
			log.Println("Import cancelled")
			return nil
		}

		backups, closeDB, err := openBackupService()
		if err != nil {
			return err
		}
		defer closeDB()
		return restore(backups, *input, *clear)

	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func openBackupService() (*service.BackupService, func(), error) {
	cfg := config.Load()
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return service.NewBackupService(db), func() { db.Close() }, nil
}

func export(backups *service.BackupService, path string) error {
	if path == "" {
		path = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	log.Printf("Exporting database to %s", path)
	if err := backups.Export(path); err != nil {
		return err
	}
	if info, err := os.Stat(path); err == nil {
		log.Printf("Export complete (%.1f KB)", float64(info.Size())/1024)
	}
	return nil
}

func restore(backups *service.BackupService, path string, clear bool) error {
	if clear {
		log.Println("Clearing existing data")
		if err := backups.Clear(); err != nil {
			return err
		}
	}
	log.Printf("Importing database from %s", path)
	if err := backups.Import(path); err != nil {
		return err
	}
	log.Println("Import complete")
	return nil
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(answer) == "yes"
}
