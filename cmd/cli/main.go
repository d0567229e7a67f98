package main

import (
	"os"
	"strings"

	"github.com/khatapp/udhaar/internal/config"
	"github.com/khatapp/udhaar/pkg/logger"
	"github.com/khatapp/udhaar/pkg/pg"
)

func main() {
	err := config.Load(getEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
	}
	// main.go --dir=./migrations/sqlite
	if config.Get().DBDriver == "postgres" {
		pgConf := pg.Config{
			User:     config.Get().PostgresUser,
			Host:     config.Get().PostgresHost,
			Port:     config.Get().PostgresPort,
			Password: config.Get().PostgresPassword,
			Database: config.Get().PostgresDatabase,
		}
		err = pg.Migrate(pgConf, getMigrationPath())
	} else {
		err = pg.MigrateSqlite(config.Get().SqlitePath, getMigrationPath())
	}
	if err != nil {
		logger.Error("migration: error running migrations", "error", err)
	}
}

func getEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	if _, err := os.Open(".env"); err != nil {
		return ""
	}
	return ".env"
}

func getMigrationPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--dir=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed migration dir, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return "./migrations/" + config.Get().DBDriver
}
