package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"randpredict/cmd"
	"randpredict/database"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "migrate":
			if err := handleMigrationCommand(); err != nil {
				log.Fatal("Migration error: ", err)
			}
			return
		case "odds":
			if err := handleOddsCommand(); err != nil {
				log.Fatal("Odds error: ", err)
			}
			return
		case "check-db":
			if err := checkDatabase(); err != nil {
				log.Fatal("Database check failed: ", err)
			}
			return
		}
	}

	// Normal server operation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, shutting down gracefully...")
		cancel()
	}()

	if err := cmd.Run(ctx); err != nil {
		log.Fatal("Application error: ", err)
	}
}

func handleMigrationCommand() error {
	if len(os.Args) < 3 {
		return fmt.Errorf("usage: randpredict migrate [up|down|status] [args...]")
	}

	command := os.Args[2]
	switch command {
	case "up":
		return database.MigrateUp()
	case "down":
		steps := "1"
		if len(os.Args) > 3 {
			steps = os.Args[3]
		}
		return database.MigrateDown(steps)
	case "status":
		return database.MigrateStatus()
	default:
		return fmt.Errorf("unknown migration command: %s", command)
	}
}

func handleOddsCommand() error {
	trials := 100000
	if len(os.Args) > 2 {
		parsed, err := strconv.Atoi(os.Args[2])
		if err != nil {
			return fmt.Errorf("invalid trials value: %w", err)
		}
		trials = parsed
	}
	return cmd.Odds(os.Stdout, trials, 0)
}

// checkDatabase verifies that the tables and columns the game needs exist
func checkDatabase() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if os.Getenv("DATABASE_URL") == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	db, err := database.NewConnection(ctx, database.ConstructDatabaseURL(os.Getenv("DATABASE_URL"), os.Getenv("DATABASE_NAME")))
	if err != nil {
		return err
	}
	defer db.Close()

	report, err := db.CheckStructure(ctx)
	if err != nil {
		return err
	}

	log.Println(report.String())
	if !report.OK() {
		return fmt.Errorf("run 'randpredict migrate up' to create the missing schema")
	}
	return nil
}
