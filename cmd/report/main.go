package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cocomarkup/internal/models"
	"cocomarkup/internal/repository/sqlite"
)

func main() {
	dbPath := flag.String("db", "data/markup.db", "Ledger database path")
	limit := flag.Int("n", 5, "Number of recent runs to show")
	flag.Parse()

	if _, err := os.Stat(*dbPath); os.IsNotExist(err) {
		log.Fatalf("Ledger %s does not exist", *dbPath)
	}

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	runs := sqlite.NewRunRepository(db)
	tasks := sqlite.NewTaskRepository(db)

	recent, err := runs.GetRecentRuns(*limit)
	if err != nil {
		log.Fatalf("Failed to read runs: %v", err)
	}
	if len(recent) == 0 {
		fmt.Println("No runs recorded")
		return
	}

	for _, run := range recent {
		printRun(run, tasks)
	}
}

func printRun(run models.Run, tasks *sqlite.TaskRepository) {
	fmt.Printf("\n📊 Run %s\n", run.ID)
	fmt.Printf("   %s -> %s (%d workers)\n", run.Source, run.Destination, run.Workers)
	fmt.Printf("   Started:  %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.FinishedAt.IsZero() {
		fmt.Printf("   Finished: -\n")
	} else {
		fmt.Printf("   Finished: %s (%s)\n", run.FinishedAt.Format("2006-01-02 15:04:05"), run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond))
	}

	stats, err := tasks.GetRunStats(run.ID)
	if err != nil {
		fmt.Printf("   ⚠️  %v\n", err)
		return
	}
	fmt.Printf("   Tasks: %d, images: %d\n", stats.TotalTasks, stats.Images)
	for _, state := range []models.TaskState{models.TaskQueued, models.TaskInProgress, models.TaskCompleted, models.TaskFailed} {
		if n := stats.PerState[state]; n > 0 {
			fmt.Printf("      - %s: %d\n", state, n)
		}
	}

	if stats.PerState[models.TaskCompleted] == stats.TotalTasks {
		return
	}
	records, err := tasks.GetTasksByRun(run.ID)
	if err != nil {
		fmt.Printf("   ⚠️  %v\n", err)
		return
	}
	for _, t := range records {
		switch {
		case !t.State.Terminal():
			// Przebieg przerwany zanim zadanie się skończyło
			fmt.Printf("   ⏸️  %s: never finished (%s)\n", t.InputDir, t.State)
		case t.State == models.TaskFailed:
			fmt.Printf("   ❌ %s: %s\n", t.InputDir, t.Error)
		}
	}
}
