package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"craftacademy/internal/config"
	"craftacademy/internal/database"
	"craftacademy/internal/repository"
	"craftacademy/internal/service"
)

func main() {
	// Define subcommands
	showCmd := flag.NewFlagSet("show", flag.ExitOnError)
	recalcCmd := flag.NewFlagSet("recalc", flag.ExitOnError)

	// Show flags
	showChild := showCmd.Int64("child", 0, "Child ID (required)")
	showDays := showCmd.Int("days", 7, "Number of days to show, ending today")

	// Recalc flags
	recalcChild := recalcCmd.Int64("child", 0, "Child ID (required)")
	recalcDate := recalcCmd.String("date", "", "Date to rebuild as YYYY-MM-DD (default: today)")
	recalcDays := recalcCmd.Int("days", 1, "Number of days to rebuild, ending at -date")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	scoringService := service.NewScoringService(db, cfg)

	switch os.Args[1] {
	case "show":
		showCmd.Parse(os.Args[2:])
		requireChild(showCmd, *showChild, db)
		handleShow(scoringService, *showChild, *showDays)

	case "recalc":
		recalcCmd.Parse(os.Args[2:])
		requireChild(recalcCmd, *recalcChild, db)
		handleRecalc(scoringService, *recalcChild, *recalcDate, *recalcDays)

	default:
		printUsage()
		os.Exit(1)
	}
}

func requireChild(cmd *flag.FlagSet, childID int64, db *database.DB) {
	if childID == 0 {
		fmt.Println("Error: -child flag is required")
		cmd.PrintDefaults()
		os.Exit(1)
	}
	child, err := repository.NewChildRepository(db).GetByID(childID)
	if err != nil {
		log.Fatalf("Failed to look up child: %v", err)
	}
	if child == nil {
		log.Fatalf("No child with ID %d", childID)
	}
	log.Printf("Child: %s (ID %d)", child.Name, child.ID)
}

func handleShow(scoringService *service.ScoringService, childID int64, days int) {
	progress, err := scoringService.GetProgress(childID, days)
	if err != nil {
		log.Fatalf("Failed to get progress: %v", err)
	}

	fmt.Printf("%-12s %-11s %-7s %s\n", "Date", "Activities", "Points", "Minutes")
	for _, day := range progress {
		fmt.Printf("%-12s %-11d %-7d %d\n", day.Date, day.ActivitiesCompleted, day.TotalPoints, day.TotalTimeMinutes)
	}
}

func handleRecalc(scoringService *service.ScoringService, childID int64, dateStr string, days int) {
	end := time.Now()
	if dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			log.Fatalf("Invalid date %q: want YYYY-MM-DD", dateStr)
		}
		end = parsed
	}
	if days < 1 {
		days = 1
	}

	for i := days - 1; i >= 0; i-- {
		date := end.AddDate(0, 0, -i).Format("2006-01-02")
		stats, err := scoringService.RecalculateDailyStats(childID, date)
		if err != nil {
			log.Fatalf("Failed to rebuild %s: %v", date, err)
		}
		log.Printf("Rebuilt %s: %d activities, %d points, %d minutes",
			date, stats.ActivitiesCompleted, stats.TotalPoints, stats.TotalTimeMinutes)
	}

	log.Println("Recalculation complete!")
}

func printUsage() {
	fmt.Println("Craft Academy Stats Repair Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  statsfix show [options]      Show a child's daily stats rollup")
	fmt.Println("  statsfix recalc [options]    Rebuild daily stats from scored activities")
	fmt.Println()
	fmt.Println("Show Options:")
	fmt.Println("  -child <id>    Child ID (required)")
	fmt.Println("  -days <n>      Number of days to show, ending today (default: 7)")
	fmt.Println()
	fmt.Println("Recalc Options:")
	fmt.Println("  -child <id>    Child ID (required)")
	fmt.Println("  -date <d>      Date to rebuild as YYYY-MM-DD (default: today)")
	fmt.Println("  -days <n>      Number of days to rebuild, ending at -date (default: 1)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  # Show the last week")
	fmt.Println("  statsfix show -child 1")
	fmt.Println()
	fmt.Println("  # Rebuild today's rollup")
	fmt.Println("  statsfix recalc -child 1")
	fmt.Println()
	fmt.Println("  # Rebuild the whole last week")
	fmt.Println("  statsfix recalc -child 1 -days 7")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./craftacademy.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
}
