package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/2beens/fitcoach/internal/config"
	"github.com/2beens/fitcoach/internal/daily"
	"github.com/2beens/fitcoach/internal/db"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// menu_import replaces the week menu of a nutrition plan with the one read from a JSON file:
//
//	menu_import -env dev -plan <uuid> -name "Cut phase" -file menu.json
func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	planIDRaw := flag.String("plan", "", "nutrition plan id, a new one is generated when empty")
	planName := flag.String("name", "", "nutrition plan name")
	menuFile := flag.String("file", "", "path of the JSON week menu")
	dryRun := flag.Bool("dry-run", false, "only parse and print the menu rows")
	flag.Parse()

	if *menuFile == "" {
		log.Fatalln("-file is required")
	}

	_ = godotenv.Load()

	planID := uuid.New()
	if *planIDRaw != "" {
		var err error
		if planID, err = uuid.Parse(*planIDRaw); err != nil {
			log.Fatalf("invalid plan id: %s", err)
		}
	}
	if *planName == "" {
		*planName = fmt.Sprintf("plan %s", planID.String()[:8])
	}

	data, err := os.ReadFile(*menuFile)
	if err != nil {
		log.Fatalf("read menu file: %s", err)
	}

	menu, err := daily.ParseWeekMenu(data)
	if err != nil {
		log.Fatalf("parse menu: %s", err)
	}

	rows := menu.Rows()
	for _, row := range rows {
		log.Infof("%-9s %-15s %s", row.Weekday, row.MealType.Label(), row.Description)
	}
	if len(rows) == 0 {
		log.Warnln("menu has no meals")
	}
	if *dryRun {
		return
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("POSTGRES_PASSWORD"),
	})
	if err != nil {
		log.Fatalf("db pool: %s", err)
	}
	defer dbPool.Close()

	if err := daily.NewRepo(dbPool).ReplacePlanMenu(ctx, planID, *planName, menu); err != nil {
		dbPool.Close()
		log.Fatalf("replace plan menu: %s", err)
	}
	log.Infof("plan [%s] %q: %d meals imported", planID, *planName, len(rows))
}
