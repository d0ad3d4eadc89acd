// catalog-importer loads a JSON achievement catalog into the store.
//
//	catalog-importer -file ./data/achievements.json
//
// The file holds an array of {"achievement_name", "scores", "description"}
// objects. Store settings come from the same environment as the server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"

	"userachievements/config"
	"userachievements/database"
	"userachievements/logger"
	"userachievements/models"
	"userachievements/repository"
	"userachievements/validation"
)

const batchSize = 100

func main() {
	path := flag.String("file", "./data/achievements.json", "catalog JSON file")
	dryRun := flag.Bool("dry-run", false, "validate the file without writing")
	flag.Parse()

	if err := run(*path, *dryRun); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run(path string, dryRun bool) error {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read catalog file: %w", err)
	}

	achievements, err := parseCatalog(data)
	if err != nil {
		return err
	}
	fmt.Printf("Found %d achievements in %s\n", len(achievements), path)

	if dryRun {
		fmt.Println("Dry run: nothing written")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	zlog, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer zlog.Sync() //nolint:errcheck

	db, err := database.Open(cfg.Database, zlog)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close(db) //nolint:errcheck

	if err := database.RunMigrations(db, zlog); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// bulk inserts get their own timeout; the per-query one is sized for requests
	repo := repository.New(db, 5*time.Minute)
	return importCatalog(ctx, repo, achievements)
}

// importCatalog inserts the entries and reports the catalog before and after
func importCatalog(ctx context.Context, repo *repository.Repository, achievements []models.Achievement) error {
	before, err := repo.CountAchievements(ctx)
	if err != nil {
		return fmt.Errorf("failed to count catalog: %w", err)
	}

	if err := repo.CreateAchievements(ctx, achievements, batchSize); err != nil {
		return fmt.Errorf("failed to import catalog: %w", err)
	}

	after, err := repo.CountAchievements(ctx)
	if err != nil {
		return fmt.Errorf("failed to count catalog: %w", err)
	}
	total, err := repo.CatalogTotal(ctx)
	if err != nil {
		return fmt.Errorf("failed to sum catalog: %w", err)
	}

	fmt.Printf("Imported %d achievements (catalog: %d -> %d, %d points in total)\n",
		len(achievements), before, after, total)
	return nil
}

// parseCatalog decodes and validates every entry, reporting them all at once
func parseCatalog(data []byte) ([]models.Achievement, error) {
	var entries []models.CreateAchievementRequest
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	achievements := make([]models.Achievement, 0, len(entries))
	bad := 0
	for i := range entries {
		if err := validation.ValidateStruct(&entries[i]); err != nil {
			fmt.Printf("entry %d: %v\n", i+1, err)
			bad++
			continue
		}
		achievements = append(achievements, models.Achievement{
			Name:        entries[i].AchievementName,
			Scores:      *entries[i].Scores,
			Description: entries[i].Description,
		})
	}
	if bad > 0 {
		return nil, fmt.Errorf("%d invalid entries, nothing imported", bad)
	}
	return achievements, nil
}
