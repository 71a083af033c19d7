package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"menubasket/internal/config"
	"menubasket/internal/db"
	"menubasket/internal/domain"
	"menubasket/internal/importer"
	"menubasket/internal/repository/branch"
	"menubasket/internal/repository/menu"
)

func main() {
	var (
		filePath  string
		branchKey string
	)
	flag.StringVar(&filePath, "file", "", "Path to menu CSV export")
	flag.StringVar(&branchKey, "branch", "", "Branch key to import into")
	flag.Parse()

	if filePath == "" || branchKey == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	ctx := context.Background()

	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	branchRepo := branch.NewPostgres(pool)
	b, err := branchRepo.GetByKey(ctx, branchKey)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			b, err = branchRepo.Create(ctx, &domain.Branch{Key: branchKey, Name: branchKey})
		}
		if err != nil {
			logger.Fatalf("ensure branch %q: %v", branchKey, err)
		}
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	menuRepo := menu.NewPostgres(pool, logger)
	imp := importer.NewCSVImporter(f, productWriter{menuRepo}, categoryWriter{menuRepo}, b.ID)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed: %v", err)
	}

	fmt.Printf("Imported %d rows into branch %s in %s\n", count, branchKey, time.Since(start).Truncate(time.Millisecond))
}

type productWriter struct {
	repo menu.Repository
}

func (w productWriter) Upsert(ctx context.Context, p domain.BranchProduct) (*domain.BranchProduct, error) {
	return w.repo.UpsertProduct(ctx, p)
}

type categoryWriter struct {
	repo menu.Repository
}

func (w categoryWriter) Upsert(ctx context.Context, c domain.MenuCategory) (*domain.MenuCategory, error) {
	return w.repo.UpsertCategory(ctx, c)
}
