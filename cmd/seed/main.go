// Command seed creates the admin account and default catalogue data.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dom/jbf-storefront/internal/config"
	"github.com/dom/jbf-storefront/internal/domain"
	"github.com/dom/jbf-storefront/internal/repository/postgres"
	"github.com/dom/jbf-storefront/internal/service"
	"go.uber.org/zap"
)

type categorySeed struct {
	Name        string
	Slug        string
	Description string
}

var defaultCategories = []categorySeed{
	{"Football", "football", "Football gear and accessories"},
	{"Basketball", "basketball", "Basketball gear and accessories"},
	{"Tennis", "tennis", "Tennis gear and accessories"},
	{"Fitness", "fitness", "Fitness and strength training equipment"},
	{"Running", "running", "Running shoes and apparel"},
	{"Natation", "natation", "Swimming and water sports equipment"},
	{"Sports de raquette", "sports-raquette", "Tennis, badminton, squash, padel"},
	{"Équipement de protection", "protection", "Protective and safety equipment"},
}

const demoProductSlug = "ballon-football-professionnel"

func main() {
	adminEmail := flag.String("admin-email", "", "create or reset the admin with this email")
	adminPassword := flag.String("admin-password", "", "admin password (min 8 characters)")
	adminName := flag.String("admin-name", "Administrator", "admin display name")
	categories := flag.Bool("categories", false, "create the default categories")
	demoProduct := flag.Bool("demo-product", false, "create a demo product in the football category")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: seed [flags]\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *adminEmail == "" && !*categories && !*demoProduct {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.DatabaseURL, postgres.ParseLogLevel(cfg.DBLogLevel))
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	repos := postgres.NewRepositories(db)
	services := service.NewServices(repos, cfg, service.Dependencies{Logger: logger})
	ctx := context.Background()

	if *adminEmail != "" {
		admin, created, err := services.Auth.EnsureAdmin(ctx, service.EnsureAdminInput{
			Email:    *adminEmail,
			Password: *adminPassword,
			Name:     *adminName,
		})
		if err != nil {
			logger.Fatal("failed to seed admin", zap.Error(err))
		}
		if created {
			logger.Info("admin created", zap.String("email", admin.Email))
		} else {
			logger.Info("admin password reset", zap.String("email", admin.Email))
		}
	}

	if *categories {
		for _, c := range defaultCategories {
			desc := c.Description
			_, err := services.Category.Create(ctx, service.CategoryInput{
				Name:        c.Name,
				Slug:        c.Slug,
				Description: &desc,
			})
			switch {
			case errors.Is(err, domain.ErrConflict):
				logger.Info("category exists, skipped", zap.String("slug", c.Slug))
			case err != nil:
				logger.Fatal("failed to create category", zap.String("slug", c.Slug), zap.Error(err))
			default:
				logger.Info("category created", zap.String("slug", c.Slug))
			}
		}
	}

	if *demoProduct {
		if err := seedDemoProduct(ctx, services); err != nil {
			logger.Fatal("failed to create demo product", zap.Error(err))
		}
		logger.Info("demo product ready", zap.String("slug", demoProductSlug))
	}
}

func seedDemoProduct(ctx context.Context, services *service.Services) error {
	football, err := services.Category.Get(ctx, "football")
	if err != nil {
		return fmt.Errorf("football category (run with -categories first): %w", err)
	}

	content := "Official size 5 match ball.\n\n- Synthetic leather cover\n- Latex bladder for air retention\n- Reinforced stitching"
	promo := true
	_, err = services.Product.Create(ctx, service.ProductInput{
		Name:        "Ballon de Football Professionnel",
		Description: "Professional-grade match ball for games and training.",
		Content:     &content,
		Price:       49.99,
		Slug:        demoProductSlug,
		CategoryID:  &football.ID,
		IsPromo:     &promo,
	})
	if errors.Is(err, domain.ErrConflict) {
		return nil
	}
	return err
}
