package testutil

import (
	"context"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dom/jbf-storefront/internal/api"
	"github.com/dom/jbf-storefront/internal/config"
	"github.com/dom/jbf-storefront/internal/denylist"
	"github.com/dom/jbf-storefront/internal/limiter"
	"github.com/dom/jbf-storefront/internal/mailer"
	"github.com/dom/jbf-storefront/internal/repository"
	repoPostgres "github.com/dom/jbf-storefront/internal/repository/postgres"
	"github.com/dom/jbf-storefront/internal/service"
	"github.com/dom/jbf-storefront/internal/websocket"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB manages a testcontainers PostgreSQL instance
type TestDB struct {
	Container testcontainers.Container
	DB        *gorm.DB
	DSN       string
}

// NewTestDB creates a new PostgreSQL testcontainer and returns a migrated connection
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	container, err := tcPostgres.Run(ctx,
		"postgres:15-alpine",
		tcPostgres.WithDatabase("test_jbf_storefront"),
		tcPostgres.WithUsername("test"),
		tcPostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	db, err := gorm.Open(gormPostgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := repoPostgres.Migrate(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	testDB := &TestDB{
		Container: container,
		DB:        db,
		DSN:       dsn,
	}

	t.Cleanup(func() {
		testDB.Cleanup()
	})

	return testDB
}

// Cleanup terminates the container
func (tdb *TestDB) Cleanup() {
	if tdb.Container != nil {
		tdb.Container.Terminate(context.Background())
	}
}

// Truncate clears all tables for test isolation
func (tdb *TestDB) Truncate(t *testing.T) {
	t.Helper()

	tables := []string{
		"contact_requests",
		"products",
		"categories",
		"admin_users",
	}

	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			t.Logf("warning: failed to truncate %s: %v", table, err)
		}
	}
}

// TestConfig returns a configuration suitable for testing
func TestConfig() *config.Config {
	return &config.Config{
		Port:               "0", // Random port
		Environment:        "test",
		JWTSecret:          "test-jwt-secret-key-for-testing-only",
		JWTExpirationHours: 24,
		SMTPHost:           "smtp.test.local",
		SMTPPort:           587,
		SMTPUser:           "shop@example.com",
		SMTPFrom:           "shop@example.com",
		AdminEmail:         "shop@example.com",
		MailTimeout:        2 * time.Second,
		SiteName:           "JBF Sport",
		CORSAllowedOrigins: []string{"*"},
		LoginRatePerSecond: 100,
		LoginBurst:         100,
		LoginMaxFailures:   100,
		LoginLockout:       time.Minute,
	}
}

// TestServer holds all components for integration testing
type TestServer struct {
	Server   *httptest.Server
	DB       *TestDB
	Repos    *repository.Repositories
	Services *service.Services
	Hub      *websocket.Hub
	Mail     *RecordingSender
	Config   *config.Config
}

// NewTestServer creates a complete test server with all dependencies. Mail
// is captured by a RecordingSender instead of going over SMTP. Options adjust
// the test configuration before anything is wired.
func NewTestServer(t *testing.T, opts ...func(*config.Config)) *TestServer {
	t.Helper()

	testDB := NewTestDB(t)
	cfg := TestConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	repos := repoPostgres.NewRepositories(testDB.DB)
	hub := websocket.NewHub(nil)
	go hub.Run()

	sender := &RecordingSender{}
	notifier := mailer.NewContactNotifier(sender, cfg.AdminEmail, cfg.SiteName)

	services := service.NewServices(repos, cfg, service.Dependencies{
		Denylist: denylist.NewMemory(),
		Limiter: limiter.NewMemory(limiter.Config{
			IPRate:      cfg.LoginRatePerSecond,
			IPBurst:     cfg.LoginBurst,
			MaxFailures: cfg.LoginMaxFailures,
			Lockout:     cfg.LoginLockout,
		}, nil),
		Notifier:  notifier,
		Publisher: hub,
	})
	router := api.NewRouter(services, api.Deps{
		Hub:          hub,
		MailPinger:   sender,
		MailNotifier: notifier,
	}, cfg)

	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		DB:       testDB,
		Repos:    repos,
		Services: services,
		Hub:      hub,
		Mail:     sender,
		Config:   cfg,
	}

	t.Cleanup(func() {
		server.Close()
		hub.Stop()
	})

	return ts
}

// BaseURL returns the test server's base URL
func (ts *TestServer) BaseURL() string {
	return ts.Server.URL
}

// APIURL returns the full API URL for a given path
func (ts *TestServer) APIURL(path string) string {
	return fmt.Sprintf("%s/api/v1%s", ts.Server.URL, path)
}

// WebSocketURL returns the WebSocket URL with token
func (ts *TestServer) WebSocketURL(token string) string {
	wsURL := "ws" + ts.Server.URL[4:] // Replace "http" with "ws"
	return fmt.Sprintf("%s/api/v1/ws?token=%s", wsURL, token)
}
