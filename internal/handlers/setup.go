package handlers

import (
	"database/sql"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/yourorg/kyotransit/internal/arukumachi"
	"github.com/yourorg/kyotransit/internal/auth"
	"github.com/yourorg/kyotransit/internal/budget"
	"github.com/yourorg/kyotransit/internal/config"
	"github.com/yourorg/kyotransit/internal/refdata"
)

// package-level dependencies, wired once at bootstrap
var (
	setupOnce sync.Once
	setupMu   sync.RWMutex

	dbConn      *sql.DB
	cfg         *config.Config
	scraper     *arukumachi.Scraper
	budgeter    *budget.Budgeter
	authService *auth.Service
	provider    *refdata.Provider
	validate    = validator.New()
	startedAt   time.Time
)

// Deps bundles everything the handlers need.
type Deps struct {
	DB       *sql.DB
	Config   *config.Config
	Scraper  *arukumachi.Scraper
	Budgeter *budget.Budgeter
	Auth     *auth.Service
	Provider *refdata.Provider
}

// Setup wires shared dependencies for handlers. Call this during app bootstrap.
func Setup(d Deps) {
	setupOnce.Do(func() {
		setupMu.Lock()
		defer setupMu.Unlock()
		dbConn = d.DB
		cfg = d.Config
		scraper = d.Scraper
		budgeter = d.Budgeter
		authService = d.Auth
		provider = d.Provider
		startedAt = time.Now()
	})
}

func getScraper() *arukumachi.Scraper {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return scraper
}

func getBudgeter() *budget.Budgeter {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return budgeter
}

func getConfig() *config.Config {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return cfg
}

func getDBConn() *sql.DB {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return dbConn
}

func getAuthService() *auth.Service {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return authService
}

func getProvider() *refdata.Provider {
	setupMu.RLock()
	defer setupMu.RUnlock()
	return provider
}
