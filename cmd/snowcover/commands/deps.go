package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/symfluence/snowcover/backend/internal/analysis"
	"github.com/symfluence/snowcover/backend/internal/external/earthengine"
	"github.com/symfluence/snowcover/backend/pkg/config"
	"github.com/symfluence/snowcover/backend/pkg/database"
	"github.com/symfluence/snowcover/backend/pkg/httputil"
	"github.com/symfluence/snowcover/backend/pkg/logger"
	"github.com/symfluence/snowcover/backend/pkg/redis"
)

// deps bundles the shared wiring every command needs.
type deps struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB
	redis   *redis.Client
	cache   *redis.Cache
	ee      *earthengine.Client
	repo    *analysis.Repository
	service *analysis.Service
}

// initDeps wires configuration, storage, the platform client and the
// analysis service. withDB controls whether a database connection is
// required; one-shot analyses can run without persistence.
func initDeps(withDB bool) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	d := &deps{cfg: cfg, log: log}

	if withDB {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		d.db = db
		d.repo = analysis.NewRepository(db.Pool)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	d.redis = rdb
	d.cache = redis.NewCache(rdb, "snowcover")

	// Remote reductions can run for minutes on long date ranges
	httpClient := httputil.NewWithTimeout(cfg, log, 5*time.Minute)
	d.ee = earthengine.NewClient(cfg, httpClient, log)

	d.service = analysis.NewService(d.ee, d.repo, d.cache, cfg, log)

	return d, nil
}

// close releases connections held by the bundle.
func (d *deps) close() {
	if d.db != nil {
		d.db.Close()
	}
	if d.redis != nil {
		_ = d.redis.Close()
	}
}
