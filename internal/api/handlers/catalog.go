package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/symfluence/snowcover/backend/internal/external/catalog"
	"github.com/symfluence/snowcover/backend/pkg/logger"
	"github.com/symfluence/snowcover/backend/pkg/redis"
)

// CatalogHandler serves dataset catalog metadata.
type CatalogHandler struct {
	client *catalog.Client
	cache  *redis.Cache
	logger *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(client *catalog.Client, cache *redis.Cache, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		client: client,
		cache:  cache,
		logger: log,
	}
}

// GetDataset returns scraped catalog metadata for one dataset
// GET /api/datasets/:id
func (h *CatalogHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var ds catalog.Dataset
	err := h.cache.GetOrSet(r.Context(), redis.DatasetKey(id), &ds, redis.TTLDaily, func() (interface{}, error) {
		return h.client.FetchDataset(r.Context(), id)
	})
	if err != nil {
		h.logger.WithError(err).WithField("dataset", id).Error("Failed to fetch dataset metadata")
		respondError(w, http.StatusBadGateway, "Failed to retrieve dataset metadata")
		return
	}

	respondJSON(w, http.StatusOK, ds)
}
