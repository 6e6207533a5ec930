// Cartful - Supermarket Transaction Analytics Engine
// Copyright 2026 Cartful Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cartfulhq/cartful

package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/cartfulhq/cartful/internal/dataset"
	"github.com/cartfulhq/cartful/internal/engine"
	"github.com/cartfulhq/cartful/internal/logging"
)

// maxUploadBytes bounds the ingest request body.
const maxUploadBytes = 64 << 20

// Handlers holds the HTTP handlers over the engine facade.
type Handlers struct {
	engine *engine.Engine
}

// NewHandlers creates the handler set.
func NewHandlers(eng *engine.Engine) *Handlers {
	return &Handlers{engine: eng}
}

// Health reports liveness and the current snapshot generation.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"status":     "ok",
		"generation": h.engine.Generation(),
	})
}

// Refresh reloads the dataset into a new snapshot generation.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Refresh(r.Context()); err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"status":     "refreshed",
		"generation": h.engine.Generation(),
	})
}

// Ingest accepts a raw transaction file body, normalizes it and writes
// the artifact into the dataset directory. The data becomes queryable
// on the next refresh.
func (h *Handlers) Ingest(w http.ResponseWriter, r *http.Request) {
	tmp, err := os.CreateTemp("", "cartful-upload-*.csv")
	if err != nil {
		writeDomainError(w, r, fmt.Errorf("creating upload buffer: %w", err))
		return
	}
	defer os.Remove(tmp.Name())

	_, err = io.Copy(tmp, http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		NewResponseWriter(w, r).BadRequest("could not read upload: " + err.Error())
		return
	}

	res, err := h.engine.Ingest(tmp.Name())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	logger := logging.Ctx(r.Context())
	logger.Info().
		Int("rows", res.Rows).
		Str("artifact", res.ArtifactPath).
		Msg("transaction file ingested")
	NewResponseWriter(w, r).Accepted(res)
}

// ExecutiveSummary serves the KPI set.
func (h *Handlers) ExecutiveSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.engine.ExecutiveSummary(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).SuccessWithMeta(sum, &APIMeta{Generation: sum.Generation})
}

// TimeSeries serves transaction counts per day, week or month.
func (h *Handlers) TimeSeries(w http.ResponseWriter, r *http.Request) {
	level := r.URL.Query().Get("level")
	if level == "" {
		level = engine.LevelDaily
	}
	series, err := h.engine.TimeSeries(r.Context(), level)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(series)
}

// Boxplot serves the basket-size distribution.
func (h *Handlers) Boxplot(w http.ResponseWriter, r *http.Request) {
	by := r.URL.Query().Get("by")
	if by == "" {
		by = engine.ByCustomer
	}
	dist, err := h.engine.BasketDistribution(r.Context(), by)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(dist)
}

// Correlation serves the customer feature correlation matrix.
func (h *Handlers) Correlation(w http.ResponseWriter, r *http.Request) {
	corr, err := h.engine.Correlation(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(corr)
}

// Segmentation trains or serves the cached k-means segmentation.
func (h *Handlers) Segmentation(w http.ResponseWriter, r *http.Request) {
	k, err := queryInt(r, "k", 0)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	filterOutliers, err := queryBool(r, "filter_outliers")
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	model, err := h.engine.Segment(r.Context(), k, filterOutliers)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(model)
}

// RecommendCustomer serves ranked recommendations for one customer.
func (h *Handlers) RecommendCustomer(w http.ResponseWriter, r *http.Request) {
	topN, err := queryInt(r, "top_n", 0)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	customerID := chi.URLParam(r, "customerID")

	recs, err := h.engine.RecommendCustomer(r.Context(), customerID, topN)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"customer":        customerID,
		"recommendations": recs,
	})
}

// RecommendProduct serves products bought together with one product.
func (h *Handlers) RecommendProduct(w http.ResponseWriter, r *http.Request) {
	topN, err := queryInt(r, "top_n", 0)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	productCode := chi.URLParam(r, "productCode")

	recs, err := h.engine.RecommendProduct(r.Context(), productCode, topN)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"product":         productCode,
		"recommendations": recs,
	})
}

// Rules serves the mined association rules, optionally filtered by lift
// and truncated.
func (h *Handlers) Rules(w http.ResponseWriter, r *http.Request) {
	minLift, err := queryFloat(r, "min_lift", 0)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	view, err := h.engine.Rules(r.Context(), minLift, limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).SuccessWithMeta(view, &APIMeta{Generation: view.Generation})
}

// GenerateInsights writes the consolidated insight artifacts.
func (h *Handlers) GenerateInsights(w http.ResponseWriter, r *http.Request) {
	k, err := queryInt(r, "k", 0)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	res, err := h.engine.GenerateInsights(r.Context(), k)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	NewResponseWriter(w, r).Success(res)
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &dataset.InvalidParameterError{Param: name, Reason: "must be an integer"}
	}
	return v, nil
}

// queryBool parses an optional boolean query parameter. A nil result
// means the parameter was absent and the caller's default applies.
func queryBool(r *http.Request, name string) (*bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, &dataset.InvalidParameterError{Param: name, Reason: "must be a boolean"}
	}
	return &v, nil
}

// queryFloat parses an optional float query parameter.
func queryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &dataset.InvalidParameterError{Param: name, Reason: "must be a number"}
	}
	return v, nil
}
