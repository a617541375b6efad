package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aristath/advisor/internal/clients/robo"
	"github.com/aristath/advisor/internal/events"
	"github.com/aristath/advisor/internal/modules/assessment"
	"github.com/aristath/advisor/internal/modules/selection"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBuilder struct {
	lastRequest robo.BuildRequest
	portfolio   *robo.Portfolio
	err         error
}

func (b *stubBuilder) BuildPortfolio(_ context.Context, request robo.BuildRequest) (*robo.Portfolio, error) {
	b.lastRequest = request
	if b.err != nil {
		return nil, b.err
	}
	return b.portfolio, nil
}

type stubBuckets struct {
	bucket string
	err    error
}

func (b *stubBuckets) RecommendedBucket(string) (string, error) {
	return b.bucket, b.err
}

func setupRouter(builder *stubBuilder, buckets BucketSource) chi.Router {
	bus := events.NewBus(zerolog.Nop())
	h := NewHandler(builder, buckets, bus, zerolog.Nop())
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		h.RegisterRoutes(r)
	})
	return r
}

func doJSON(t *testing.T, router chi.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func samplePortfolio() *robo.Portfolio {
	return &robo.Portfolio{
		Name:           "Growth Portfolio",
		RiskBucket:     json.Number("4"),
		ExpectedReturn: 0.14,
		ExpectedRisk:   0.18,
		Allocations: []robo.Allocation{
			{Ticker: "SPY", Percentage: 70},
			{Ticker: "BND", Percentage: 30},
		},
	}
}

func TestHandleCategories(t *testing.T) {
	router := setupRouter(&stubBuilder{}, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/portfolio/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Categories []struct {
			Name   string `json:"name"`
			Ticker string `json:"ticker"`
			Preset bool   `json:"preset"`
		} `json:"categories"`
		Buckets []string `json:"buckets"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Len(t, body.Categories, 15)
	assert.Len(t, body.Buckets, 5)

	presets := 0
	for _, c := range body.Categories {
		if c.Preset {
			presets++
		}
	}
	assert.Equal(t, 7, presets)
}

func TestHandleValidateSelection(t *testing.T) {
	router := setupRouter(&stubBuilder{}, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/portfolio/selection/validate",
		`{"categories": []}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result selection.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Errors, selection.ErrMsgEmpty)

	rec = doJSON(t, router, http.MethodPost, "/api/portfolio/selection/validate",
		`{"categories": ["Large Cap", "Broad U.S. Bond Market"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
}

func TestHandleToggleSelection(t *testing.T) {
	router := setupRouter(&stubBuilder{}, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/portfolio/selection/toggle",
		`{"categories": ["Large Cap"], "item": "Gold"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Categories []string `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Large Cap", "Gold"}, body.Categories)

	rec = doJSON(t, router, http.MethodPost, "/api/portfolio/selection/toggle",
		`{"categories": ["Large Cap", "Gold"], "item": "Gold"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Large Cap"}, body.Categories)
}

func TestHandleToggleSelectionOverLimit(t *testing.T) {
	router := setupRouter(&stubBuilder{}, nil)

	categories := []string{
		"Large Cap", "Mid Cap", "Small Cap", "International", "Emerging Markets",
		"Bonds", "Real Estate", "Gold", "Commodities", "Cryptocurrency",
	}
	payload, err := json.Marshal(map[string]interface{}{
		"categories": categories,
		"item":       "Hedge Funds",
	})
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodPost, "/api/portfolio/selection/toggle", string(payload))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		IsValid bool     `json:"isValid"`
		Errors  []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.IsValid)
	assert.Contains(t, body.Errors, selection.ErrMsgTooMany)
}

func TestHandleBuild(t *testing.T) {
	builder := &stubBuilder{portfolio: samplePortfolio()}
	router := setupRouter(builder, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/portfolio/build",
		`{"riskBucketCategory": "Growth", "categories": ["Large Cap", "Broad U.S. Bond Market"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "Growth", builder.lastRequest.RiskBucketCategory)
	assert.Equal(t, "SPY BND", builder.lastRequest.Tickers)

	var result struct {
		Name        string `json:"name"`
		RiskBucket  string `json:"riskBucket"`
		Allocations []struct {
			Ticker string  `json:"ticker"`
			Label  string  `json:"label"`
			Pct    float64 `json:"percentage"`
		} `json:"allocations"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Growth Portfolio", result.Name)
	assert.Equal(t, "4", result.RiskBucket)
	require.Len(t, result.Allocations, 2)
	assert.Equal(t, "Large Cap", result.Allocations[0].Label)
	assert.Equal(t, "Broad U.S. Bond Market", result.Allocations[1].Label)
}

func TestHandleBuildUsesSessionBucket(t *testing.T) {
	builder := &stubBuilder{portfolio: samplePortfolio()}
	router := setupRouter(builder, &stubBuckets{bucket: "Aggressive Growth"})

	rec := doJSON(t, router, http.MethodPost, "/api/portfolio/build",
		`{"sessionId": "abc", "categories": ["Large Cap"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Aggressive Growth", builder.lastRequest.RiskBucketCategory)
}

func TestHandleBuildSessionNotFound(t *testing.T) {
	builder := &stubBuilder{portfolio: samplePortfolio()}
	router := setupRouter(builder, &stubBuckets{err: assessment.ErrSessionNotFound})

	rec := doJSON(t, router, http.MethodPost, "/api/portfolio/build",
		`{"sessionId": "missing", "categories": ["Large Cap"]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleBuildInvalidSelection(t *testing.T) {
	router := setupRouter(&stubBuilder{}, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/portfolio/build",
		`{"riskBucketCategory": "Growth", "categories": []}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var result selection.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.IsValid)
}

func TestHandleBuildBackendFailure(t *testing.T) {
	builder := &stubBuilder{err: errors.New("connection refused")}
	router := setupRouter(builder, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/portfolio/build",
		`{"riskBucketCategory": "Growth", "categories": ["Large Cap"]}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
