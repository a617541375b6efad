// Package robo provides a client for the robo-advisor backend that
// serves risk questionnaires, scores submissions, and builds portfolios.
package robo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aristath/advisor/internal/clientdata"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Client for the robo-advisor backend API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
	cacheRepo  *clientdata.Repository
}

// NewClient creates a new robo backend client.
// cacheRepo is optional - if nil, questionnaire caching is disabled.
func NewClient(baseURL string, cacheRepo *clientdata.Repository, log zerolog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log.With().Str("client", "robo").Logger(),
		cacheRepo:  cacheRepo,
	}
}

// apiError is the backend's error body shape.
type apiError struct {
	Detail string `json:"detail"`
}

// GetQuestions fetches the questionnaire for a kind.
// Fresh cache is served first; on API failure stale cache is used as a
// fallback (stale questions > no questions).
func (c *Client) GetQuestions(ctx context.Context, kind Kind) (*Questionnaire, error) {
	cacheKey := string(kind)

	if c.cacheRepo != nil {
		data, err := c.cacheRepo.GetIfFresh("robo_questions", cacheKey)
		if err == nil && data != nil {
			var cached Questionnaire
			if err := json.Unmarshal(data, &cached); err == nil {
				c.log.Debug().Str("kind", cacheKey).Msg("Cache hit")
				return &cached, nil
			}
		}
	}

	url := fmt.Sprintf("%s/risk/questions/%s", c.baseURL, kind)
	c.log.Debug().Str("url", url).Msg("Fetching questionnaire")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if stale, ok := c.getStaleQuestions(cacheKey); ok {
			c.log.Warn().Err(err).Str("kind", cacheKey).Msg("API failed, using stale cached questionnaire")
			return stale, nil
		}
		return nil, fmt.Errorf("questionnaire request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if stale, ok := c.getStaleQuestions(cacheKey); ok {
			c.log.Warn().Int("status", resp.StatusCode).Str("kind", cacheKey).Msg("API error, using stale cached questionnaire")
			return stale, nil
		}
		return nil, c.decodeError(resp)
	}

	var questionnaire Questionnaire
	if err := json.NewDecoder(resp.Body).Decode(&questionnaire); err != nil {
		return nil, fmt.Errorf("failed to parse questionnaire: %w", err)
	}

	if c.cacheRepo != nil {
		if err := c.cacheRepo.Store("robo_questions", cacheKey, questionnaire, clientdata.TTLQuestionnaire); err != nil {
			c.log.Warn().Err(err).Str("kind", cacheKey).Msg("Failed to cache questionnaire")
		}
	}

	c.log.Info().Str("kind", cacheKey).Int("questions", len(questionnaire.Questions)).Msg("Fetched questionnaire")
	return &questionnaire, nil
}

// getStaleQuestions retrieves a cached questionnaire even if expired.
func (c *Client) getStaleQuestions(cacheKey string) (*Questionnaire, bool) {
	if c.cacheRepo == nil {
		return nil, false
	}

	data, err := c.cacheRepo.Get("robo_questions", cacheKey)
	if err != nil || data == nil {
		return nil, false
	}

	var cached Questionnaire
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, false
	}

	return &cached, true
}

// GetAllQuestions fetches both questionnaires concurrently.
// If either fetch fails the whole call fails; no partial result is
// returned.
func (c *Client) GetAllQuestions(ctx context.Context) (*QuestionnairePair, error) {
	var pair QuestionnairePair

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := c.GetQuestions(gctx, KindTolerance)
		if err != nil {
			return fmt.Errorf("tolerance: %w", err)
		}
		pair.Tolerance = q
		return nil
	})
	g.Go(func() error {
		q, err := c.GetQuestions(gctx, KindCapacity)
		if err != nil {
			return fmt.Errorf("capacity: %w", err)
		}
		pair.Capacity = q
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &pair, nil
}

// SubmitAnswers submits a completed questionnaire for scoring.
func (c *Client) SubmitAnswers(ctx context.Context, kind Kind, request ScoreRequest) (*ScoreResult, error) {
	url := fmt.Sprintf("%s/risk/score/%s", c.baseURL, kind)

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal answers: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("score request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	var result ScoreResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse score: %w", err)
	}

	c.log.Info().
		Str("kind", string(kind)).
		Float64("total_score", result.TotalScore).
		Str("category", result.Category).
		Msg("Scored questionnaire")

	return &result, nil
}

// SubmitAllAnswers scores both questionnaires concurrently.
// A failure on either side fails the whole submission; the caller must
// not commit a partial result.
func (c *Client) SubmitAllAnswers(ctx context.Context, tolerance, capacity ScoreRequest) (*ScorePair, error) {
	var pair ScorePair

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s, err := c.SubmitAnswers(gctx, KindTolerance, tolerance)
		if err != nil {
			return fmt.Errorf("tolerance: %w", err)
		}
		pair.Tolerance = s
		return nil
	})
	g.Go(func() error {
		s, err := c.SubmitAnswers(gctx, KindCapacity, capacity)
		if err != nil {
			return fmt.Errorf("capacity: %w", err)
		}
		pair.Capacity = s
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &pair, nil
}

// BuildPortfolio requests an optimized portfolio for a risk bucket and
// ticker selection.
func (c *Client) BuildPortfolio(ctx context.Context, request BuildRequest) (*Portfolio, error) {
	url := fmt.Sprintf("%s/portfolio/build", c.baseURL)

	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("portfolio build request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp)
	}

	var portfolio Portfolio
	if err := json.NewDecoder(resp.Body).Decode(&portfolio); err != nil {
		return nil, fmt.Errorf("failed to parse portfolio: %w", err)
	}

	c.log.Info().
		Str("name", portfolio.Name).
		Int("allocations", len(portfolio.Allocations)).
		Msg("Built portfolio")

	return &portfolio, nil
}

// decodeError extracts the backend's detail message from an error
// response, falling back to the bare status code.
func (c *Client) decodeError(resp *http.Response) error {
	var apiErr apiError
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Detail != "" {
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, apiErr.Detail)
	}
	return fmt.Errorf("API returned status %d", resp.StatusCode)
}
