// Package extract calls the external document-extraction service and pairs
// its raw output with tank match candidates. Extraction itself (OCR, table
// detection) is an opaque remote step; this package only handles transport
// and shaping.
package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/camin-energy/tankflow/internal/model"
	"github.com/camin-energy/tankflow/internal/service"
)

// Config holds extraction service settings.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// Client implements service.Extractor against an HTTP extraction endpoint.
type Client struct {
	httpClient *http.Client
	matcher    service.TankMatcher
	endpoint   string
	apiKey     string
}

var _ service.Extractor = (*Client)(nil)

// NewClient creates an extraction client. The matcher is applied to every
// extracted record to attach confidence-scored tank candidates.
func NewClient(cfg Config, matcher service.TankMatcher) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("extraction endpoint is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:   cfg.APIKey,
		matcher:  matcher,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// extractRequest is the wire request for one document.
type extractRequest struct {
	Filename string `json:"filename"`
	Content  string `json:"content"` // base64
}

// extractResponse is the wire response for one document.
type extractResponse struct {
	Records []rawRecord `json:"records"`
	Errors  []string    `json:"errors"`
}

type rawRecord struct {
	TankName     string  `json:"tank_name"`
	MovementDate string  `json:"movement_date"`
	LevelBefore  float64 `json:"level_before"`
	LevelAfter   float64 `json:"level_after"`
	Quantity     float64 `json:"movement_qty"`
}

// ExtractFromDocuments sends each document to the extraction service and
// returns one result per document. A document that fails to read or extract
// yields a result carrying its errors; it never aborts the rest of the
// batch. Only context cancellation fails the whole call.
func (c *Client) ExtractFromDocuments(ctx context.Context, paths []string) ([]model.ExtractionResult, error) {
	results := make([]model.ExtractionResult, 0, len(paths))

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}
		results = append(results, c.extractOne(ctx, path))
	}
	return results, nil
}

func (c *Client) extractOne(ctx context.Context, path string) model.ExtractionResult {
	filename := filepath.Base(path)
	result := model.ExtractionResult{Filename: filename}

	content, err := os.ReadFile(path)
	if err != nil {
		result.ExtractionErrors = append(result.ExtractionErrors, fmt.Sprintf("failed to read document: %v", err))
		return result
	}

	resp, err := c.post(ctx, extractRequest{
		Filename: filename,
		Content:  base64.StdEncoding.EncodeToString(content),
	})
	if err != nil {
		result.ExtractionErrors = append(result.ExtractionErrors, err.Error())
		return result
	}

	result.ExtractionErrors = append(result.ExtractionErrors, resp.Errors...)

	records := make([]model.ExtractedMovement, 0, len(resp.Records))
	for i, raw := range resp.Records {
		rec := model.ExtractedMovement{
			TankName:    raw.TankName,
			LevelBefore: raw.LevelBefore,
			LevelAfter:  raw.LevelAfter,
			Quantity:    raw.Quantity,
			RowIndex:    i,
		}
		if raw.MovementDate != "" {
			date, dateErr := model.ParseCivilDate(raw.MovementDate)
			if dateErr != nil {
				result.ExtractionErrors = append(result.ExtractionErrors,
					fmt.Sprintf("row %d: %v", i, dateErr))
			} else {
				rec.Date = date
			}
		}
		records = append(records, rec)
	}

	result.Records = c.matcher.Attach(records)
	return result
}

func (c *Client) post(ctx context.Context, reqBody extractRequest) (*extractResponse, error) {
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/extract", strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction service error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed extractResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	return &parsed, nil
}
