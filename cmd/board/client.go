package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/CazadorHT/realestate-crm-sub001/pkg/models"
)

// APIClient talks to the pipeline engine's HTTP API. It implements
// kanban.StageSetter so the board can commit drag gestures through it.
type APIClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewAPIClient creates a client for the given server.
func NewAPIClient(cfg *Config) *APIClient {
	return &APIClient{
		baseURL: cfg.ServerURL,
		token:   cfg.Token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// ListLeads fetches the full lead collection for the board.
func (c *APIClient) ListLeads(ctx context.Context) ([]models.Lead, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/leads", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leads: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError(resp)
	}

	var leads []models.Lead
	if err := json.NewDecoder(resp.Body).Decode(&leads); err != nil {
		return nil, fmt.Errorf("failed to decode leads: %w", err)
	}
	return leads, nil
}

// SetStage commits a stage change. Implements kanban.StageSetter.
func (c *APIClient) SetStage(ctx context.Context, leadID uuid.UUID, stage models.LeadStage) error {
	body, err := json.Marshal(map[string]string{"stage": string(stage)})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/leads/%s/stage", c.baseURL, leadID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to set stage: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return c.apiError(resp)
	}
	return nil
}

func (c *APIClient) apiError(resp *http.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Message != "" {
		return fmt.Errorf("server rejected request (%d): %s", resp.StatusCode, payload.Message)
	}
	return fmt.Errorf("server rejected request: status %d", resp.StatusCode)
}
