// Package client talks to a reservation backend over its tool endpoints.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"padelchat/internal/apperr"
	"padelchat/internal/config"
	"padelchat/internal/logger"
	"padelchat/internal/metrics"
	"padelchat/internal/model"
)

// ToolsClient calls POST {baseURL}/mcp/tools/{tool} and unwraps the
// {success, data, message, error} envelope
type ToolsClient struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// NewToolsClient creates a client for the backend at cfg.BaseURL
func NewToolsClient(cfg config.BackendConfig, log logger.Logger) *ToolsClient {
	return &ToolsClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// ListCourts calls list_courts
func (c *ToolsClient) ListCourts(ctx context.Context) ([]model.Court, error) {
	var courts []model.Court
	if err := c.call(ctx, "list_courts", struct{}{}, &courts); err != nil {
		return nil, err
	}
	return courts, nil
}

// CheckAvailability calls check_availability
func (c *ToolsClient) CheckAvailability(ctx context.Context, courtID, date string) (*model.Availability, error) {
	var availability model.Availability
	req := model.CheckAvailabilityRequest{CourtID: courtID, Date: date}
	if err := c.call(ctx, "check_availability", req, &availability); err != nil {
		return nil, err
	}
	return &availability, nil
}

// CreateReservation calls create_reservation
func (c *ToolsClient) CreateReservation(ctx context.Context, req model.CreateReservationRequest) (*model.Reservation, error) {
	var reservation model.Reservation
	if err := c.call(ctx, "create_reservation", req, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ListReservations calls list_my_reservations
func (c *ToolsClient) ListReservations(ctx context.Context, userName string) ([]model.Reservation, error) {
	var reservations []model.Reservation
	req := model.ListReservationsRequest{UserName: userName}
	if err := c.call(ctx, "list_my_reservations", req, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// CancelReservation calls cancel_reservation
func (c *ToolsClient) CancelReservation(ctx context.Context, reservationID string) (*model.Reservation, error) {
	var reservation model.Reservation
	req := model.CancelReservationRequest{ReservationID: reservationID}
	if err := c.call(ctx, "cancel_reservation", req, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (c *ToolsClient) call(ctx context.Context, tool string, payload, out any) (err error) {
	start := time.Now()
	defer func() {
		status := "ok"
		switch {
		case apperr.Is(err, apperr.CodeBackendRejected):
			status = "rejected"
		case err != nil:
			status = "unavailable"
		}
		metrics.BackendRequests.WithLabelValues(tool, status).Inc()
		metrics.BackendRequestDuration.WithLabelValues(tool).Observe(time.Since(start).Seconds())
	}()

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return apperr.BackendUnavailable(tool, fmt.Errorf("failed to marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/mcp/tools/%s", c.baseURL, tool)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return apperr.BackendUnavailable(tool, fmt.Errorf("failed to create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apperr.BackendUnavailable(tool, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.BackendUnavailable(tool, fmt.Errorf("failed to read response: %w", err))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return apperr.BackendUnavailable(tool,
			fmt.Errorf("unexpected response with status %d: %s", resp.StatusCode, truncate(string(body), 200)))
	}

	if !env.Success {
		c.log.Warn("backend rejected tool call", map[string]interface{}{
			"tool":   tool,
			"status": resp.StatusCode,
			"error":  env.Error,
		})
		return apperr.BackendRejected(env.Error)
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return apperr.BackendUnavailable(tool, fmt.Errorf("failed to decode data: %w", err))
		}
	}

	c.log.Debug("tool call succeeded", map[string]interface{}{
		"tool":        tool,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
