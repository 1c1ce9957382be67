// Package peopledata habla con la API de enriquecimiento de personas de People Data Labs.
package peopledata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"reddit-persona/internal/domain"
)

var (
	// ErrNoMatch indica que la API respondio pero sin un match valido.
	ErrNoMatch = errors.New("people data: no match")
	// ErrStatus indica una respuesta HTTP fuera de 2xx.
	ErrStatus = errors.New("people data: http error")
)

// EnrichRequest es el cuerpo de la llamada: identificadores + politica de match.
type EnrichRequest struct {
	Params        domain.EnrichmentQuery `json:"params"`
	MinLikelihood float64                `json:"min_likelihood"`
	Required      []string               `json:"required"`
}

type enrichResponse struct {
	Status     *int                `json:"status"`
	Likelihood float64             `json:"likelihood"`
	Data       *domain.PersonMatch `json:"data"`
}

// Client llama al endpoint de enrich con timeout acotado.
type Client struct {
	url    string
	apiKey string
	client *http.Client
}

func NewClient(url, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:    url,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

// Enrich hace una sola llamada; cualquier resultado que no sea status=200 con data es un error.
func (c *Client) Enrich(ctx context.Context, req EnrichRequest) (domain.PersonMatch, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.PersonMatch{}, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return domain.PersonMatch{}, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return domain.PersonMatch{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.PersonMatch{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.PersonMatch{}, fmt.Errorf("%w: status=%d", ErrStatus, resp.StatusCode)
	}

	var er enrichResponse
	if err := json.Unmarshal(respBody, &er); err != nil {
		return domain.PersonMatch{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if er.Status == nil || *er.Status != http.StatusOK {
		status := 0
		if er.Status != nil {
			status = *er.Status
		}
		return domain.PersonMatch{}, fmt.Errorf("%w: status=%d", ErrNoMatch, status)
	}
	if er.Data == nil {
		return domain.PersonMatch{}, fmt.Errorf("%w: empty data", ErrNoMatch)
	}
	return *er.Data, nil
}
