// Package store pushes extracted vendor records to a downstream vendor
// directory service over HTTP.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tilbrook/vendex/internal/vendor"
)

// Client communicates with the vendor directory HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// saveRequest is the body for PUT /documents/{docID}/vendors.
type saveRequest struct {
	Vendors  []vendor.Record `json:"vendors"`
	Source   string          `json:"source"`
	SavedAt  string          `json:"saved_at"`
	Filename string          `json:"filename,omitempty"`
}

// SaveVendors stores the extracted records under a document ID. The
// directory treats repeated saves for the same document as replacement.
func (c *Client) SaveVendors(ctx context.Context, docID, filename string, records []vendor.Record) error {
	body, err := json.Marshal(saveRequest{
		Vendors:  records,
		Source:   "vendex:" + docID,
		SavedAt:  time.Now().UTC().Format(time.RFC3339),
		Filename: filename,
	})
	if err != nil {
		return fmt.Errorf("marshal vendors: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/documents/"+docID+"/vendors", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("save vendors: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("save vendors %s: status %d: %s", docID, resp.StatusCode, string(respBody))
	}
	return nil
}

// GetVendors retrieves previously saved records for a document. A missing
// document returns nil without error.
func (c *Client) GetVendors(ctx context.Context, docID string) ([]vendor.Record, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/documents/"+docID+"/vendors", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("get vendors: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("get vendors %s: status %d: %s", docID, resp.StatusCode, string(respBody))
	}

	var result struct {
		Vendors []vendor.Record `json:"vendors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode vendors: %w", err)
	}
	return result.Vendors, nil
}

// Close releases any resources (currently a no-op).
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
