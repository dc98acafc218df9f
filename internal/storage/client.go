// Package storage implements domain.ObjectStore against a Supabase-style
// object storage REST API.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/abbrevlab/annotab/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "Annotab/1.0"

	// Backend default page size when the caller passes limit=0.
	defaultListLimit = 100
)

// Client implements domain.ObjectStore over HTTP.
type Client struct {
	baseURL    string
	bucket     string
	serviceKey string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a storage client for one bucket. baseURL is the storage
// API root (e.g. https://xyz.supabase.co/storage/v1).
func NewClient(baseURL, bucket, serviceKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
}

// listRequest is the JSON body of a list call.
type listRequest struct {
	Prefix string   `json:"prefix"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
	SortBy listSort `json:"sortBy"`
}

type listSort struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

// objectDTO is one entry of a list response.
type objectDTO struct {
	Name      string `json:"name"`
	UpdatedAt string `json:"updated_at"`
	Metadata  struct {
		Size int64 `json:"size"`
	} `json:"metadata"`
}

// List returns bucket entries under prefix, sorted by name.
func (c *Client) List(ctx context.Context, prefix string, limit int) ([]domain.ObjectInfo, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	reqBody := listRequest{
		Prefix: prefix,
		Limit:  limit,
		SortBy: listSort{Column: "name", Order: "asc"},
	}
	body, err := c.doRequest(ctx, http.MethodPost, "/object/list/"+c.bucket, jsonBody(reqBody), "application/json")
	if err != nil {
		return nil, err
	}

	var dtos []objectDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		c.logger.Error("list parse error", "error", err, "bodyLen", len(body))
		return nil, fmt.Errorf("failed to parse list response: %w", err)
	}

	infos := make([]domain.ObjectInfo, 0, len(dtos))
	for _, dto := range dtos {
		info := domain.ObjectInfo{
			Name: dto.Name,
			Size: dto.Metadata.Size,
		}
		if ts, err := time.Parse(time.RFC3339, dto.UpdatedAt); err == nil {
			info.UpdatedAt = ts
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Download returns the raw bytes of a blob.
func (c *Client) Download(ctx context.Context, name string) ([]byte, error) {
	return c.doRequest(ctx, http.MethodGet, "/object/"+c.bucket+"/"+escapePath(name), nil, "")
}

// Upload stores data under name. With upsert set the backend replaces any
// existing blob of the same name instead of rejecting the write.
func (c *Client) Upload(ctx context.Context, name string, data []byte, upsert bool) error {
	reqURL := c.baseURL + "/object/" + c.bucket + "/" + escapePath(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, "text/csv")
	if upsert {
		req.Header.Set("x-upsert", "true")
	}

	c.logger.Debug("storage upload", "name", name, "bytes", len(data), "upsert", upsert)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("storage upload failed", "name", name, "error", err)
		return domain.ErrStorageOffline
	}
	defer resp.Body.Close()

	return c.checkStatus(resp)
}

// removeRequest is the JSON body of a delete call.
type removeRequest struct {
	Prefixes []string `json:"prefixes"`
}

// Remove deletes the named blobs.
func (c *Client) Remove(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	_, err := c.doRequest(ctx, http.MethodDelete, "/object/"+c.bucket, jsonBody(removeRequest{Prefixes: names}), "application/json")
	return err
}

// doRequest performs an authenticated request and returns the response body.
func (c *Client) doRequest(ctx context.Context, method, path string, body io.Reader, contentType string) ([]byte, error) {
	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, contentType)

	c.logger.Debug("storage request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("storage request failed", "method", method, "url", reqURL, "error", err)
		return nil, domain.ErrStorageOffline
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if err := c.statusError(resp.StatusCode, respBody); err != nil {
		return nil, err
	}
	return respBody, nil
}

func (c *Client) setHeaders(req *http.Request, contentType string) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
}

func (c *Client) checkStatus(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return c.statusError(resp.StatusCode, body)
}

func (c *Client) statusError(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.ErrAuthFailed
	case status == http.StatusNotFound:
		return domain.ErrObjectNotFound
	case status >= 300:
		c.logger.Error("storage request error", "status", status, "body", string(body))
		return fmt.Errorf("unexpected status code: %d", status)
	}
	return nil
}

func jsonBody(v interface{}) io.Reader {
	data, _ := json.Marshal(v)
	return bytes.NewReader(data)
}

// escapePath escapes each path segment of an object name without touching
// the separators.
func escapePath(name string) string {
	segments := strings.Split(name, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}
