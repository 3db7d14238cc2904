package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"shop/internal/usecase"
)

// FakeStoreClient は外部カタログAPI（FakeStore互換）のクライアント。
// タイムアウトは固定の上限を必ず持つ。
type FakeStoreClient struct {
	baseURL string
	http    *http.Client
}

// DI
func NewFakeStoreClient(baseURL string, timeout time.Duration) *FakeStoreClient {
	return &FakeStoreClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

type fakeStoreProduct struct {
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
}

// Fetch は商品一覧を取得する。非2xxもネットワークエラーも同じ「取得失敗」。
func (c *FakeStoreClient) Fetch(ctx context.Context) ([]usecase.CatalogRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("catalog api returned status %d", resp.StatusCode)
	}

	var raw []fakeStoreProduct
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	records := make([]usecase.CatalogRecord, 0, len(raw))
	for _, p := range raw {
		records = append(records, usecase.CatalogRecord{
			Title:       p.Title,
			Price:       p.Price,
			Description: p.Description,
			Category:    p.Category,
			Image:       p.Image,
		})
	}

	return records, nil
}
