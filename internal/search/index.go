package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/Skotchmaster/general_store/internal/models"
)

// Indexer keeps product documents searchable. Search returns matching product
// ids ranked by relevance; the caller loads rows from the database.
type Indexer interface {
	Index(ctx context.Context, products ...models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, q string, from, size int) (total int64, ids []uuid.UUID, err error)
}

type Document struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	SKU         string `json:"sku"`
	IsActive    bool   `json:"is_active"`
	IsFeatured  bool   `json:"is_featured"`
	Price       string `json:"price"`
}

func DocumentFor(p models.Product) Document {
	doc := Document{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		SKU:         p.SKU,
		IsActive:    p.IsActive,
		IsFeatured:  p.IsFeatured,
		Price:       p.Price.StringFixed(2),
	}
	if p.Category != nil {
		doc.Category = p.Category.Name
	}
	return doc
}

type Elastic struct {
	es    *elasticsearch.Client
	index string
}

func NewElastic(es *elasticsearch.Client, index string) *Elastic {
	return &Elastic{es: es, index: index}
}

func (e *Elastic) Index(ctx context.Context, products ...models.Product) error {
	if len(products) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range products {
		meta := map[string]any{"index": map[string]any{"_index": e.index, "_id": p.ID.String()}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(DocumentFor(p)); err != nil {
			return err
		}
	}

	res, err := e.es.Bulk(&buf, e.es.Bulk.WithContext(ctx), e.es.Bulk.WithIndex(e.index))
	if err != nil {
		return fmt.Errorf("es bulk: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("es bulk: %s: %s", res.Status(), readBody(res.Body))
	}

	var out struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return fmt.Errorf("es bulk decode: %w", err)
	}
	if out.Errors {
		return fmt.Errorf("es bulk: some documents were rejected")
	}
	return nil
}

func (e *Elastic) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := e.es.Delete(e.index, id.String(), e.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

func (e *Elastic) Search(ctx context.Context, q string, from, size int) (int64, []uuid.UUID, error) {
	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q,
						"fields":    []string{"name^3", "category^2", "description", "sku"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{"term": map[string]any{"is_active": true}},
			},
		},
		"_source": false,
		"from":    from,
		"size":    size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := e.es.Search(
		e.es.Search.WithContext(ctx),
		e.es.Search.WithIndex(e.index),
		e.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("es search: %s: %s", res.Status(), readBody(res.Body))
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es search decode: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id, err := uuid.Parse(h.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return r.Hits.Total.Value, ids, nil
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}
