package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"

	"github.com/Skotchmaster/pet_shop/internal/broadcast"
	"github.com/Skotchmaster/pet_shop/internal/models"
)

type OrderDoc struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id,omitempty"`
	Status     string    `json:"status"`
	Total      float64   `json:"total"`
	ProductIDs []string  `json:"product_ids"`
	ReturnNote string    `json:"return_reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func DocFromOrder(o *models.Order) OrderDoc {
	d := OrderDoc{
		ID:         o.ID.String(),
		Status:     string(o.Status),
		ProductIDs: make([]string, 0, len(o.Items)),
		CreatedAt:  o.CreatedAt.UTC(),
	}
	if o.UserID != nil {
		d.UserID = o.UserID.String()
	}
	if o.Summary.Total != nil {
		d.Total = *o.Summary.Total
	}
	for _, it := range o.Items {
		d.ProductIDs = append(d.ProductIDs, it.ProductID.String())
	}
	if o.ReturnRequest != nil {
		d.ReturnNote = o.ReturnRequest.ReturnReason
	}
	return d
}

var orderMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":            map[string]any{"type": "keyword"},
			"user_id":       map[string]any{"type": "keyword"},
			"status":        map[string]any{"type": "keyword"},
			"total":         map[string]any{"type": "double"},
			"product_ids":   map[string]any{"type": "keyword"},
			"return_reason": map[string]any{"type": "text"},
			"created_at":    map[string]any{"type": "date"},
		},
	},
}

type OrderIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewOrderIndex(client *elasticsearch.Client, index string) *OrderIndex {
	return &OrderIndex{ES: client, Index: index}
}

func responseErr(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("%s: %s: %s", op, res.Status(), bytes.TrimSpace(body))
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (x *OrderIndex) EnsureIndex(ctx context.Context) error {
	res, err := x.ES.Indices.Exists([]string{x.Index}, x.ES.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(orderMapping); err != nil {
		return err
	}
	res, err = x.ES.Indices.Create(x.Index,
		x.ES.Indices.Create.WithContext(ctx),
		x.ES.Indices.Create.WithBody(&buf),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseErr("create index", res)
	}
	return nil
}

func (x *OrderIndex) Put(ctx context.Context, doc OrderDoc) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return err
	}
	res, err := x.ES.Index(x.Index, &buf,
		x.ES.Index.WithContext(ctx),
		x.ES.Index.WithDocumentID(doc.ID),
	)
	if err != nil {
		return fmt.Errorf("index order: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseErr("index order", res)
	}
	return nil
}

// Search matches q against status, return reason and ids. An empty q
// lists everything, newest first.
func (x *OrderIndex) Search(ctx context.Context, q string, from, size int) (int64, []OrderDoc, error) {
	query := map[string]any{"match_all": map[string]any{}}
	if q != "" {
		query = map[string]any{
			"multi_match": map[string]any{
				"query":   q,
				"fields":  []string{"status^2", "return_reason", "id", "user_id", "product_ids"},
				"lenient": true,
			},
		}
	}
	body := map[string]any{
		"query": query,
		"from":  from,
		"size":  size,
		"sort":  []any{map[string]any{"created_at": map[string]any{"order": "desc"}}},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}
	res, err := x.ES.Search(
		x.ES.Search.WithContext(ctx),
		x.ES.Search.WithIndex(x.Index),
		x.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search orders: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseErr("search orders", res)
	}

	var r struct {
		Hits struct {
			Total struct{ Value int64 } `json:"total"`
			Hits  []struct {
				Source OrderDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search: %w", err)
	}

	docs := make([]OrderDoc, len(r.Hits.Hits))
	for i, h := range r.Hits.Hits {
		docs[i] = h.Source
	}
	return r.Hits.Total.Value, docs, nil
}

type OrderLoader interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// Indexer is a broadcast sink that reindexes the order behind each event.
type Indexer struct {
	Orders OrderLoader
	Index  *OrderIndex
}

func (i *Indexer) Deliver(ctx context.Context, ev broadcast.Event) error {
	if ev.Type == broadcast.EventBookingUpdated {
		return nil
	}
	o, err := i.Orders.GetOrder(ctx, ev.OrderID)
	if err != nil {
		return fmt.Errorf("load order %s: %w", ev.OrderID, err)
	}
	return i.Index.Put(ctx, DocFromOrder(o))
}
