package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"docqa/internal/domain"
)

// Store is a minimal REST client to Qdrant. Point IDs are derived
// deterministically from the record key so that upserting the same chunk
// twice overwrites the point instead of duplicating it.
type Store struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		client:     &http.Client{Timeout: timeout},
	}
}

// Init creates the collection if it does not exist. Qdrant answers 200 on
// a matching existing schema.
func (s *Store) Init(ctx context.Context) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.dimension,
			"distance": "Cosine",
		},
	}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body, nil)
}

func pointID(rec domain.Record) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(rec.Key())).String()
}

func (s *Store) Upsert(ctx context.Context, rec domain.Record) (domain.Record, error) {
	body := map[string]any{
		"points": []map[string]any{{
			"id":     pointID(rec),
			"vector": rec.Embedding,
			"payload": map[string]any{
				"namespace": rec.Namespace,
				"filename":  rec.SourceID,
				"text":      rec.Text,
			},
		}},
	}
	url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection)
	if err := s.putJSON(ctx, url, body, nil); err != nil {
		return domain.Record{}, err
	}
	return rec, nil
}

// FetchAll scrolls the whole namespace out of the collection in pages.
func (s *Store) FetchAll(ctx context.Context, namespace string) ([]domain.Record, error) {
	url := fmt.Sprintf("%s/collections/%s/points/scroll", s.url, s.collection)

	var recs []domain.Record
	var offset any
	for {
		req := map[string]any{
			"filter": map[string]any{
				"must": []map[string]any{
					{"key": "namespace", "match": map[string]any{"value": namespace}},
				},
			},
			"limit":        256,
			"with_payload": true,
			"with_vector":  true,
		}
		if offset != nil {
			req["offset"] = offset
		}
		var resp struct {
			Result struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
					Vector  []float64      `json:"vector"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		if err := s.postJSON(ctx, url, req, &resp); err != nil {
			return nil, err
		}
		for _, p := range resp.Result.Points {
			rec := domain.Record{Namespace: namespace, Embedding: p.Vector}
			if v, ok := p.Payload["filename"].(string); ok {
				rec.SourceID = v
			}
			if v, ok := p.Payload["text"].(string); ok {
				rec.Text = v
			}
			recs = append(recs, rec)
		}
		if resp.Result.NextPageOffset == nil {
			break
		}
		offset = resp.Result.NextPageOffset
	}
	if recs == nil {
		recs = []domain.Record{}
	}
	return recs, nil
}

func (s *Store) putJSON(ctx context.Context, url string, body, out any) error {
	return s.doJSON(ctx, http.MethodPut, url, body, out)
}

func (s *Store) postJSON(ctx context.Context, url string, body, out any) error {
	return s.doJSON(ctx, http.MethodPost, url, body, out)
}

func (s *Store) doJSON(ctx context.Context, method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
