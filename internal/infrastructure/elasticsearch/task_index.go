// Package elasticsearch keeps a per-owner full-text index of tasks.
package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/todo-organizer/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

var indexMapping = map[string]any{
	"mappings": map[string]any{
		"properties": map[string]any{
			"id":        map[string]any{"type": "keyword"},
			"owner":     map[string]any{"type": "keyword"},
			"listId":    map[string]any{"type": "keyword"},
			"title":     map[string]any{"type": "text"},
			"note":      map[string]any{"type": "text"},
			"updatedAt": map[string]any{"type": "date"},
		},
	},
}

type TaskIndex struct {
	client *es.Client
	index  string
}

func NewTaskIndex(client *es.Client, index string) *TaskIndex {
	return &TaskIndex{client: client, index: index}
}

type taskDoc struct {
	ID        string `json:"id"`
	Owner     string `json:"owner"`
	ListID    string `json:"listId"`
	Title     string `json:"title"`
	Note      string `json:"note"`
	UpdatedAt string `json:"updatedAt"`
}

func (x *TaskIndex) do(ctx context.Context, req esapi.Request) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.client)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("elasticsearch: %s", res.Status())
	}
	return nil
}

// EnsureIndex creates the index with its mapping when missing.
func (x *TaskIndex) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := esapi.IndicesExistsRequest{Index: []string{x.index}}.Do(c, x.client)
	if err != nil {
		return err
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	b, _ := json.Marshal(indexMapping)
	return x.do(ctx, esapi.IndicesCreateRequest{Index: x.index, Body: bytes.NewReader(b)})
}

func (x *TaskIndex) Index(ctx context.Context, t entity.Task) error {
	doc := taskDoc{
		ID:        t.ID,
		Owner:     t.OwnerID,
		ListID:    t.ListID,
		Title:     t.Title,
		Note:      t.Note,
		UpdatedAt: t.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return x.do(ctx, esapi.IndexRequest{Index: x.index, DocumentID: t.ID, Body: bytes.NewReader(b), Refresh: "false"})
}

// Delete removes one task; a missing document is not an error.
func (x *TaskIndex) Delete(ctx context.Context, id string) error {
	return x.do(ctx, esapi.DeleteRequest{Index: x.index, DocumentID: id})
}

func ownerFilter(ownerID string) map[string]any {
	return map[string]any{"term": map[string]any{"owner": ownerID}}
}

// DeleteByOwner removes every task document of an owner.
func (x *TaskIndex) DeleteByOwner(ctx context.Context, ownerID string) error {
	b, _ := json.Marshal(map[string]any{"query": ownerFilter(ownerID)})
	return x.do(ctx, esapi.DeleteByQueryRequest{Index: []string{x.index}, Body: bytes.NewReader(b)})
}

// Search returns ids of the owner's tasks matching q on title or note, best first.
func (x *TaskIndex) Search(ctx context.Context, ownerID, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{ownerFilter(ownerID)},
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     q,
						"fields":    []string{"title^2", "note"},
						"fuzziness": "AUTO",
					},
				},
			},
		},
		"size":    size,
		"_source": false,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := x.client.Search(
		x.client.Search.WithContext(c),
		x.client.Search.WithIndex(x.index),
		x.client.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
