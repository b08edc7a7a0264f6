package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"study-abroad-backend/config"
	"study-abroad-backend/utils"

	es "github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

// ProgramsIndexName is the elasticsearch index holding ProgramDoc documents.
const ProgramsIndexName = "programs_v1"

const programsMapping = `{"settings":{"number_of_shards":1},"mappings":{"dynamic":"strict","properties":{
	"id":{"type":"keyword"},"title":{"type":"text"},"description":{"type":"text"},
	"program_type":{"type":"keyword"},"university":{"type":"text"},"country":{"type":"text"},
	"mentor":{"type":"text"}
}}}`

type ElasticIndex struct {
	client *es.Client
	index  string
}

func NewElasticIndex(client *es.Client) *ElasticIndex {
	return &ElasticIndex{client: client, index: ProgramsIndexName}
}

// EnsureIndex creates the programs index with its mapping when it does not exist.
func (e *ElasticIndex) EnsureIndex(ctx context.Context) error {
	exists, err := e.client.Indices.Exists([]string{e.index}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", e.index, err)
	}
	exists.Body.Close()
	if exists.StatusCode == 200 {
		return nil
	}

	res, err := e.client.Indices.Create(e.index,
		e.client.Indices.Create.WithBody(strings.NewReader(programsMapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", e.index, err)
	}
	if _, err := utils.ReadResponseBody(res); err != nil {
		return fmt.Errorf("create index %s: %w", e.index, err)
	}
	config.Logger.Info("Created elasticsearch index", zap.String("index", e.index))
	return nil
}

func (e *ElasticIndex) IndexProgram(ctx context.Context, doc ProgramDoc) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := e.client.Index(e.index, bytes.NewReader(body),
		e.client.Index.WithDocumentID(doc.ID),
		e.client.Index.WithRefresh("true"),
		e.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index program %s: %w", doc.ID, err)
	}
	if _, err := utils.ReadResponseBody(res); err != nil {
		config.Logger.Error("Failed to index program", zap.String("program_id", doc.ID), zap.Error(err))
		return err
	}
	return nil
}

func (e *ElasticIndex) IndexPrograms(ctx context.Context, docs []ProgramDoc) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, doc := range docs {
		meta, _ := json.Marshal(map[string]map[string]string{"index": {"_index": e.index, "_id": doc.ID}})
		body, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		buf.Write(meta)
		buf.WriteByte('\n')
		buf.Write(body)
		buf.WriteByte('\n')
	}

	res, err := e.client.Bulk(bytes.NewReader(buf.Bytes()),
		e.client.Bulk.WithRefresh("true"),
		e.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("bulk index programs: %w", err)
	}
	raw, err := utils.ReadResponseBody(res)
	if err != nil {
		return err
	}

	var parsed struct {
		Errors bool `json:"errors"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil && parsed.Errors {
		return fmt.Errorf("bulk index programs: some documents were rejected")
	}
	config.Logger.Info("Bulk indexed programs into Elasticsearch", zap.Int("count", len(docs)))
	return nil
}

func (e *ElasticIndex) DeleteProgram(ctx context.Context, id string) error {
	res, err := e.client.Delete(e.index, id,
		e.client.Delete.WithRefresh("true"),
		e.client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("delete program %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete program %s: %s", id, res.Status())
	}
	return nil
}

func (e *ElasticIndex) SearchPrograms(ctx context.Context, q string, size int) ([]Hit, error) {
	if size <= 0 {
		size = 20
	}

	var body map[string]interface{}
	if strings.TrimSpace(q) == "" {
		body = map[string]interface{}{"size": size, "query": map[string]interface{}{"match_all": map[string]interface{}{}}}
	} else {
		body = map[string]interface{}{
			"size": size,
			"query": map[string]interface{}{
				"multi_match": map[string]interface{}{
					"query":     q,
					"fields":    []string{"title^10", "university^6", "country^5", "program_type^4", "description^2", "mentor"},
					"fuzziness": "AUTO",
				},
			},
		}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	res, err := e.client.Search(
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(bytes.NewReader(payload)),
		e.client.Search.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("search programs: %w", err)
	}
	raw, err := utils.ReadResponseBody(res)
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID    string  `json:"_id"`
				Score float64 `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, Hit{ID: h.ID, Score: h.Score})
	}
	return hits, nil
}

// Reset deletes and recreates the programs index.
func (e *ElasticIndex) Reset(ctx context.Context) error {
	res, err := e.client.Indices.Delete([]string{e.index}, e.client.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete index %s: %w", e.index, err)
	}
	res.Body.Close()
	return e.EnsureIndex(ctx)
}
