package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

// CreateIndexIfNotExists creates index with the given mappings unless it already exists.
func CreateIndexIfNotExists(ctx context.Context, client *ESClientWrapper, index string, properties map[string]interface{}, logger *zap.Logger) error {
	log := logger.Named("elasticsearch_index_setup").With(zap.String("index_name", index))

	existsReq := esapi.IndicesExistsRequest{Index: []string{index}}
	res, err := existsReq.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error checking if index exists", zap.Error(err))
		return fmt.Errorf("error checking if index %s exists: %w", index, err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		log.Info("Index already exists")
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Error("Error checking if index exists, unexpected status", zap.String("status", res.Status()))
		return fmt.Errorf("error checking if index %s exists: status %s", index, res.Status())
	}

	mapping, err := json.Marshal(map[string]interface{}{
		"mappings": map[string]interface{}{"properties": properties},
	})
	if err != nil {
		return fmt.Errorf("error marshalling mapping for %s: %w", index, err)
	}
	log.Debug("Index mapping defined", zap.ByteString("mapping", mapping))

	createReq := esapi.IndicesCreateRequest{
		Index: index,
		Body:  bytes.NewReader(mapping),
	}
	createRes, err := createReq.Do(ctx, client.Client)
	if err != nil {
		log.Error("Error creating index", zap.Error(err))
		return fmt.Errorf("error creating index %s: %w", index, err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		log.Error("Failed to create index",
			zap.String("status", createRes.Status()),
			zap.Any("error_details", decodeErrorBody(createRes)),
		)
		return fmt.Errorf("failed to create index %s: status %s", index, createRes.Status())
	}

	log.Info("Index created successfully")
	return nil
}

// IndexDocument stores one JSON document under id.
func IndexDocument(ctx context.Context, client *ESClientWrapper, index, id string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("error marshalling document %s: %w", id, err)
	}
	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, client.Client)
	if err != nil {
		return fmt.Errorf("error indexing document %s into %s: %w", id, index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("error indexing document %s into %s: status %s", id, index, res.Status())
	}
	return nil
}
