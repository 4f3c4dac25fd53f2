package audit

import (
	"context"
	"time"

	"chantier_backend/internal/config"
	"chantier_backend/internal/platform/elasticsearch"

	"go.uber.org/zap"
)

// indexProperties is the mapping of the audit index.
var indexProperties = map[string]interface{}{
	"id":          map[string]interface{}{"type": "keyword"},
	"type":        map[string]interface{}{"type": "keyword"},
	"uid":         map[string]interface{}{"type": "keyword"},
	"actor":       map[string]interface{}{"type": "keyword"},
	"details":     map[string]interface{}{"type": "object", "enabled": false},
	"occurred_at": map[string]interface{}{"type": "date"},
}

type logRecorder struct {
	logger *zap.Logger
}

// NewLogRecorder writes events to the structured log only.
func NewLogRecorder(logger *zap.Logger) Recorder {
	return &logRecorder{logger: logger.Named("audit")}
}

func (r *logRecorder) Record(_ context.Context, event Event) error {
	r.logger.Info("Audit event",
		zap.String("event_id", event.ID),
		zap.String("type", string(event.Type)),
		zap.String("uid", event.UID),
		zap.String("actor", event.Actor),
		zap.Any("details", event.Details),
		zap.Time("occurred_at", event.OccurredAt),
	)
	return nil
}

type elasticRecorder struct {
	client *elasticsearch.ESClientWrapper
	index  string
	logger *zap.Logger
}

// NewElasticRecorder indexes events into index, creating it when missing.
func NewElasticRecorder(ctx context.Context, client *elasticsearch.ESClientWrapper, index string, logger *zap.Logger) (Recorder, error) {
	if err := elasticsearch.CreateIndexIfNotExists(ctx, client, index, indexProperties, logger); err != nil {
		return nil, err
	}
	return &elasticRecorder{client: client, index: index, logger: logger.Named("audit")}, nil
}

func (r *elasticRecorder) Record(ctx context.Context, event Event) error {
	if err := elasticsearch.IndexDocument(ctx, r.client, r.index, event.ID, event); err != nil {
		return err
	}
	r.logger.Debug("Audit event indexed", zap.String("event_id", event.ID), zap.String("type", string(event.Type)), zap.String("uid", event.UID))
	return nil
}

// NewRecorder picks the Elasticsearch recorder when ELASTICSEARCH_URL is set and
// falls back to the log recorder when it is unset or unreachable.
func NewRecorder(cfg *config.Config, logger *zap.Logger) Recorder {
	if cfg.ElasticsearchURL == "" {
		return NewLogRecorder(logger)
	}
	client, err := elasticsearch.NewClient(cfg, logger)
	if err != nil {
		logger.Warn("Elasticsearch unavailable, audit events will only be logged", zap.Error(err))
		return NewLogRecorder(logger)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	recorder, err := NewElasticRecorder(ctx, client, cfg.AuditIndex, logger)
	if err != nil {
		logger.Warn("Audit index setup failed, audit events will only be logged", zap.Error(err))
		return NewLogRecorder(logger)
	}
	return recorder
}
