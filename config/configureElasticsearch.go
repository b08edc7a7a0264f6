package config

import (
	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"
)

// InitElasticsearch initializes the Elasticsearch client used when
// SEARCH_BACKEND=elastic.
func InitElasticsearch() *elasticsearch.Client {
	cfg := elasticsearch.Config{
		Addresses: []string{GetEnvDefault("ELASTICSEARCH_ADDRESS", "http://localhost:9200")},
		Username:  GetEnv("ELASTICSEARCH_USERNAME"),
		Password:  GetEnv("ELASTICSEARCH_PASSWORD"),
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		Logger.Fatal("Error initializing Elasticsearch", zap.Error(err))
	}

	res, err := client.Info()
	if err != nil {
		Logger.Fatal("Error connecting to Elasticsearch", zap.Error(err))
	}
	defer res.Body.Close()

	Logger.Info("Elasticsearch is up and running", zap.String("status", res.Status()))
	return client
}
