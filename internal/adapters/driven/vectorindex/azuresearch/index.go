// Package azuresearch implements driven.VectorIndex on Azure AI Search.
package azuresearch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/ailab/internal/adapters/driven/oauth"
	"github.com/custodia-labs/ailab/internal/adapters/driven/restclient"
	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/logger"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// Default configuration values.
const (
	DefaultTimeout = 60 * time.Second

	// VectorField holds the document embedding.
	VectorField = "embedding"

	algorithmName = "default-hnsw"
	profileName   = "default-profile"
	serviceName   = "azure-search"
)

// selectFields are returned by Search. The vector is never fetched back.
const selectFields = "id,title,content,category,source"

// Config holds configuration for the Azure AI Search index.
type Config struct {
	// Endpoint is the search service URL, e.g. https://name.search.windows.net.
	Endpoint string

	// APIKey is the admin key. Optional when Entra is set.
	APIKey string

	// IndexName is the index to create and query.
	IndexName string

	// APIVersion is the REST API version.
	APIVersion string

	// Dimensions is the embedding vector size declared in the schema.
	Dimensions int

	// Entra holds service principal credentials used instead of APIKey.
	Entra oauth.EntraConfig

	// HTTPClient overrides the default client (rate limiting, tests).
	HTTPClient *http.Client

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// VectorIndex talks to the Azure AI Search REST API.
type VectorIndex struct {
	client     *restclient.Client
	endpoint   string
	name       string
	apiVersion string
	dimensions int
}

// NewVectorIndex creates a new Azure AI Search index client. Missing
// settings are reported as a *domain.ConfigurationError.
func NewVectorIndex(cfg Config) (*VectorIndex, error) {
	var missing []string
	if cfg.Endpoint == "" {
		missing = append(missing, "index.endpoint")
	}
	if cfg.IndexName == "" {
		missing = append(missing, "index.name")
	}
	if len(missing) > 0 {
		return nil, domain.NewConfigurationError("azure ai search", missing...)
	}
	if cfg.Dimensions <= 0 {
		return nil, domain.NewConfigurationError("dimensions must be positive", "embedding.dimensions")
	}

	auth, err := oauth.ForAzure(context.Background(), cfg.APIKey, cfg.Entra, oauth.SearchScope)
	if err != nil {
		return nil, domain.NewConfigurationError(err.Error(), "index.api_key")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = domain.DefaultSearchAPIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &VectorIndex{
		client: restclient.New(restclient.Config{
			Service:    serviceName,
			Auth:       auth,
			HTTPClient: cfg.HTTPClient,
			Timeout:    cfg.Timeout,
		}),
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		name:       cfg.IndexName,
		apiVersion: cfg.APIVersion,
		dimensions: cfg.Dimensions,
	}, nil
}

// field is one entry of the index schema.
type field struct {
	Name                string `json:"name"`
	Type                string `json:"type"`
	Key                 bool   `json:"key,omitempty"`
	Searchable          *bool  `json:"searchable,omitempty"`
	Filterable          bool   `json:"filterable,omitempty"`
	Facetable           bool   `json:"facetable,omitempty"`
	Retrievable         *bool  `json:"retrievable,omitempty"`
	Dimensions          int    `json:"dimensions,omitempty"`
	VectorSearchProfile string `json:"vectorSearchProfile,omitempty"`
}

type hnswParameters struct {
	Metric         string `json:"metric"`
	M              int    `json:"m"`
	EfConstruction int    `json:"efConstruction"`
	EfSearch       int    `json:"efSearch"`
}

type algorithm struct {
	Name           string         `json:"name"`
	Kind           string         `json:"kind"`
	HNSWParameters hnswParameters `json:"hnswParameters"`
}

type profile struct {
	Name      string `json:"name"`
	Algorithm string `json:"algorithm"`
}

type vectorSearch struct {
	Algorithms []algorithm `json:"algorithms"`
	Profiles   []profile   `json:"profiles"`
}

// indexDefinition is the PUT /indexes/{name} body.
type indexDefinition struct {
	Name         string       `json:"name"`
	Fields       []field      `json:"fields"`
	VectorSearch vectorSearch `json:"vectorSearch"`
}

func boolPtr(b bool) *bool { return &b }

// schema returns the index definition for the configured dimension.
func (x *VectorIndex) schema() indexDefinition {
	return indexDefinition{
		Name: x.name,
		Fields: []field{
			{Name: "id", Type: "Edm.String", Key: true, Filterable: true},
			{Name: "title", Type: "Edm.String", Searchable: boolPtr(true)},
			{Name: "content", Type: "Edm.String", Searchable: boolPtr(true)},
			{Name: "category", Type: "Edm.String", Filterable: true, Facetable: true},
			{Name: "source", Type: "Edm.String", Filterable: true},
			{
				Name:                VectorField,
				Type:                "Collection(Edm.Single)",
				Searchable:          boolPtr(true),
				Retrievable:         boolPtr(false),
				Dimensions:          x.dimensions,
				VectorSearchProfile: profileName,
			},
		},
		VectorSearch: vectorSearch{
			Algorithms: []algorithm{{
				Name: algorithmName,
				Kind: "hnsw",
				HNSWParameters: hnswParameters{
					Metric:         "cosine",
					M:              4,
					EfConstruction: 400,
					EfSearch:       500,
				},
			}},
			Profiles: []profile{{Name: profileName, Algorithm: algorithmName}},
		},
	}
}

// EnsureIndex probes the index and creates it only on 404.
func (x *VectorIndex) EnsureIndex(ctx context.Context) error {
	status, err := x.client.Do(ctx, "get index", http.MethodGet, x.url("indexes/"+x.name), nil, nil)
	if err == nil {
		logger.Debug("Index %q exists", x.name)
		return nil
	}
	if status != http.StatusNotFound {
		return err
	}

	logger.Info("Creating index %q (%d dimensions)", x.name, x.dimensions)
	_, err = x.client.Do(ctx, "create index", http.MethodPut, x.url("indexes/"+x.name), x.schema(), nil)
	return err
}

// searchDocument is the wire shape of an indexed document.
type searchDocument struct {
	Action    string    `json:"@search.action,omitempty"`
	Score     float64   `json:"@search.score,omitempty"`
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Source    string    `json:"source"`
	Embedding []float32 `json:"embedding,omitempty"`
}

type indexBatch struct {
	Value []searchDocument `json:"value"`
}

type indexResult struct {
	Key          string `json:"key"`
	Status       bool   `json:"status"`
	ErrorMessage string `json:"errorMessage"`
	StatusCode   int    `json:"statusCode"`
}

type indexResponse struct {
	Value []indexResult `json:"value"`
}

// Upsert writes all documents in one mergeOrUpload batch.
func (x *VectorIndex) Upsert(ctx context.Context, docs []domain.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if err := driven.CheckEmbeddings(docs, x.dimensions); err != nil {
		return err
	}

	batch := indexBatch{Value: make([]searchDocument, len(docs))}
	for i, d := range docs {
		batch.Value[i] = searchDocument{
			Action:    "mergeOrUpload",
			ID:        d.ID,
			Title:     d.Title,
			Content:   d.Content,
			Category:  d.Category,
			Source:    d.Source,
			Embedding: d.Embedding,
		}
	}

	var resp indexResponse
	status, err := x.client.Do(ctx, "upsert", http.MethodPost, x.url("indexes/"+x.name+"/docs/index"), batch, &resp)
	if err != nil {
		return err
	}

	// 207 means some documents were rejected.
	var failed []string
	for _, r := range resp.Value {
		if !r.Status {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Key, r.ErrorMessage))
		}
	}
	if len(failed) > 0 {
		return domain.NewUpstreamError(serviceName, "upsert", status,
			errors.New(strings.Join(failed, "; ")))
	}
	logger.Debug("Indexed %d documents into %q", len(docs), x.name)
	return nil
}

type vectorQuery struct {
	Kind   string    `json:"kind"`
	Vector []float32 `json:"vector"`
	K      int       `json:"k"`
	Fields string    `json:"fields"`
}

type searchRequest struct {
	Select        string        `json:"select"`
	Top           int           `json:"top"`
	VectorQueries []vectorQuery `json:"vectorQueries"`
}

type searchResponse struct {
	Value []searchDocument `json:"value"`
}

// Search runs a pure vector query; ranking is the service's.
func (x *VectorIndex) Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchHit, error) {
	if len(vector) != x.dimensions {
		return nil, domain.NewDimensionError("query", len(vector), x.dimensions)
	}
	if topK <= 0 {
		return []domain.SearchHit{}, nil
	}

	req := searchRequest{
		Select: selectFields,
		Top:    topK,
		VectorQueries: []vectorQuery{{
			Kind:   "vector",
			Vector: vector,
			K:      topK,
			Fields: VectorField,
		}},
	}

	var resp searchResponse
	if _, err := x.client.Do(ctx, "search", http.MethodPost, x.url("indexes/"+x.name+"/docs/search"), req, &resp); err != nil {
		return nil, err
	}

	hits := make([]domain.SearchHit, 0, len(resp.Value))
	for _, v := range resp.Value {
		if len(hits) == topK {
			break
		}
		hits = append(hits, domain.SearchHit{
			Document: domain.Document{
				ID:       v.ID,
				Title:    v.Title,
				Content:  v.Content,
				Category: v.Category,
				Source:   v.Source,
			},
			Score: v.Score,
		})
	}
	return hits, nil
}

// Close releases resources.
func (x *VectorIndex) Close() error {
	return nil
}

func (x *VectorIndex) url(path string) string {
	return restclient.JoinURL(x.endpoint, path, url.Values{"api-version": {x.apiVersion}})
}
