// Package search maintains the business directory index and serves the admin
// search endpoint. The index is a read-side convenience; Postgres stays the
// source of truth and the core workflow never depends on it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	stderrors "franchisehub-api/internal/common/errors"
	"franchisehub-api/internal/common/logger"
	"franchisehub-api/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type Service struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewService(client *elasticsearch.Client, index string, log logger.Logger) *Service {
	return &Service{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"service": "search"}),
	}
}

// BusinessDocument is the indexed projection of a business record.
type BusinessDocument struct {
	ID                   string `json:"id"`
	CompanyName          string `json:"companyName"`
	Industry             string `json:"industry"`
	FranchiseName        string `json:"franchiseName"`
	FranchiseDescription string `json:"franchiseDescription"`
	InvestmentRange      string `json:"investmentRange"`
	Headquarters         string `json:"headquarters"`
	Status               string `json:"status"`
	CreatedAt            string `json:"createdAt"`
}

// IndexBusiness upserts a business into the directory index.
func (s *Service) IndexBusiness(ctx context.Context, b models.Business) error {
	doc := BusinessDocument{
		ID:                   b.ID,
		CompanyName:          b.CompanyName,
		Industry:             b.Industry,
		FranchiseName:        b.FranchiseName,
		FranchiseDescription: b.FranchiseDescription,
		InvestmentRange:      b.InvestmentRange,
		Headquarters:         b.Headquarters,
		Status:               b.Status,
		CreatedAt:            b.CreatedAt,
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal business document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      s.index,
		DocumentID: b.ID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return fmt.Errorf("index business: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index business: %s", res.Status())
	}
	return nil
}

// Search runs a keyword query over the directory, optionally filtered by
// industry.
func (s *Service) Search(ctx context.Context, keywords, industry string) ([]Hit, error) {
	queryBody := buildSearchQuery(keywords, industry)

	body, _ := json.Marshal(queryBody)
	from, size := 0, 50
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &size,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, stderrors.NewSearchUnavailableError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, stderrors.NewSearchUnavailableError(fmt.Errorf("search failed: %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source BusinessDocument `json:"_source"`
				Score  float64          `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, stderrors.NewSearchUnavailableError(err)
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, Hit{Business: h.Source, Score: h.Score})
	}
	return hits, nil
}

type Hit struct {
	Business BusinessDocument `json:"business"`
	Score    float64          `json:"score"`
}

// buildSearchQuery assembles the bool query for the directory search.
func buildSearchQuery(keywords, industry string) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  keywords,
				"fields": []string{"companyName^3", "franchiseName^3", "franchiseDescription^2", "industry"},
				"type":   "best_fields",
			},
		})
	} else {
		mustClauses = append(mustClauses, map[string]interface{}{
			"match_all": map[string]interface{}{},
		})
	}

	if industry != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"industry.keyword": industry},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   mustClauses,
				"filter": filterClauses,
			},
		},
	}
}
