package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jpark-labs/lexscout/internal/llm"
)

const (
	tavilyBaseURL    = "https://api.tavily.com"
	statuteSite      = "law.go.kr"
	caseLawSite      = "glaw.scourt.go.kr"
	defaultMaxHits   = 3
	siteSearchHits   = 5
	searchTimeout    = 30 * time.Second
	maxResultContent = 4000
)

// SearchResult is one hit returned by the search API.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// TavilyClient calls the Tavily search REST API.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewTavilyClient creates a search client. An empty apiKey is allowed at
// construction; requests will fail with an authorization error, which the
// invoker surfaces as an error observation.
func NewTavilyClient(apiKey string) *TavilyClient {
	return &TavilyClient{
		apiKey:     apiKey,
		baseURL:    tavilyBaseURL,
		httpClient: &http.Client{Timeout: searchTimeout},
	}
}

type tavilySearchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	Topic      string `json:"topic,omitempty"`
}

type tavilySearchResponse struct {
	Results []SearchResult `json:"results"`
}

// Search executes one query and returns the raw hits.
func (c *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if maxResults <= 0 {
		maxResults = defaultMaxHits
	}

	body, err := json.Marshal(tavilySearchRequest{Query: query, MaxResults: maxResults})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var parsed tavilySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	return parsed.Results, nil
}

// dedupeByURL keeps the first hit per URL, preserving order.
func dedupeByURL(results []SearchResult) []SearchResult {
	seen := make(map[string]bool, len(results))
	out := results[:0:0]
	for _, r := range results {
		if seen[r.URL] {
			continue
		}
		seen[r.URL] = true
		out = append(out, r)
	}
	return out
}

// filterLegalResults drops navigation and error pages that site-restricted
// legal searches tend to surface.
func filterLegalResults(results []SearchResult) []SearchResult {
	irrelevant := []string{"download", "login", "javascript", "error"}
	out := results[:0:0]
	for _, r := range results {
		url := strings.ToLower(r.URL)
		skip := false
		for _, pattern := range irrelevant {
			if strings.Contains(url, pattern) {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, r)
		}
	}
	return out
}

// formatSearchOutput renders hits as a numbered source list for the model.
func formatSearchOutput(results []SearchResult) string {
	if len(results) == 0 {
		return "No valid search results found. Please try different search queries."
	}

	var sb strings.Builder
	sb.WriteString("Search results:\n")
	for i, r := range results {
		content := r.Content
		if len(content) > maxResultContent {
			content = content[:maxResultContent] + "..."
		}
		fmt.Fprintf(&sb, "\n--- SOURCE %d: %s ---\n", i+1, r.Title)
		fmt.Fprintf(&sb, "URL: %s\n\n", r.URL)
		fmt.Fprintf(&sb, "CONTENT:\n%s\n", content)
		sb.WriteString(strings.Repeat("-", 80) + "\n")
	}
	return sb.String()
}

// searchTool is the shared implementation behind the three search
// capabilities. A non-empty site restricts queries to one domain and
// enables the legal-result filter.
type searchTool struct {
	name        string
	description string
	client      *TavilyClient
	site        string
	maxResults  int
}

// NewWebSearchTool returns the general web search capability.
func NewWebSearchTool(client *TavilyClient) Tool {
	return &searchTool{
		name: "web_search",
		description: "Search the web for general information. " +
			"Use for market context, news, and anything outside statutes and court precedents.",
		client:     client,
		maxResults: defaultMaxHits,
	}
}

// NewStatuteSearchTool returns the statute search capability, restricted
// to the National Law Information Center (law.go.kr).
func NewStatuteSearchTool(client *TavilyClient) Tool {
	return &searchTool{
		name: "statute_search",
		description: "Search Korean statutes and regulations exclusively on the National Law " +
			"Information Center (law.go.kr). Use to find the exact text of laws and articles.",
		client:     client,
		site:       statuteSite,
		maxResults: siteSearchHits,
	}
}

// NewCaseLawSearchTool returns the precedent search capability, restricted
// to the Supreme Court legal database (glaw.scourt.go.kr).
func NewCaseLawSearchTool(client *TavilyClient) Tool {
	return &searchTool{
		name: "case_law_search",
		description: "Search South Korean court precedents exclusively on the Supreme Court " +
			"legal database (glaw.scourt.go.kr). Use to find cases matching a legal situation.",
		client:     client,
		site:       caseLawSite,
		maxResults: siteSearchHits,
	}
}

func (t *searchTool) Name() string { return t.name }

func (t *searchTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        t.name,
		Description: t.description,
		Properties: map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The search query to execute",
			},
		},
		Required: []string{"query"},
	}
}

func (t *searchTool) Invoke(ctx context.Context, input json.RawMessage) (string, error) {
	var params struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid parameters: %w", err)
	}
	if strings.TrimSpace(params.Query) == "" {
		return "", fmt.Errorf("query is required")
	}

	query := params.Query
	if t.site != "" {
		query = fmt.Sprintf("%s site:%s", query, t.site)
	}

	results, err := t.client.Search(ctx, query, t.maxResults)
	if err != nil {
		return "", err
	}

	if t.site != "" {
		results = filterLegalResults(results)
	}
	results = dedupeByURL(results)

	return formatSearchOutput(results), nil
}
