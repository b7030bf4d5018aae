package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// Backend names and defaults.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"

	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultOllamaModel   = "nomic-embed-text"
	OllamaDimension      = 768

	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "text-embedding-3-small"
	OpenAIDimension      = 1536

	// DefaultTimeout bounds a single embedding HTTP request.
	DefaultTimeout = 30 * time.Second
)

// OllamaProvider implements Embedder against an Ollama-compatible local
// model server: POST {model, prompt} to /api/embeddings, receive
// {embedding: [...]}.
type OllamaProvider struct {
	baseURL    string
	model      string
	dimension  int
	httpClient *http.Client
	cache      *Cache
	retry      RetryConfig
}

// NewOllamaProvider creates an Ollama-backed embedder.
func NewOllamaProvider(baseURL, model string, dimension int, timeout time.Duration, cache *Cache) *OllamaProvider {
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	if dimension <= 0 {
		dimension = OllamaDimension
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OllamaProvider{
		baseURL:    baseURL,
		model:      model,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		retry:      DefaultRetryConfig(),
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (o *OllamaProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	text := Truncate(req.Text)
	hash := ComputeHash(text)
	if o.cache != nil {
		if emb, ok := o.cache.Get(hash); ok {
			return emb, nil
		}
	}

	emb, err := retryWithBackoff(ctx, o.retry, func() (*Embedding, error) {
		return o.callAPI(ctx, text)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	emb.Hash = hash
	if o.cache != nil {
		o.cache.Set(hash, emb)
	}
	return emb, nil
}

// GenerateBatch embeds texts sequentially; the Ollama API has no batch
// endpoint. Concurrency across chunks is the ingester's job, where a
// worker pool isolates per-chunk failures.
func (o *OllamaProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}
	if len(req.Texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	embeddings := make([]*Embedding, len(req.Texts))
	for i, text := range req.Texts {
		emb, err := o.GenerateEmbedding(ctx, EmbeddingRequest{Text: text})
		if err != nil {
			return nil, fmt.Errorf("embedding text %d: %w", i, err)
		}
		embeddings[i] = emb
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   BackendOllama,
		Model:      o.model,
	}, nil
}

func (o *OllamaProvider) callAPI(ctx context.Context, text string) (*Embedding, error) {
	body, err := json.Marshal(ollamaRequest{Model: o.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}

	vector := make([]float32, len(apiResp.Embedding))
	for i, v := range apiResp.Embedding {
		vector[i] = float32(v)
	}

	return &Embedding{
		Vector:    vector,
		Dimension: len(vector),
		Provider:  BackendOllama,
		Model:     o.model,
	}, nil
}

func (o *OllamaProvider) Dimension() int   { return o.dimension }
func (o *OllamaProvider) Provider() string { return BackendOllama }
func (o *OllamaProvider) Model() string    { return o.model }

func (o *OllamaProvider) Close() error {
	o.httpClient.CloseIdleConnections()
	return nil
}

// OpenAIProvider implements Embedder using an OpenAI-compatible
// embeddings API with native batch support.
type OpenAIProvider struct {
	apiKey     string
	baseURL    string
	model      string
	dimension  int
	httpClient *http.Client
	cache      *Cache
	retry      RetryConfig
}

// NewOpenAIProvider creates an OpenAI-compatible embedder.
func NewOpenAIProvider(apiKey, baseURL, model string, dimension int, timeout time.Duration, cache *Cache) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key not set", ErrUnsupportedBackend)
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	if dimension <= 0 {
		dimension = OpenAIDimension
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OpenAIProvider{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		dimension:  dimension,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		retry:      DefaultRetryConfig(),
	}, nil
}

func (p *OpenAIProvider) GenerateEmbedding(ctx context.Context, req EmbeddingRequest) (*Embedding, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	text := Truncate(req.Text)
	hash := ComputeHash(text)
	if p.cache != nil {
		if emb, ok := p.cache.Get(hash); ok {
			return emb, nil
		}
	}

	resp, err := p.GenerateBatch(ctx, BatchEmbeddingRequest{Texts: []string{req.Text}})
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embeddings returned", ErrUnavailable)
	}
	return resp.Embeddings[0], nil
}

func (p *OpenAIProvider) GenerateBatch(ctx context.Context, req BatchEmbeddingRequest) (*BatchEmbeddingResponse, error) {
	if err := ValidateBatchRequest(req); err != nil {
		return nil, err
	}
	if len(req.Texts) > MaxBatchSize {
		return nil, fmt.Errorf("%w: max %d texts allowed", ErrBatchTooLarge, MaxBatchSize)
	}

	texts := make([]string, len(req.Texts))
	for i, t := range req.Texts {
		texts[i] = Truncate(t)
	}

	embeddings, err := retryWithBackoff(ctx, p.retry, func() ([]*Embedding, error) {
		return p.callAPI(ctx, texts)
	})
	if err != nil {
		return nil, fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, p.retry.MaxRetries, err)
	}

	if p.cache != nil {
		for i, emb := range embeddings {
			hash := ComputeHash(texts[i])
			emb.Hash = hash
			p.cache.Set(hash, emb)
		}
	}

	return &BatchEmbeddingResponse{
		Embeddings: embeddings,
		Provider:   BackendOpenAI,
		Model:      p.model,
	}, nil
}

func (p *OpenAIProvider) callAPI(ctx context.Context, texts []string) ([]*Embedding, error) {
	reqBody := map[string]interface{}{
		"input": texts,
		"model": p.model,
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("api error %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var apiResp struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		} `json:"data"`
		Model string `json:"model"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(apiResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(apiResp.Data))
	}

	embeddings := make([]*Embedding, len(apiResp.Data))
	for _, data := range apiResp.Data {
		if data.Index < 0 || data.Index >= len(embeddings) {
			return nil, fmt.Errorf("embedding index %d out of range", data.Index)
		}
		embeddings[data.Index] = &Embedding{
			Vector:    data.Embedding,
			Dimension: len(data.Embedding),
			Provider:  BackendOpenAI,
			Model:     apiResp.Model,
		}
	}

	return embeddings, nil
}

func (p *OpenAIProvider) Dimension() int   { return p.dimension }
func (p *OpenAIProvider) Provider() string { return BackendOpenAI }
func (p *OpenAIProvider) Model() string    { return p.model }

func (p *OpenAIProvider) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}

// NormalizeVector normalizes a vector to unit length. A zero vector is
// returned unchanged.
func NormalizeVector(v []float32) []float32 {
	var sum float64
	for _, val := range v {
		sum += float64(val * val)
	}
	if sum == 0 {
		return v
	}

	norm := float32(math.Sqrt(sum))
	result := make([]float32, len(v))
	for i, val := range v {
		result[i] = val / norm
	}
	return result
}
