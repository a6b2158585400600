// Package textanalytics wraps an Azure AI Language endpoint for sentiment
// analysis and language detection. The service is a pass-through collaborator;
// no analysis logic lives here.
package textanalytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const apiVersion = "2023-04-01"

// Sentiment is the result of analyzing a single piece of text.
type Sentiment struct {
	Label              string
	ConfidencePositive float64
	ConfidenceNeutral  float64
	ConfidenceNegative float64
	DetectedLanguage   string
}

// Client calls the Azure Language REST API.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the given Azure Language endpoint and key.
func New(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type analyzeRequest struct {
	Kind          string        `json:"kind"`
	AnalysisInput analysisInput `json:"analysisInput"`
}

type analysisInput struct {
	Documents []document `json:"documents"`
}

type document struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type analyzeResponse struct {
	Results struct {
		Documents []struct {
			Sentiment        string `json:"sentiment"`
			ConfidenceScores struct {
				Positive float64 `json:"positive"`
				Neutral  float64 `json:"neutral"`
				Negative float64 `json:"negative"`
			} `json:"confidenceScores"`
			DetectedLanguage struct {
				ISO6391Name string `json:"iso6391Name"`
			} `json:"detectedLanguage"`
		} `json:"documents"`
	} `json:"results"`
}

// AnalyzeSentiment runs sentiment analysis over a single text.
func (c *Client) AnalyzeSentiment(ctx context.Context, text string) (Sentiment, error) {
	sentiment, err := c.analyze(ctx, "SentimentAnalysis", text)
	if err != nil {
		return Sentiment{}, err
	}

	// Language detection is best-effort; the sentiment result stands alone.
	if lang, err := c.analyze(ctx, "LanguageDetection", text); err == nil {
		sentiment.DetectedLanguage = lang.DetectedLanguage
	} else {
		sentiment.DetectedLanguage = "unknown"
	}

	return sentiment, nil
}

func (c *Client) analyze(ctx context.Context, kind, text string) (Sentiment, error) {
	reqBody := analyzeRequest{
		Kind: kind,
		AnalysisInput: analysisInput{
			Documents: []document{{ID: "1", Text: text}},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Sentiment{}, fmt.Errorf("marshal request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/language/:analyze-text?api-version=%s", c.endpoint, apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return Sentiment{}, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Sentiment{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Sentiment{}, fmt.Errorf("language api error: %s - %s", resp.Status, string(body))
	}

	var result analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Sentiment{}, fmt.Errorf("decode response: %w", err)
	}

	if len(result.Results.Documents) == 0 {
		return Sentiment{}, fmt.Errorf("language api returned no documents")
	}

	doc := result.Results.Documents[0]
	return Sentiment{
		Label:              doc.Sentiment,
		ConfidencePositive: doc.ConfidenceScores.Positive,
		ConfidenceNeutral:  doc.ConfidenceScores.Neutral,
		ConfidenceNegative: doc.ConfidenceScores.Negative,
		DetectedLanguage:   doc.DetectedLanguage.ISO6391Name,
	}, nil
}
