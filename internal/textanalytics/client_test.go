package textanalytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func fakeLanguageService(t *testing.T, languageDetectionFails bool) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		var req analyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		switch req.Kind {
		case "SentimentAnalysis":
			_, _ = w.Write([]byte(`{"results":{"documents":[{
				"sentiment":"positive",
				"confidenceScores":{"positive":0.91,"neutral":0.07,"negative":0.02}
			}]}}`))
		case "LanguageDetection":
			if languageDetectionFails {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(`{"results":{"documents":[{
				"detectedLanguage":{"iso6391Name":"en"}
			}]}}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestAnalyzeSentiment(t *testing.T) {
	server := fakeLanguageService(t, false)
	client := New(server.URL, "test-key")

	sentiment, err := client.AnalyzeSentiment(context.Background(), "Loved the show!")
	if err != nil {
		t.Fatalf("AnalyzeSentiment: %v", err)
	}
	if sentiment.Label != "positive" {
		t.Fatalf("unexpected label: %q", sentiment.Label)
	}
	if sentiment.ConfidencePositive != 0.91 {
		t.Fatalf("unexpected confidence: %v", sentiment.ConfidencePositive)
	}
	if sentiment.DetectedLanguage != "en" {
		t.Fatalf("unexpected language: %q", sentiment.DetectedLanguage)
	}
}

func TestAnalyzeSentimentLanguageDetectionBestEffort(t *testing.T) {
	server := fakeLanguageService(t, true)
	client := New(server.URL, "test-key")

	sentiment, err := client.AnalyzeSentiment(context.Background(), "Loved the show!")
	if err != nil {
		t.Fatalf("AnalyzeSentiment: %v", err)
	}
	if sentiment.Label != "positive" {
		t.Fatalf("sentiment must survive a language detection failure, got %q", sentiment.Label)
	}
	if sentiment.DetectedLanguage != "unknown" {
		t.Fatalf("expected unknown language fallback, got %q", sentiment.DetectedLanguage)
	}
}

func TestAnalyzeSentimentAuthFailure(t *testing.T) {
	server := fakeLanguageService(t, false)
	client := New(server.URL, "wrong-key")

	if _, err := client.AnalyzeSentiment(context.Background(), "text"); err == nil {
		t.Fatal("expected error for rejected key")
	}
}
