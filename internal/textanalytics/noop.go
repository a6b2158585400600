package textanalytics

import "context"

// Noop is the analyzer used when no language service is configured. Text is
// accepted without scoring.
type Noop struct{}

func (Noop) AnalyzeSentiment(ctx context.Context, text string) (Sentiment, error) {
	return Sentiment{Label: "unscored", DetectedLanguage: "unknown"}, nil
}
