package store

import (
	"context"
	"fmt"
	"time"
)

// Comment is a stored sentiment-analyzed comment. ConcertName is empty for
// general comments.
type Comment struct {
	ID                 int64
	UserID             int64
	ConcertName        string
	Comment            string
	Sentiment          string
	ConfidencePositive float64
	ConfidenceNeutral  float64
	ConfidenceNegative float64
	DetectedLanguage   string
	CreatedAt          time.Time
}

// SaveGeneralComment persists an analyzed general comment.
func (s *Store) SaveGeneralComment(ctx context.Context, c Comment) (Comment, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO general_comments (user_id, comment, sentiment, confidence_positive, confidence_neutral, confidence_negative, detected_language)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, c.UserID, c.Comment, c.Sentiment, c.ConfidencePositive, c.ConfidenceNeutral, c.ConfidenceNegative, c.DetectedLanguage).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return Comment{}, fmt.Errorf("insert general comment: %w", err)
	}
	return c, nil
}

// SaveConcertComment persists an analyzed concert comment.
func (s *Store) SaveConcertComment(ctx context.Context, c Comment) (Comment, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO concert_comments (user_id, concert_name, comment, sentiment, confidence_positive, confidence_neutral, confidence_negative, detected_language)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, c.UserID, c.ConcertName, c.Comment, c.Sentiment, c.ConfidencePositive, c.ConfidenceNeutral, c.ConfidenceNegative, c.DetectedLanguage).
		Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return Comment{}, fmt.Errorf("insert concert comment: %w", err)
	}
	return c, nil
}
