// Package comments stores user feedback annotated with sentiment analysis.
package comments

import (
	"context"
	"errors"
	"strings"
	"time"

	"concertbuddy/internal/auth"
	"concertbuddy/internal/store"
	"concertbuddy/internal/textanalytics"

	"github.com/rs/zerolog/log"
)

// ErrEmptyComment is returned when the submitted text is blank.
var ErrEmptyComment = errors.New("comment text must not be empty")

// Analyzer scores a piece of text for sentiment.
type Analyzer interface {
	AnalyzeSentiment(ctx context.Context, text string) (textanalytics.Sentiment, error)
}

// Store defines the persistence operations the service needs.
type Store interface {
	SaveGeneralComment(ctx context.Context, c store.Comment) (store.Comment, error)
	SaveConcertComment(ctx context.Context, c store.Comment) (store.Comment, error)
}

// Guard authorizes a caller to act on a target user's resources.
type Guard interface {
	Authorize(ctx context.Context, caller auth.Identity, targetUserID int64) error
}

// Service analyzes and persists comments.
type Service struct {
	guard    Guard
	store    Store
	analyzer Analyzer
}

// New constructs the comment service.
func New(guard Guard, st Store, analyzer Analyzer) *Service {
	return &Service{guard: guard, store: st, analyzer: analyzer}
}

// Result is an analyzed, stored comment.
type Result struct {
	CommentID          int64     `json:"commentId"`
	ConcertName        string    `json:"concertName,omitempty"`
	Comment            string    `json:"comment"`
	Sentiment          string    `json:"sentiment"`
	ConfidencePositive float64   `json:"confidencePositive"`
	ConfidenceNeutral  float64   `json:"confidenceNeutral"`
	ConfidenceNegative float64   `json:"confidenceNegative"`
	DetectedLanguage   string    `json:"detectedLanguage"`
	CreatedAt          time.Time `json:"createdAt"`
}

// SubmitGeneral analyzes and stores a general comment for the user.
func (s *Service) SubmitGeneral(ctx context.Context, caller auth.Identity, userID int64, text string) (Result, error) {
	return s.submit(ctx, caller, userID, "", text)
}

// SubmitConcert analyzes and stores a comment about a named concert.
func (s *Service) SubmitConcert(ctx context.Context, caller auth.Identity, userID int64, concertName, text string) (Result, error) {
	return s.submit(ctx, caller, userID, strings.TrimSpace(concertName), text)
}

func (s *Service) submit(ctx context.Context, caller auth.Identity, userID int64, concertName, text string) (Result, error) {
	if err := s.guard.Authorize(ctx, caller, userID); err != nil {
		return Result{}, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, ErrEmptyComment
	}

	sentiment, err := s.analyzer.AnalyzeSentiment(ctx, text)
	if err != nil {
		return Result{}, err
	}

	comment := store.Comment{
		UserID:             userID,
		ConcertName:        concertName,
		Comment:            text,
		Sentiment:          sentiment.Label,
		ConfidencePositive: sentiment.ConfidencePositive,
		ConfidenceNeutral:  sentiment.ConfidenceNeutral,
		ConfidenceNegative: sentiment.ConfidenceNegative,
		DetectedLanguage:   sentiment.DetectedLanguage,
	}

	var saved store.Comment
	if concertName != "" {
		saved, err = s.store.SaveConcertComment(ctx, comment)
	} else {
		saved, err = s.store.SaveGeneralComment(ctx, comment)
	}
	if err != nil {
		return Result{}, err
	}

	log.Info().Int64("user_id", userID).Str("sentiment", sentiment.Label).Msg("comment stored")
	return Result{
		CommentID:          saved.ID,
		ConcertName:        concertName,
		Comment:            text,
		Sentiment:          sentiment.Label,
		ConfidencePositive: sentiment.ConfidencePositive,
		ConfidenceNeutral:  sentiment.ConfidenceNeutral,
		ConfidenceNegative: sentiment.ConfidenceNegative,
		DetectedLanguage:   sentiment.DetectedLanguage,
		CreatedAt:          saved.CreatedAt,
	}, nil
}
