package reddit

import (
	"encoding/json"
	"fmt"

	"reddit-persona/internal/domain"
)

// Item es un hijo de un listing; se decodifica de a uno para que un item roto no
// invalide el listing completo.
type Item struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type commentData struct {
	ID         string   `json:"id"`
	Body       *string  `json:"body"`
	Score      int      `json:"score"`
	Subreddit  string   `json:"subreddit"`
	CreatedUTC *float64 `json:"created_utc"`
}

type submissionData struct {
	ID         string   `json:"id"`
	Title      *string  `json:"title"`
	Selftext   string   `json:"selftext"`
	URL        string   `json:"url"`
	Score      int      `json:"score"`
	Subreddit  string   `json:"subreddit"`
	CreatedUTC *float64 `json:"created_utc"`
}

// Comment decodifica el item como comentario (kind t1).
func (it Item) Comment() (domain.ActivityRecord, error) {
	if it.Kind != "" && it.Kind != "t1" {
		return domain.ActivityRecord{}, fmt.Errorf("unexpected kind %q for comment", it.Kind)
	}
	var d commentData
	if err := json.Unmarshal(it.Data, &d); err != nil {
		return domain.ActivityRecord{}, fmt.Errorf("decode comment: %w", err)
	}
	if d.Body == nil || d.CreatedUTC == nil {
		return domain.ActivityRecord{}, fmt.Errorf("comment %q missing body or created_utc", d.ID)
	}
	return domain.ActivityRecord{
		ID:         d.ID,
		Kind:       domain.ActivityKindComment,
		Body:       *d.Body,
		Score:      d.Score,
		Subreddit:  d.Subreddit,
		CreatedUTC: int64(*d.CreatedUTC),
	}, nil
}

// Submission decodifica el item como post (kind t3).
func (it Item) Submission() (domain.ActivityRecord, error) {
	if it.Kind != "" && it.Kind != "t3" {
		return domain.ActivityRecord{}, fmt.Errorf("unexpected kind %q for submission", it.Kind)
	}
	var d submissionData
	if err := json.Unmarshal(it.Data, &d); err != nil {
		return domain.ActivityRecord{}, fmt.Errorf("decode submission: %w", err)
	}
	if d.Title == nil || d.CreatedUTC == nil {
		return domain.ActivityRecord{}, fmt.Errorf("submission %q missing title or created_utc", d.ID)
	}
	return domain.ActivityRecord{
		ID:         d.ID,
		Kind:       domain.ActivityKindSubmission,
		Title:      *d.Title,
		Body:       d.Selftext,
		URL:        d.URL,
		Score:      d.Score,
		Subreddit:  d.Subreddit,
		CreatedUTC: int64(*d.CreatedUTC),
	}, nil
}

// NewItem arma un Item a partir de datos arbitrarios; util para fuentes alternativas y tests.
func NewItem(kind string, data any) Item {
	raw, err := json.Marshal(data)
	if err != nil {
		raw = []byte("null")
	}
	return Item{Kind: kind, Data: raw}
}
