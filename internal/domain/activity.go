package domain

import "time"

// ActivityRecord es un comentario o submission tal como lo entrega la fuente.
type ActivityRecord struct {
	ID         string `json:"id,omitempty"`
	Kind       string `json:"kind"`
	Title      string `json:"title,omitempty"`
	Body       string `json:"body"`
	URL        string `json:"url,omitempty"`
	Score      int    `json:"score"`
	Subreddit  string `json:"subreddit"`
	CreatedUTC int64  `json:"created_utc"`
}

const (
	ActivityKindComment    = "comment"
	ActivityKindSubmission = "submission"
)

// CreatedAt convierte el epoch de la fuente a time.Time.
func (r ActivityRecord) CreatedAt() time.Time {
	return time.Unix(r.CreatedUTC, 0).UTC()
}

// Text devuelve el texto libre del item: titulo + cuerpo para submissions.
func (r ActivityRecord) Text() string {
	switch {
	case r.Title != "" && r.Body != "":
		return r.Title + "\n" + r.Body
	case r.Title != "":
		return r.Title
	default:
		return r.Body
	}
}

// Account son los metadatos publicos de la cuenta.
type Account struct {
	Handle       string `json:"handle"`
	ID           string `json:"id,omitempty"`
	CommentKarma int    `json:"comment_karma"`
	LinkKarma    int    `json:"link_karma"`
	CreatedUTC   int64  `json:"created_utc"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	Suspended    bool   `json:"suspended,omitempty"`
}

// SubredditCount cuenta la actividad de la cuenta en una comunidad.
type SubredditCount struct {
	Subreddit string `json:"subreddit"`
	Count     int    `json:"count"`
}

// ActivitySnapshot agrega la actividad reciente de una cuenta. Vive solo durante el request.
type ActivitySnapshot struct {
	Handle             string           `json:"handle"`
	CommentKarma       int              `json:"comment_karma"`
	LinkKarma          int              `json:"link_karma"`
	CreatedUTC         int64            `json:"created_utc"`
	AvatarURL          string           `json:"avatar_url,omitempty"`
	Comments           []ActivityRecord `json:"comments"`
	Submissions        []ActivityRecord `json:"submissions"`
	CommentsPerWeek    float64          `json:"comments_per_week"`
	SubmissionsPerWeek float64          `json:"submissions_per_week"`
	TopComments        []ActivityRecord `json:"top_comments"`
	TopSubmissions     []ActivityRecord `json:"top_submissions"`
	SubredditActivity  []SubredditCount `json:"subreddit_activity"`
	Warnings           []string         `json:"warnings,omitempty"`
	FetchedAt          time.Time        `json:"fetched_at"`
}

// Partial indica que algun listado fallo y el snapshot quedo incompleto.
func (s ActivitySnapshot) Partial() bool {
	return len(s.Warnings) > 0
}

// Records devuelve comentarios y submissions en un solo slice, comentarios primero.
func (s ActivitySnapshot) Records() []ActivityRecord {
	out := make([]ActivityRecord, 0, len(s.Comments)+len(s.Submissions))
	out = append(out, s.Comments...)
	out = append(out, s.Submissions...)
	return out
}
