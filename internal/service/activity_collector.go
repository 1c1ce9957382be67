package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"reddit-persona/internal/domain"
	"reddit-persona/internal/reddit"
)

const (
	// DefaultActivityLimit acota cada listado; no es un crawl del historial completo.
	DefaultActivityLimit = 100
	// TopItemsCount es la cantidad de items destacados por stream.
	TopItemsCount = 3
	// minCadenceWeeks evita dividir por cero cuando toda la actividad es de hoy.
	minCadenceWeeks = 1.0 / 7.0
)

// ActivitySource es la fuente de datos de la cuenta (Reddit en produccion).
type ActivitySource interface {
	Account(ctx context.Context, handle string) (domain.Account, error)
	Comments(ctx context.Context, handle string, limit int) ([]reddit.Item, error)
	Submissions(ctx context.Context, handle string, limit int) ([]reddit.Item, error)
}

// ActivityCollector arma el ActivitySnapshot de una cuenta.
type ActivityCollector struct {
	source ActivitySource
	logger *zap.Logger
	limit  int
	now    func() time.Time
}

func NewActivityCollector(source ActivitySource, logger *zap.Logger) *ActivityCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityCollector{
		source: source,
		logger: logger,
		limit:  DefaultActivityLimit,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Collect lee metadatos, comentarios y submissions. Los fallos por item o por listado
// se registran y el snapshot queda parcial; solo la falta de metadatos corta el flujo.
func (c *ActivityCollector) Collect(ctx context.Context, handle string) (domain.ActivitySnapshot, error) {
	account, err := c.source.Account(ctx, handle)
	if err != nil {
		if errors.Is(err, reddit.ErrNotFound) {
			return domain.ActivitySnapshot{}, fmt.Errorf("%w: %s", ErrAccountNotFound, handle)
		}
		c.logger.Warn("account fetch failed", zap.String("handle", handle), zap.Error(err))
		return domain.ActivitySnapshot{}, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if account.Handle == "" {
		account.Handle = handle
	}

	now := c.now()
	snapshot := domain.ActivitySnapshot{
		Handle:       account.Handle,
		CommentKarma: account.CommentKarma,
		LinkKarma:    account.LinkKarma,
		CreatedUTC:   account.CreatedUTC,
		AvatarURL:    account.AvatarURL,
		Comments:     []domain.ActivityRecord{},
		Submissions:  []domain.ActivityRecord{},
		FetchedAt:    now,
	}

	commentItems, err := c.source.Comments(ctx, account.Handle, c.limit)
	if err != nil {
		c.logger.Warn("comments fetch failed", zap.String("handle", account.Handle), zap.Error(err))
		snapshot.Warnings = append(snapshot.Warnings, "comments unavailable")
	}
	snapshot.Comments = c.decodeItems(account.Handle, commentItems, reddit.Item.Comment)

	submissionItems, err := c.source.Submissions(ctx, account.Handle, c.limit)
	if err != nil {
		c.logger.Warn("submissions fetch failed", zap.String("handle", account.Handle), zap.Error(err))
		snapshot.Warnings = append(snapshot.Warnings, "submissions unavailable")
	}
	snapshot.Submissions = c.decodeItems(account.Handle, submissionItems, reddit.Item.Submission)

	snapshot.CommentsPerWeek = ComputeCadence(snapshot.Comments, now)
	snapshot.SubmissionsPerWeek = ComputeCadence(snapshot.Submissions, now)
	snapshot.TopComments = TopByScore(snapshot.Comments, TopItemsCount)
	snapshot.TopSubmissions = TopByScore(snapshot.Submissions, TopItemsCount)
	snapshot.SubredditActivity = RankSubreddits(snapshot.Records())

	c.logger.Info("activity collected",
		zap.String("handle", snapshot.Handle),
		zap.Int("comments", len(snapshot.Comments)),
		zap.Int("submissions", len(snapshot.Submissions)),
		zap.Bool("partial", snapshot.Partial()),
	)
	return snapshot, nil
}

func (c *ActivityCollector) decodeItems(handle string, items []reddit.Item, decode func(reddit.Item) (domain.ActivityRecord, error)) []domain.ActivityRecord {
	out := make([]domain.ActivityRecord, 0, len(items))
	for i, it := range items {
		if len(out) == c.limit {
			break
		}
		rec, err := decode(it)
		if err != nil {
			c.logger.Warn("skipping activity item", zap.String("handle", handle), zap.Int("index", i), zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	return out
}

// ComputeCadence devuelve items por semana entre el item mas viejo y now.
func ComputeCadence(records []domain.ActivityRecord, now time.Time) float64 {
	if len(records) == 0 {
		return 0
	}
	oldest := records[0].CreatedUTC
	for _, r := range records[1:] {
		if r.CreatedUTC < oldest {
			oldest = r.CreatedUTC
		}
	}
	weeks := now.Sub(time.Unix(oldest, 0)).Hours() / (24 * 7)
	if weeks < minCadenceWeeks {
		weeks = minCadenceWeeks
	}
	return float64(len(records)) / weeks
}

// TopByScore ordena por score descendente (estable) y devuelve los primeros n.
func TopByScore(records []domain.ActivityRecord, n int) []domain.ActivityRecord {
	sorted := append([]domain.ActivityRecord{}, records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// RankSubreddits cuenta la actividad por comunidad; empate por primera aparicion.
func RankSubreddits(records []domain.ActivityRecord) []domain.SubredditCount {
	index := map[string]int{}
	var counts []domain.SubredditCount
	for _, r := range records {
		if r.Subreddit == "" {
			continue
		}
		if i, ok := index[r.Subreddit]; ok {
			counts[i].Count++
			continue
		}
		index[r.Subreddit] = len(counts)
		counts = append(counts, domain.SubredditCount{Subreddit: r.Subreddit, Count: 1})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	if counts == nil {
		counts = []domain.SubredditCount{}
	}
	return counts
}
