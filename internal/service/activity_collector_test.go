package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"reddit-persona/internal/domain"
	"reddit-persona/internal/reddit"
)

type fakeActivitySource struct {
	account        domain.Account
	accountErr     error
	comments       []reddit.Item
	commentsErr    error
	submissions    []reddit.Item
	submissionsErr error
	submissionsHit bool
}

func (f *fakeActivitySource) Account(ctx context.Context, handle string) (domain.Account, error) {
	return f.account, f.accountErr
}

func (f *fakeActivitySource) Comments(ctx context.Context, handle string, limit int) ([]reddit.Item, error) {
	return f.comments, f.commentsErr
}

func (f *fakeActivitySource) Submissions(ctx context.Context, handle string, limit int) ([]reddit.Item, error) {
	f.submissionsHit = true
	return f.submissions, f.submissionsErr
}

func commentItem(id string, score int, created int64) reddit.Item {
	return reddit.NewItem("t1", map[string]any{
		"id": id, "body": "comment " + id, "score": score, "subreddit": "golang", "created_utc": created,
	})
}

func submissionItem(id string, score int, created int64, subreddit string) reddit.Item {
	return reddit.NewItem("t3", map[string]any{
		"id": id, "title": "post " + id, "selftext": "", "score": score, "subreddit": subreddit, "created_utc": created,
	})
}

func newTestCollector(src ActivitySource, now time.Time) *ActivityCollector {
	c := NewActivityCollector(src, zap.NewNop())
	c.now = func() time.Time { return now }
	return c
}

func TestActivityCollectorSingleSubmission(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()
	src := &fakeActivitySource{
		account:     domain.Account{Handle: "alice"},
		submissions: []reddit.Item{submissionItem("s1", 10, now.Unix(), "golang")},
	}

	snap, err := newTestCollector(src, now).Collect(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(snap.TopSubmissions) != 1 || snap.TopSubmissions[0].ID != "s1" {
		t.Fatalf("expected top submission s1, got %+v", snap.TopSubmissions)
	}
	if snap.CommentsPerWeek != 0 {
		t.Fatalf("expected zero comment cadence, got %v", snap.CommentsPerWeek)
	}
	if math.Abs(snap.SubmissionsPerWeek-7) > 1e-9 {
		t.Fatalf("expected cadence clamped to one day (7/week), got %v", snap.SubmissionsPerWeek)
	}
	if len(snap.TopComments) != 0 {
		t.Fatalf("expected no top comments, got %d", len(snap.TopComments))
	}
}

func TestActivityCollectorNoActivity(t *testing.T) {
	now := time.Now().UTC()
	src := &fakeActivitySource{account: domain.Account{Handle: "quiet"}}

	snap, err := newTestCollector(src, now).Collect(context.Background(), "quiet")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if snap.CommentsPerWeek != 0 || snap.SubmissionsPerWeek != 0 {
		t.Fatalf("expected zero cadence, got %v/%v", snap.CommentsPerWeek, snap.SubmissionsPerWeek)
	}
	if math.IsNaN(snap.CommentsPerWeek) || math.IsInf(snap.SubmissionsPerWeek, 0) {
		t.Fatalf("cadence must be finite")
	}
}

func TestActivityCollectorNotFound(t *testing.T) {
	src := &fakeActivitySource{accountErr: reddit.ErrNotFound}
	_, err := newTestCollector(src, time.Now()).Collect(context.Background(), "ghost")
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestActivityCollectorSourceDown(t *testing.T) {
	src := &fakeActivitySource{accountErr: errors.New("connection reset")}
	_, err := newTestCollector(src, time.Now()).Collect(context.Background(), "alice")
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestActivityCollectorPartialFailures(t *testing.T) {
	now := time.Unix(1_700_000_000, 0).UTC()
	broken := reddit.Item{Kind: "t3", Data: []byte(`{"title": 42}`)}
	src := &fakeActivitySource{
		account:     domain.Account{Handle: "alice"},
		commentsErr: errors.New("timeout"),
		submissions: []reddit.Item{
			submissionItem("s1", 1, now.Add(-14*24*time.Hour).Unix(), "golang"),
			broken,
			submissionItem("s2", 2, now.Unix(), "rust"),
		},
	}

	snap, err := newTestCollector(src, now).Collect(context.Background(), "alice")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !src.submissionsHit {
		t.Fatalf("expected submissions to be fetched after comments failure")
	}
	if !snap.Partial() {
		t.Fatalf("expected snapshot to be marked partial")
	}
	if len(snap.Submissions) != 2 {
		t.Fatalf("expected broken item to be skipped, got %d submissions", len(snap.Submissions))
	}
	if math.Abs(snap.SubmissionsPerWeek-1) > 1e-9 {
		t.Fatalf("expected 2 items over 2 weeks = 1/week, got %v", snap.SubmissionsPerWeek)
	}
}

func TestTopByScoreStableTies(t *testing.T) {
	scores := []int{5, 9, 9, 1, 7}
	records := make([]domain.ActivityRecord, len(scores))
	for i, s := range scores {
		records[i] = domain.ActivityRecord{ID: string(rune('a' + i)), Score: s}
	}

	top := TopByScore(records, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 items, got %d", len(top))
	}
	want := []string{"b", "c", "e"}
	for i, id := range want {
		if top[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, top[i].ID)
		}
	}
	if records[0].ID != "a" {
		t.Fatalf("input must not be reordered")
	}
}

func TestRankSubreddits(t *testing.T) {
	records := []domain.ActivityRecord{
		{Subreddit: "golang"}, {Subreddit: "rust"}, {Subreddit: "rust"}, {Subreddit: "golang"}, {Subreddit: "python"}, {Subreddit: ""},
	}
	got := RankSubreddits(records)
	if len(got) != 3 {
		t.Fatalf("expected 3 communities, got %d", len(got))
	}
	if got[0].Subreddit != "golang" || got[1].Subreddit != "rust" || got[2].Subreddit != "python" {
		t.Fatalf("unexpected ranking %+v", got)
	}
}
