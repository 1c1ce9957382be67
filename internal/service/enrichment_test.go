package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reddit-persona/internal/domain"
	"reddit-persona/internal/peopledata"
)

type fakePeopleLookup struct {
	match domain.PersonMatch
	err   error
	calls int
	last  peopledata.EnrichRequest
}

func (f *fakePeopleLookup) Enrich(ctx context.Context, req peopledata.EnrichRequest) (domain.PersonMatch, error) {
	f.calls++
	f.last = req
	return f.match, f.err
}

func sampleMatch() domain.PersonMatch {
	return domain.PersonMatch{
		FullName:           "Alice Smith",
		JobTitle:           "Engineer",
		JobCompanyName:     "Acme",
		JobCompanyIndustry: "software",
		JobCompanySize:     "51-200",
		LocationName:       "Berlin, Germany",
		WorkEmail:          "alice@acme.io",
		Skills:             []string{"go", "sql", "k8s", "grpc", "redis", "linux", "aws", "docker", "terraform", "bash", "python"},
		Education: []domain.MatchEducation{{
			School:  domain.MatchNamed{Name: "TU Berlin"},
			Degrees: []string{"bachelors"},
			Majors:  []string{"computer science"},
		}},
		Experience: []domain.MatchExperience{{
			Company:   domain.MatchCompany{Name: "Acme", Industry: "software"},
			Title:     domain.MatchTitle{Name: "Engineer"},
			StartDate: "2020-01",
		}},
		Photo: "https://img.example/alice.png",
		Profiles: []domain.MatchProfile{
			{Network: "github", URL: "github.com/alice"},
			{Network: "linkedin", URL: "linkedin.com/in/alice"},
			{Network: "github", URL: "github.com/alice"},
		},
	}
}

func TestClassifySocialProfile(t *testing.T) {
	cases := map[string]string{
		"https://github.com/alice":          domain.ProviderGitHub,
		"github.com/alice":                  domain.ProviderGitHub,
		"https://gist.github.com/alice":     domain.ProviderGitHub,
		"https://www.twitter.com/alice":     domain.ProviderTwitter,
		"https://x.com/alice":               domain.ProviderTwitter,
		"https://www.LinkedIn.com/in/alice": domain.ProviderLinkedIn,
	}
	for raw, want := range cases {
		got, ok := ClassifySocialProfile(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}

	for _, raw := range []string{"https://evil.com/twitter.com", "https://nottwitter.com/a", "https://example.org", ""} {
		_, ok := ClassifySocialProfile(raw)
		assert.False(t, ok, raw)
	}
}

func TestBuildEnrichmentQuery(t *testing.T) {
	p := domain.Persona{
		Name:            domain.StringPtr("Alice"),
		Location:        domain.StringPtr(""),
		CompanyIndustry: domain.StringPtr("fintech"),
		SocialProfile: []string{
			"https://github.com/alice",
			"https://github.com/alice-alt",
			"https://evil.com/twitter.com",
			"https://x.com/alice",
		},
	}

	q := BuildEnrichmentQuery(p)
	assert.Equal(t, "Alice", q.Name)
	assert.Empty(t, q.Location)
	assert.Equal(t, "fintech", q.Company)
	assert.Equal(t, map[string]string{
		domain.ProviderGitHub:  "https://github.com/alice",
		domain.ProviderTwitter: "https://x.com/alice",
	}, q.Profiles)

	p.Company = domain.StringPtr("Acme")
	assert.Equal(t, "Acme", BuildEnrichmentQuery(p).Company)

	assert.True(t, BuildEnrichmentQuery(domain.Persona{}).Empty())
}

func TestApplyMatchFillsAbsentFields(t *testing.T) {
	in := domain.Persona{
		Name:          domain.StringPtr("alice_reddit"),
		SocialProfile: []string{"github.com/alice"},
	}

	out := ApplyMatch(in, sampleMatch())

	assert.Equal(t, "alice_reddit", *out.Name)
	require.NotNil(t, out.Intro)
	assert.Equal(t, "Engineer at Acme", *out.Intro)
	assert.Equal(t, "Berlin, Germany", *out.Location)
	assert.Equal(t, "Acme", *out.Company)
	assert.Equal(t, "alice@acme.io", *out.Email)
	assert.Len(t, out.Keywords, MaxEnrichmentKeywords)
	assert.Equal(t, []domain.EducationEntry{{School: "TU Berlin", Degree: "bachelors", Field: "computer science"}}, out.Education)
	assert.Equal(t, []domain.WorkEntry{{Company: "Acme", Title: "Engineer", StartDate: "2020-01", Industry: "software"}}, out.WorkHistory)
	assert.Equal(t, []string{"github.com/alice", "linkedin.com/in/alice"}, out.SocialProfile)

	// la entrada no se muta
	assert.Nil(t, in.Intro)
	assert.Equal(t, []string{"github.com/alice"}, in.SocialProfile)
}

func TestApplyMatchKeepsEmptyPresentValues(t *testing.T) {
	in := domain.Persona{
		Name:     domain.StringPtr(""),
		Location: domain.StringPtr(""),
		Skills:   []string{},
		Keywords: []string{},
	}

	out := ApplyMatch(in, sampleMatch())

	assert.Equal(t, "", *out.Name)
	assert.Equal(t, "", *out.Location)
	assert.Empty(t, out.Skills)
	assert.NotNil(t, out.Skills)
	assert.Empty(t, out.Keywords)
}

func TestApplyMatchIntroWithoutCompany(t *testing.T) {
	m := domain.PersonMatch{JobTitle: "Designer"}
	out := ApplyMatch(domain.Persona{}, m)
	require.NotNil(t, out.Intro)
	assert.Equal(t, "Designer", *out.Intro)
	assert.Nil(t, out.Company)
	assert.Nil(t, out.Education)
	assert.Nil(t, out.WorkHistory)
	assert.Nil(t, out.SocialProfile)
}

func TestApplyMatchIdempotent(t *testing.T) {
	inputs := []domain.Persona{
		{},
		{Name: domain.StringPtr("x"), SocialProfile: []string{"https://x.com/a"}},
		{Email: domain.StringPtr(""), Skills: []string{"rust"}, Education: []domain.EducationEntry{}},
	}
	matches := []domain.PersonMatch{{}, sampleMatch(), {Skills: []string{"a"}, Profiles: []domain.MatchProfile{{URL: "u"}, {URL: "u"}}}}

	for _, p := range inputs {
		for _, m := range matches {
			once := ApplyMatch(p, m)
			twice := ApplyMatch(once, m)
			if diff := cmp.Diff(once, twice); diff != "" {
				t.Fatalf("ApplyMatch not idempotent (-once +twice):\n%s", diff)
			}
		}
	}
}

func TestEnrichmentResolverSkippedWithoutLookup(t *testing.T) {
	r := NewEnrichmentResolver(nil, zap.NewNop())
	in := domain.Persona{Name: domain.StringPtr("Alice")}

	out, outcome := r.Enrich(context.Background(), in)

	assert.Equal(t, domain.EnrichmentSkipped, outcome)
	assert.Empty(t, cmp.Diff(in, out))
}

func TestEnrichmentResolverSkippedOnEmptyQuery(t *testing.T) {
	lookup := &fakePeopleLookup{match: sampleMatch()}
	r := NewEnrichmentResolver(lookup, zap.NewNop())
	in := domain.Persona{Occupation: domain.StringPtr("dev"), SocialProfile: []string{"https://example.org/me"}}

	out, outcome := r.Enrich(context.Background(), in)

	assert.Equal(t, domain.EnrichmentSkipped, outcome)
	assert.Zero(t, lookup.calls)
	assert.Empty(t, cmp.Diff(in, out))
}

func TestEnrichmentResolverFailedKeepsPersona(t *testing.T) {
	lookup := &fakePeopleLookup{err: peopledata.ErrNoMatch}
	r := NewEnrichmentResolver(lookup, zap.NewNop())
	in := domain.Persona{Name: domain.StringPtr("Alice")}

	out, outcome := r.Enrich(context.Background(), in)

	assert.Equal(t, domain.EnrichmentFailed, outcome)
	assert.Equal(t, 1, lookup.calls)
	assert.Empty(t, cmp.Diff(in, out))

	lookup.err = errors.New("timeout")
	_, outcome = r.Enrich(context.Background(), in)
	assert.Equal(t, domain.EnrichmentFailed, outcome)
}

func TestEnrichmentResolverMatched(t *testing.T) {
	lookup := &fakePeopleLookup{match: sampleMatch()}
	r := NewEnrichmentResolver(lookup, zap.NewNop())

	out, outcome := r.Enrich(context.Background(), domain.Persona{Name: domain.StringPtr("Alice")})

	assert.Equal(t, domain.EnrichmentMatched, outcome)
	assert.Equal(t, "Alice", lookup.last.Params.Name)
	assert.InDelta(t, EnrichmentMinLikelihood, lookup.last.MinLikelihood, 1e-9)
	assert.Equal(t, EnrichmentRequiredFields, lookup.last.Required)
	require.NotNil(t, out.Company)
	assert.Equal(t, "Acme", *out.Company)
}
