package peopledata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit-persona/internal/domain"
)

func TestClientEnrichMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.Header.Get("X-Api-Key"))

		var req EnrichRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Jane Doe", req.Params.Name)
		assert.Equal(t, 0.6, req.MinLikelihood)
		assert.Equal(t, []string{"full_name"}, req.Required)

		_, _ = w.Write([]byte(`{"status":200,"likelihood":8,"data":{
			"full_name":"jane doe","job_title":"engineer","job_company_name":"acme",
			"work_email":true,"skills":["go"],
			"experience":[{"company":{"name":"acme","industry":"software"},"title":{"name":"engineer"},"start_date":"2020-01"}],
			"education":[{"school":{"name":"MIT"},"degrees":["bachelors"],"majors":["cs"]}]
		}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", time.Second)
	match, err := c.Enrich(context.Background(), EnrichRequest{
		Params:        domain.EnrichmentQuery{Name: "Jane Doe"},
		MinLikelihood: 0.6,
		Required:      []string{"full_name"},
	})
	require.NoError(t, err)
	assert.Equal(t, "jane doe", match.FullName)
	assert.Equal(t, "", match.WorkEmail.String())
	require.Len(t, match.Experience, 1)
	assert.Equal(t, "engineer", match.Experience[0].Title.Name)
	require.Len(t, match.Education, 1)
	assert.Equal(t, "MIT", match.Education[0].School.Name)
}

func TestClientEnrichNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":404,"error":{"type":"not_found"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "key", time.Second).Enrich(context.Background(), EnrichRequest{})
	assert.True(t, errors.Is(err, ErrNoMatch), "expected ErrNoMatch, got %v", err)
}

func TestClientEnrichMissingStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"full_name":"x"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "key", time.Second).Enrich(context.Background(), EnrichRequest{})
	assert.True(t, errors.Is(err, ErrNoMatch), "expected ErrNoMatch, got %v", err)
}

func TestClientEnrichHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "key", time.Second).Enrich(context.Background(), EnrichRequest{})
	assert.True(t, errors.Is(err, ErrStatus), "expected ErrStatus, got %v", err)
}
