package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fdpg_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct{ url string }

func (c testConfig) GetCodesystemURL() string            { return c.url }
func (c testConfig) GetCodesystemTimeout() time.Duration { return time.Second }
func (c testConfig) IsLocationSyncEnabled() bool         { return c.url != "" }

func serve(t *testing.T, status int, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/fhir+json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return New(testConfig{url: srv.URL}, logger.Discard())
}

func TestFetchLocationsMapsProperties(t *testing.T) {
	c := serve(t, http.StatusOK, `{
		"resourceType": "CodeSystem",
		"concept": [
			{
				"code": "UKL",
				"display": "Universitätsklinikum Leipzig",
				"definition": "Leipzig",
				"property": [
					{"code": "consortium", "valueString": "SMITH"},
					{"code": "abbreviation", "valueString": "UKL"},
					{"code": "uri", "valueString": "https://www.uniklinikum-leipzig.de"},
					{"code": "dic", "valueBoolean": true},
					{"code": "dms", "valueBoolean": false},
					{"code": "replacedBy", "valueCode": "UKL2"}
				]
			},
			{"display": "no code"}
		]
	}`)

	records, err := c.FetchLocations(context.Background())

	require.NoError(t, err)
	require.Len(t, records, 1)
	r := records["UKL"]
	assert.Equal(t, "SMITH", r.Consortium)
	assert.Equal(t, "https://www.uniklinikum-leipzig.de", r.URI)
	assert.True(t, r.DataIntegrationCenter)
	assert.False(t, r.DataManagementCenter)
	assert.Equal(t, "UKL2", r.ReplacedBy)
	assert.True(t, r.IsDeprecated())
}

func TestFetchLocationsWithoutConceptsFails(t *testing.T) {
	c := serve(t, http.StatusOK, `{"resourceType": "CodeSystem"}`)

	_, err := c.FetchLocations(context.Background())

	require.ErrorIs(t, err, ErrInvalidResponse)
}

func TestFetchLocationsUpstreamError(t *testing.T) {
	c := serve(t, http.StatusBadGateway, `oops`)

	_, err := c.FetchLocations(context.Background())

	require.Error(t, err)
}

func TestIsDeprecated(t *testing.T) {
	assert.False(t, ExternalRecord{Code: "A"}.IsDeprecated())
	assert.True(t, ExternalRecord{Status: "Deprecated"}.IsDeprecated())
	assert.True(t, ExternalRecord{DeprecationDate: "2025-12-31"}.IsDeprecated())
	assert.True(t, ExternalRecord{ReplacedBy: "B"}.IsDeprecated())
	assert.False(t, ExternalRecord{Replaces: "B"}.IsDeprecated())
}
