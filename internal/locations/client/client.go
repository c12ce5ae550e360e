// Package client provides the HTTP client for the location codesystem.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fdpg_backend/platform/config"
	"fdpg_backend/platform/logger"
)

// ErrInvalidResponse is returned when the codesystem payload has no concepts.
var ErrInvalidResponse = errors.New("Invalid API response")

const deprecatedStatus = "deprecated"

// ExternalRecord is a location as published by the codesystem.
type ExternalRecord struct {
	Code                  string
	Display               string
	Definition            string
	Consortium            string
	Contract              string
	Abbreviation          string
	URI                   string
	DataIntegrationCenter bool
	DataManagementCenter  bool
	Status                string
	DeprecationDate       string
	Replaces              string
	ReplacedBy            string
}

// IsDeprecated derives the deprecation flag. Any replacement, a deprecation
// date or an explicit status marks the record deprecated.
func (r ExternalRecord) IsDeprecated() bool {
	return r.ReplacedBy != "" || r.DeprecationDate != "" || strings.EqualFold(r.Status, deprecatedStatus)
}

// Client fetches the location codesystem.
type Client struct {
	httpClient *http.Client
	url        string
	log        *logger.Logger
}

// New creates a codesystem client.
func New(cfg config.LocationSyncConfig, log *logger.Logger) *Client {
	timeout := cfg.GetCodesystemTimeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        cfg.GetCodesystemURL(),
		log:        log,
	}
}

// FetchLocations downloads the codesystem and returns its records keyed by
// code. Concepts without a code are dropped.
func (c *Client) FetchLocations(ctx context.Context) (map[string]ExternalRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/fhir+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("codesystem request failed", "error", err, "url", c.url)
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Error("codesystem upstream error", "status", resp.StatusCode, "url", c.url)
		return nil, fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	var body apiCodeSystem
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.log.Error("codesystem decode failed", "error", err)
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return parseConcepts(body.Concept)
}

// parseConcepts maps raw concepts to records.
func parseConcepts(concepts []apiConcept) (map[string]ExternalRecord, error) {
	if concepts == nil {
		return nil, ErrInvalidResponse
	}
	out := make(map[string]ExternalRecord, len(concepts))
	for _, concept := range concepts {
		if concept.Code == "" {
			continue
		}
		out[concept.Code] = concept.toRecord()
	}
	return out, nil
}

// apiCodeSystem is the raw codesystem resource.
type apiCodeSystem struct {
	ResourceType string       `json:"resourceType"`
	Concept      []apiConcept `json:"concept"`
}

type apiConcept struct {
	Code       string        `json:"code"`
	Display    string        `json:"display"`
	Definition string        `json:"definition"`
	Property   []apiProperty `json:"property"`
}

type apiProperty struct {
	Code          string `json:"code"`
	ValueString   string `json:"valueString,omitempty"`
	ValueCode     string `json:"valueCode,omitempty"`
	ValueBoolean  *bool  `json:"valueBoolean,omitempty"`
	ValueDateTime string `json:"valueDateTime,omitempty"`
}

func (p apiProperty) text() string {
	switch {
	case p.ValueString != "":
		return p.ValueString
	case p.ValueCode != "":
		return p.ValueCode
	default:
		return p.ValueDateTime
	}
}

func (c apiConcept) toRecord() ExternalRecord {
	r := ExternalRecord{Code: c.Code, Display: c.Display, Definition: c.Definition}
	for _, p := range c.Property {
		switch p.Code {
		case "consortium":
			r.Consortium = p.text()
		case "contract":
			r.Contract = p.text()
		case "abbreviation":
			r.Abbreviation = p.text()
		case "uri":
			r.URI = p.text()
		case "dic":
			r.DataIntegrationCenter = p.ValueBoolean != nil && *p.ValueBoolean
		case "dms":
			r.DataManagementCenter = p.ValueBoolean != nil && *p.ValueBoolean
		case "status":
			r.Status = p.text()
		case "deprecationDate":
			r.DeprecationDate = p.text()
		case "replaces":
			r.Replaces = p.text()
		case "replacedBy":
			r.ReplacedBy = p.text()
		}
	}
	return r
}
