package transport

import (
	"time"

	"github.com/google/uuid"
)

// ListChangelogsRequest filters and paginates changelogs.
type ListChangelogsRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=PENDING APPROVED DECLINED"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// SetChangelogStatusRequest resolves a changelog.
type SetChangelogStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING APPROVED DECLINED"`
}

// LocationData mirrors the registry fields of a location.
type LocationData struct {
	Code                  string `json:"code"`
	Display               string `json:"display"`
	Definition            string `json:"definition"`
	Consortium            string `json:"consortium"`
	Contract              string `json:"contract"`
	Abbreviation          string `json:"abbreviation"`
	URI                   string `json:"uri"`
	DataIntegrationCenter bool   `json:"dataIntegrationCenter"`
	DataManagementCenter  bool   `json:"dataManagementCenter"`
	Deprecated            bool   `json:"deprecated"`
}

// LocationResponse represents a registry entry in API responses.
type LocationResponse struct {
	LocationData
	UpdatedAt time.Time `json:"updatedAt"`
}

// LocationListResponse lists the registry.
type LocationListResponse struct {
	Items []LocationResponse `json:"items"`
}

// ChangelogResponse represents a changelog in API responses.
type ChangelogResponse struct {
	ID              uuid.UUID     `json:"_id"`
	Created         time.Time     `json:"created"`
	Status          string        `json:"status"`
	Strategy        string        `json:"strategy"`
	ForCode         string        `json:"forCode"`
	StatusSetBy     *string       `json:"statusSetBy,omitempty"`
	StatusSetDate   *time.Time    `json:"statusSetDate,omitempty"`
	OldLocationData *LocationData `json:"oldLocationData,omitempty"`
	NewLocationData LocationData  `json:"newLocationData"`
}

// ChangelogListResponse is a page of changelogs.
type ChangelogListResponse struct {
	Items      []ChangelogResponse `json:"items"`
	Total      int                 `json:"total"`
	Page       int                 `json:"page"`
	PageSize   int                 `json:"pageSize"`
	TotalPages int                 `json:"totalPages"`
}
