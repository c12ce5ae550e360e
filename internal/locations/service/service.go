package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"fdpg_backend/internal/locations/repository"
	"fdpg_backend/internal/locations/transport"
	"fdpg_backend/internal/proposals/domain"
	"fdpg_backend/platform/apperr"
	"fdpg_backend/platform/logger"
)

// Service provides the location registry and changelog review.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
	now  func() time.Time
}

// New creates a new locations service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// ListLocations returns the registry.
func (s *Service) ListLocations(ctx context.Context) (transport.LocationListResponse, error) {
	items, err := s.repo.FindAll(ctx)
	if err != nil {
		return transport.LocationListResponse{}, err
	}
	out := make([]transport.LocationResponse, len(items))
	for i, item := range items {
		out[i] = transport.LocationResponse{LocationData: toData(item.LocationData), UpdatedAt: item.UpdatedAt}
	}
	return transport.LocationListResponse{Items: out}, nil
}

// ValidateCodes fails with NotFound when a code is not in the registry and
// with Validation when it is deprecated.
func (s *Service) ValidateCodes(ctx context.Context, codes []string) error {
	if len(codes) == 0 {
		return nil
	}
	lookup, err := s.repo.FindAllLookUpMap(ctx)
	if err != nil {
		return err
	}

	var unknown, deprecated []string
	for _, code := range codes {
		l, ok := lookup[code]
		switch {
		case !ok:
			unknown = append(unknown, code)
		case l.Deprecated:
			deprecated = append(deprecated, code)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return apperr.NotFound("unknown location: " + strings.Join(unknown, ", "))
	}
	if len(deprecated) > 0 {
		sort.Strings(deprecated)
		return apperr.Validation("deprecated location: " + strings.Join(deprecated, ", "))
	}
	return nil
}

// ListChangelogs returns a page of changelogs. FDPG only.
func (s *Service) ListChangelogs(ctx context.Context, user domain.RequestUser, req transport.ListChangelogsRequest) (transport.ChangelogListResponse, error) {
	if err := requireFdpg(user); err != nil {
		return transport.ChangelogListResponse{}, err
	}

	page := req.Page
	pageSize := req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	params := repository.ListParams{Offset: (page - 1) * pageSize, Limit: pageSize}
	if req.Status != "" {
		status := repository.ChangelogStatus(req.Status)
		params.Status = &status
	}

	items, total, err := s.repo.ListChangelogs(ctx, params)
	if err != nil {
		return transport.ChangelogListResponse{}, err
	}

	out := make([]transport.ChangelogResponse, len(items))
	for i, item := range items {
		out[i] = toChangelogResponse(item)
	}
	return transport.ChangelogListResponse{
		Items:      out,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// ValidateChangelogTransition allows only Pending -> Approved|Declined.
func ValidateChangelogTransition(from, to repository.ChangelogStatus) error {
	if from != repository.ChangelogPending || (to != repository.ChangelogApproved && to != repository.ChangelogDeclined) {
		return apperr.InvalidTransition("status", string(from), string(to))
	}
	return nil
}

// SetChangelogStatus resolves a pending changelog. Approval writes the new
// location data to the registry in the same transaction.
func (s *Service) SetChangelogStatus(ctx context.Context, user domain.RequestUser, id uuid.UUID, req transport.SetChangelogStatusRequest) (transport.ChangelogResponse, error) {
	if err := requireFdpg(user); err != nil {
		return transport.ChangelogResponse{}, err
	}
	target := repository.ChangelogStatus(req.Status)

	var resolved repository.Changelog
	err := s.repo.WithTx(ctx, func(tx repository.Repository) error {
		current, err := tx.GetChangelog(ctx, id)
		if err != nil {
			return err
		}
		if err := ValidateChangelogTransition(current.Status, target); err != nil {
			return err
		}

		resolved, err = tx.SetChangelogStatus(ctx, id, target, user.UserID, s.now())
		if err != nil {
			return err
		}
		if target == repository.ChangelogApproved {
			if _, err := tx.Update(ctx, resolved.NewLocationData); err != nil {
				return fmt.Errorf("apply changelog %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return transport.ChangelogResponse{}, err
	}

	s.log.Info("location changelog resolved", "id", id, "code", resolved.ForCode, "strategy", resolved.Strategy, "status", resolved.Status, "by", user.UserID)
	return toChangelogResponse(resolved), nil
}

func requireFdpg(user domain.RequestUser) error {
	if user.SingleKnownRole != domain.RoleFdpgMember {
		return apperr.Forbidden("only FDPG members may review location changelogs")
	}
	return nil
}

func toData(d repository.LocationData) transport.LocationData {
	return transport.LocationData{
		Code:                  d.Code,
		Display:               d.Display,
		Definition:            d.Definition,
		Consortium:            d.Consortium,
		Contract:              d.Contract,
		Abbreviation:          d.Abbreviation,
		URI:                   d.URI,
		DataIntegrationCenter: d.DataIntegrationCenter,
		DataManagementCenter:  d.DataManagementCenter,
		Deprecated:            d.Deprecated,
	}
}

func toChangelogResponse(c repository.Changelog) transport.ChangelogResponse {
	resp := transport.ChangelogResponse{
		ID:              c.ID,
		Created:         c.Created,
		Status:          string(c.Status),
		Strategy:        string(c.Strategy),
		ForCode:         c.ForCode,
		StatusSetBy:     c.StatusSetBy,
		StatusSetDate:   c.StatusSetDate,
		NewLocationData: toData(c.NewLocationData),
	}
	if c.OldLocationData != nil {
		old := toData(*c.OldLocationData)
		resp.OldLocationData = &old
	}
	return resp
}
