package domain

import (
	"slices"
	"time"

	"fdpg_backend/platform/apperr"

	"github.com/google/uuid"
)

type bucket int

const (
	bucketOpenDizChecks bucket = iota
	bucketExcluded
	bucketDizApproved
	bucketConditionChecks
	bucketUacApproved
	bucketSigned
)

// locationFlow is scanned in order; the last bucket holding a location is
// its most advanced state.
var locationFlow = []struct {
	bucket bucket
	state  LocationState
}{
	{bucketOpenDizChecks, LocationStateDizCheck},
	{bucketExcluded, LocationStateExcluded},
	{bucketDizApproved, LocationStateDizApproved},
	{bucketConditionChecks, LocationStateUacConditionCheck},
	{bucketUacApproved, LocationStateUacApproved},
	{bucketSigned, LocationStateContractSigned},
}

func (p *Proposal) bucketSlice(b bucket) *[]string {
	switch b {
	case bucketOpenDizChecks:
		return &p.OpenDizChecks
	case bucketExcluded:
		return &p.RequestedButExcludedLocations
	case bucketDizApproved:
		return &p.DizApprovedLocations
	case bucketConditionChecks:
		return &p.OpenDizConditionChecks
	case bucketUacApproved:
		return &p.UacApprovedLocations
	default:
		return &p.SignedContracts
	}
}

func (p *Proposal) inBucket(location string, b bucket) bool {
	return slices.Contains(*p.bucketSlice(b), location)
}

// moveLocation removes location from every bucket and appends it to target,
// keeping bucket membership mutually exclusive.
func (p *Proposal) moveLocation(location string, target bucket) {
	for _, step := range locationFlow {
		s := p.bucketSlice(step.bucket)
		*s = slices.DeleteFunc(*s, func(v string) bool { return v == location })
	}
	s := p.bucketSlice(target)
	*s = append(*s, location)
}

// IsRequested reports whether location takes part in the location check.
func (p *Proposal) IsRequested(location string) bool {
	for _, step := range locationFlow {
		if p.inBucket(location, step.bucket) {
			return true
		}
	}
	return false
}

// LocationStateOf returns the most advanced bucket holding location.
func (p *Proposal) LocationStateOf(location string) (LocationState, bool) {
	var (
		state LocationState
		found bool
	)
	for _, step := range locationFlow {
		if p.inBucket(location, step.bucket) {
			state, found = step.state, true
		}
	}
	return state, found
}

// MostAdvancedState derives the status chip of a DIZ or UAC caller's location.
func MostAdvancedState(p *Proposal, user RequestUser) (LocationState, bool) {
	if !user.SingleKnownRole.IsLocationRole() || user.MiiLocation == "" {
		return "", false
	}
	return p.LocationStateOf(user.MiiLocation)
}

// VoteInput carries a location vote.
type VoteInput struct {
	Approve    bool
	Condition  string
	DataAmount int
	Reason     string
}

func requireLocationRole(user RequestUser, roles ...Role) error {
	if !slices.Contains(roles, user.SingleKnownRole) {
		return apperr.Forbidden("role may not vote for a location")
	}
	if user.MiiLocation == "" {
		return apperr.Forbidden("caller has no location")
	}
	return nil
}

func requireStatus(p *Proposal, status Status) error {
	if p.Status != status {
		return apperr.Validation("proposal is not in status " + string(status)).
			WithDetails(apperr.TransitionDetails{Field: "status", From: string(p.Status), To: string(status)})
	}
	return nil
}

func requireBucket(p *Proposal, location string, b bucket, field string) error {
	if !p.inBucket(location, b) {
		return apperr.Validation("location " + location + " is not in " + field).
			WithDetails(apperr.TransitionDetails{Field: field})
	}
	return nil
}

// DizVote records the DIZ decision of the caller's location.
func DizVote(p *Proposal, user RequestUser, in VoteInput, now time.Time) error {
	if err := requireLocationRole(user, RoleDizMember); err != nil {
		return err
	}
	if err := requireStatus(p, StatusLocationCheck); err != nil {
		return err
	}
	location := user.MiiLocation
	if err := requireBucket(p, location, bucketOpenDizChecks, "openDizChecks"); err != nil {
		return err
	}

	if in.Approve {
		p.moveLocation(location, bucketDizApproved)
		p.addHistory(HistoryDizApprove, location, user, nil, now)
	} else {
		p.moveLocation(location, bucketExcluded)
		p.appendDecline(location, HistoryDizDecline, in.Reason, user, now)
		p.addHistory(HistoryDizDecline, location, user, nil, now)
	}
	p.touch(now)
	return nil
}

// UacVote records the UAC decision of the caller's location. An approval
// carrying a condition waits for FDPG review.
func UacVote(p *Proposal, user RequestUser, in VoteInput, now time.Time) error {
	if err := requireLocationRole(user, RoleUacMember); err != nil {
		return err
	}
	if err := requireStatus(p, StatusLocationCheck); err != nil {
		return err
	}
	location := user.MiiLocation
	if err := requireBucket(p, location, bucketDizApproved, "dizApprovedLocations"); err != nil {
		return err
	}
	if in.DataAmount < 0 {
		return apperr.Validation("dataAmount must not be negative").
			WithDetails(apperr.TransitionDetails{Field: "dataAmount"})
	}

	switch {
	case !in.Approve:
		p.moveLocation(location, bucketExcluded)
		p.appendDecline(location, HistoryUacDecline, in.Reason, user, now)
		p.addHistory(HistoryUacDecline, location, user, nil, now)
	case in.Condition != "":
		p.moveLocation(location, bucketConditionChecks)
		p.ConditionalApprovals = append(p.ConditionalApprovals, ConditionalApproval{
			ID:         uuid.NewString(),
			Location:   location,
			Condition:  in.Condition,
			DataAmount: in.DataAmount,
			CreatedBy:  user.UserID,
			CreatedAt:  now,
		})
		p.addHistory(HistoryUacApproveWithCondition, location, user, nil, now)
	default:
		p.moveLocation(location, bucketUacApproved)
		p.UacApprovals = append(p.UacApprovals, UacApproval{
			ID:         uuid.NewString(),
			Location:   location,
			DataAmount: in.DataAmount,
			CreatedBy:  user.UserID,
			CreatedAt:  now,
		})
		p.addHistory(HistoryUacApprove, location, user, nil, now)
	}
	p.touch(now)
	return nil
}

// ReviewCondition accepts or declines a conditional UAC approval. The DIZ of
// the location resolves its own open condition check; FDPG may act for any
// location.
func ReviewCondition(p *Proposal, user RequestUser, location string, accept bool, now time.Time) error {
	accepted, declined := HistoryFdpgConditionAccepted, HistoryFdpgConditionDeclined
	switch user.SingleKnownRole {
	case RoleFdpgMember:
	case RoleDizMember:
		if user.MiiLocation == "" || user.MiiLocation != location {
			return apperr.Forbidden("DIZ members may only review conditions of their own location")
		}
		accepted, declined = HistoryDizConditionAccepted, HistoryDizConditionDeclined
	default:
		return apperr.Forbidden("role may not review conditions")
	}
	if err := requireStatus(p, StatusLocationCheck); err != nil {
		return err
	}
	if err := requireBucket(p, location, bucketConditionChecks, "openDizConditionChecks"); err != nil {
		return err
	}

	idx := -1
	for i := range p.ConditionalApprovals {
		if p.ConditionalApprovals[i].Location == location && p.ConditionalApprovals[i].ReviewedAt == nil {
			idx = i
		}
	}
	if idx < 0 {
		return apperr.NotFound("no open conditional approval for location " + location)
	}
	ca := &p.ConditionalApprovals[idx]
	ca.IsAccepted = accept
	ca.ReviewedAt = &now
	ca.ReviewedBy = user.UserID

	if accept {
		p.moveLocation(location, bucketUacApproved)
		p.UacApprovals = append(p.UacApprovals, UacApproval{
			ID:            uuid.NewString(),
			Location:      location,
			DataAmount:    ca.DataAmount,
			IsConditional: true,
			CreatedBy:     user.UserID,
			CreatedAt:     now,
		})
		p.addHistory(accepted, location, user, nil, now)
	} else {
		p.moveLocation(location, bucketExcluded)
		p.addHistory(declined, location, user, nil, now)
	}
	p.touch(now)
	return nil
}

// SignContract records the contract decision of the caller's location.
func SignContract(p *Proposal, user RequestUser, in VoteInput, now time.Time) error {
	if err := requireLocationRole(user, RoleDizMember, RoleUacMember); err != nil {
		return err
	}
	if err := requireStatus(p, StatusContracting); err != nil {
		return err
	}
	location := user.MiiLocation
	if err := requireBucket(p, location, bucketUacApproved, "uacApprovedLocations"); err != nil {
		return err
	}

	if in.Approve {
		p.moveLocation(location, bucketSigned)
		p.addHistory(HistoryContractSigned, location, user, nil, now)
	} else {
		p.moveLocation(location, bucketExcluded)
		p.appendDecline(location, HistoryContractDeclined, in.Reason, user, now)
		p.addHistory(HistoryContractDeclined, location, user, nil, now)
	}
	p.touch(now)
	return nil
}

// RevertLocationVote puts a location back into the open DIZ check. Reverting
// a location that is already open is a no-op and reports false.
func RevertLocationVote(p *Proposal, user RequestUser, location string, now time.Time) (bool, error) {
	if user.SingleKnownRole != RoleFdpgMember {
		return false, apperr.Forbidden("only FDPG members may revert location votes")
	}
	if err := requireStatus(p, StatusLocationCheck); err != nil {
		return false, err
	}
	if !p.IsRequested(location) {
		return false, apperr.Validation("location " + location + " was not requested").
			WithDetails(apperr.TransitionDetails{Field: "location"})
	}
	state, _ := p.LocationStateOf(location)
	if state == LocationStateDizCheck {
		return false, nil
	}

	p.moveLocation(location, bucketOpenDizChecks)
	p.addHistory(HistoryFdpgLocationVoteReverted, location, user, map[string]any{"revertedFrom": string(state)}, now)
	p.touch(now)
	return true, nil
}

func (p *Proposal) appendDecline(location string, t HistoryEventType, reason string, user RequestUser, now time.Time) {
	p.DeclineReasons = append(p.DeclineReasons, DeclineReason{
		ID:        uuid.NewString(),
		Location:  location,
		Type:      t,
		Reason:    reason,
		CreatedBy: user.UserID,
		CreatedAt: now,
	})
}

func (p *Proposal) touch(now time.Time) {
	p.Version.Minor++
	p.UpdatedAt = now
	p.RecalculateCounters()
}
