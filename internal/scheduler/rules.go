package scheduler

import (
	"time"

	"fdpg_backend/internal/proposals/domain"
)

const day = 24 * time.Hour

// reminderRule derives a due date from a proposal deadline.
type reminderRule struct {
	field  domain.DueDateField
	offset time.Duration
	status domain.Status
}

var reminderRules = map[domain.ScheduleType]reminderRule{
	domain.ScheduleReminderFdpgCheck:           {domain.DueDateFdpgCheck, 0, domain.StatusFdpgCheck},
	domain.ScheduleReminderLocationCheck1:      {domain.DueDateLocationCheck, -14 * day, domain.StatusLocationCheck},
	domain.ScheduleReminderLocationCheck2:      {domain.DueDateLocationCheck, -3 * day, domain.StatusLocationCheck},
	domain.ScheduleReminderLocationCheck3:      {domain.DueDateLocationCheck, 0, domain.StatusLocationCheck},
	domain.ScheduleReminderLocationContracting: {domain.DueDateLocationContracting, 0, domain.StatusContracting},
	domain.ScheduleReminderExpectDataDelivery:  {domain.DueDateExpectDataDelivery, 0, domain.StatusExpectDataDelivery},
	domain.ScheduleReminderFinishedProject:     {domain.DueDateFinishedProject, 0, domain.StatusDataResearch},
}

// remindersByStatus lists the reminders kept while a proposal is in a status.
var remindersByStatus = map[domain.Status][]domain.ScheduleType{
	domain.StatusFdpgCheck: {domain.ScheduleReminderFdpgCheck},
	domain.StatusLocationCheck: {
		domain.ScheduleReminderLocationCheck1,
		domain.ScheduleReminderLocationCheck2,
		domain.ScheduleReminderLocationCheck3,
	},
	domain.StatusContracting:        {domain.ScheduleReminderLocationContracting},
	domain.StatusExpectDataDelivery: {domain.ScheduleReminderExpectDataDelivery},
	domain.StatusDataResearch:       {domain.ScheduleReminderFinishedProject},
}

// RemindersFor returns the reminder types belonging to status.
func RemindersFor(status domain.Status) []domain.ScheduleType {
	return remindersByStatus[status]
}

// TypesForDeadline returns the reminders derived from a deadline field.
func TypesForDeadline(field domain.DueDateField) []domain.ScheduleType {
	var out []domain.ScheduleType
	for _, t := range orderedTypes {
		if rule, ok := reminderRules[t]; ok && rule.field == field {
			out = append(out, t)
		}
	}
	return out
}

// RequiredStatus is the proposal status a reminder is only meaningful in.
func RequiredStatus(t domain.ScheduleType) (domain.Status, bool) {
	rule, ok := reminderRules[t]
	return rule.status, ok
}

var orderedTypes = []domain.ScheduleType{
	domain.ScheduleReminderFdpgCheck,
	domain.ScheduleReminderLocationCheck1,
	domain.ScheduleReminderLocationCheck2,
	domain.ScheduleReminderLocationCheck3,
	domain.ScheduleReminderLocationContracting,
	domain.ScheduleReminderExpectDataDelivery,
	domain.ScheduleReminderFinishedProject,
	domain.ScheduleParticipatingResearcherSummary,
}

// DueAfter computes when a schedule of type t becomes eligible. Summaries run
// at the next UTC midnight. Reminders need their deadline and are dropped
// when the computed date already passed.
func DueAfter(t domain.ScheduleType, p *domain.Proposal, now time.Time) (time.Time, bool) {
	if t == domain.ScheduleParticipatingResearcherSummary {
		return now.UTC().Truncate(day).Add(day), true
	}

	rule, ok := reminderRules[t]
	if !ok {
		return time.Time{}, false
	}
	deadline, ok := p.Deadline(rule.field)
	if !ok {
		return time.Time{}, false
	}
	due := deadline.Add(rule.offset)
	if due.Before(now) {
		return time.Time{}, false
	}
	return due, true
}
