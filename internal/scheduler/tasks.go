package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskProposalReminder = "proposals.reminder"

const TaskLocationSync = "locations.sync"

// Audience tells the notification layer who a reminder is for.
type Audience string

const (
	AudienceFdpg        Audience = "fdpg"
	AudienceLocations   Audience = "locations"
	AudienceResearchers Audience = "researchers"
	AudienceDms         Audience = "dms"
)

type SummaryEntry struct {
	Type      string    `json:"type"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReminderPayload struct {
	ScheduleID          string         `json:"scheduleId"`
	ProposalID          string         `json:"proposalId"`
	ProjectAbbreviation string         `json:"projectAbbreviation"`
	Type                string         `json:"type"`
	Audience            Audience       `json:"audience"`
	DueDate             *time.Time     `json:"dueDate,omitempty"`
	Locations           []string       `json:"locations,omitempty"`
	Recipients          []string       `json:"recipients,omitempty"`
	Summary             []SummaryEntry `json:"summary,omitempty"`
}

func NewProposalReminderTask(payload ReminderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProposalReminder, data), nil
}

func ParseProposalReminderPayload(task *asynq.Task) (ReminderPayload, error) {
	var payload ReminderPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ReminderPayload{}, err
	}
	return payload, nil
}

func NewLocationSyncTask() *asynq.Task {
	return asynq.NewTask(TaskLocationSync, nil)
}
