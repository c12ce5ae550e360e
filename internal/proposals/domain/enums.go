// Package domain holds the proposal aggregate and the rules that move it
// through its lifecycle.
package domain

// Status is the global lifecycle state of a proposal.
type Status string

const (
	StatusDraft              Status = "DRAFT"
	StatusFdpgCheck          Status = "FDPG_CHECK"
	StatusRework             Status = "REWORK"
	StatusLocationCheck      Status = "LOCATION_CHECK"
	StatusContracting        Status = "CONTRACTING"
	StatusExpectDataDelivery Status = "EXPECT_DATA_DELIVERY"
	StatusDataResearch       Status = "DATA_RESEARCH"
	StatusDataCorrupt        Status = "DATA_CORRUPT"
	StatusFinishedProject    Status = "FINISHED_PROJECT"
	StatusReadyToArchive     Status = "READY_TO_ARCHIVE"
	StatusArchived           Status = "ARCHIVED"
	StatusRejected           Status = "REJECTED"
	StatusReadyToPublish     Status = "READY_TO_PUBLISH"
	StatusPublished          Status = "PUBLISHED"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := statusHistory[s]
	return ok
}

// ProposalType distinguishes data-use applications from registering forms.
type ProposalType string

const (
	TypeApplicationForm ProposalType = "APPLICATION_FORM"
	TypeRegisteringForm ProposalType = "REGISTERING_FORM"
)

// Role is a caller role known to the platform.
type Role string

const (
	RoleResearcher           Role = "Researcher"
	RoleRegisteringMember    Role = "RegisteringMember"
	RoleFdpgMember           Role = "FdpgMember"
	RoleDataSourceMember     Role = "DataSourceMember"
	RoleDizMember            Role = "DizMember"
	RoleUacMember            Role = "UacMember"
	RoleDataManagementOffice Role = "DataManagementOffice"
)

// knownRolePriority decides the single role of callers holding several.
var knownRolePriority = []Role{
	RoleFdpgMember,
	RoleDataManagementOffice,
	RoleDataSourceMember,
	RoleUacMember,
	RoleDizMember,
	RoleRegisteringMember,
	RoleResearcher,
}

// IsLocationRole reports whether the role acts on behalf of one location.
func (r Role) IsLocationRole() bool {
	return r == RoleDizMember || r == RoleUacMember
}

// HistoryEventType classifies entries of the proposal history.
type HistoryEventType string

const (
	HistoryProposalCreated        HistoryEventType = "PROPOSAL_CREATED"
	HistoryProposalFdpgCheck      HistoryEventType = "PROPOSAL_FDPG_CHECK"
	HistoryProposalRework         HistoryEventType = "PROPOSAL_REWORK"
	HistoryProposalRejected       HistoryEventType = "PROPOSAL_REJECTED"
	HistoryProposalLocationCheck  HistoryEventType = "PROPOSAL_LOCATION_CHECK"
	HistoryProposalContracting    HistoryEventType = "PROPOSAL_CONTRACTING"
	HistoryProposalDataDelivery   HistoryEventType = "PROPOSAL_DATA_DELIVERY"
	HistoryProposalDataResearch   HistoryEventType = "PROPOSAL_DATA_RESEARCH"
	HistoryProposalDataCorrupt    HistoryEventType = "PROPOSAL_DATA_CORRUPT"
	HistoryProposalFinished       HistoryEventType = "PROPOSAL_FINISHED"
	HistoryProposalReadyToArchive HistoryEventType = "PROPOSAL_READY_TO_ARCHIVE"
	HistoryProposalArchived       HistoryEventType = "PROPOSAL_ARCHIVED"
	HistoryProposalReadyToPublish HistoryEventType = "PROPOSAL_READY_TO_PUBLISH"
	HistoryProposalPublished      HistoryEventType = "PROPOSAL_PUBLISHED"

	HistoryDizApprove               HistoryEventType = "DIZ_APPROVE"
	HistoryDizDecline               HistoryEventType = "DIZ_DECLINE"
	HistoryUacApprove               HistoryEventType = "UAC_APPROVE"
	HistoryUacApproveWithCondition  HistoryEventType = "UAC_APPROVE_WITH_CONDITION"
	HistoryUacDecline               HistoryEventType = "UAC_DECLINE"
	HistoryFdpgConditionAccepted    HistoryEventType = "FDPG_CONDITION_ACCEPTED"
	HistoryFdpgConditionDeclined    HistoryEventType = "FDPG_CONDITION_DECLINED"
	HistoryDizConditionAccepted     HistoryEventType = "DIZ_CONDITION_ACCEPTED"
	HistoryDizConditionDeclined     HistoryEventType = "DIZ_CONDITION_DECLINED"
	HistoryContractSigned           HistoryEventType = "CONTRACT_SIGNED"
	HistoryContractDeclined         HistoryEventType = "CONTRACT_DECLINED"
	HistoryFdpgLocationVoteReverted HistoryEventType = "FDPG_LOCATION_VOTE_REVERTED"
)

// statusHistory maps each status to the history entry written on entering it.
var statusHistory = map[Status]HistoryEventType{
	StatusDraft:              HistoryProposalCreated,
	StatusFdpgCheck:          HistoryProposalFdpgCheck,
	StatusRework:             HistoryProposalRework,
	StatusRejected:           HistoryProposalRejected,
	StatusLocationCheck:      HistoryProposalLocationCheck,
	StatusContracting:        HistoryProposalContracting,
	StatusExpectDataDelivery: HistoryProposalDataDelivery,
	StatusDataResearch:       HistoryProposalDataResearch,
	StatusDataCorrupt:        HistoryProposalDataCorrupt,
	StatusFinishedProject:    HistoryProposalFinished,
	StatusReadyToArchive:     HistoryProposalReadyToArchive,
	StatusArchived:           HistoryProposalArchived,
	StatusReadyToPublish:     HistoryProposalReadyToPublish,
	StatusPublished:          HistoryProposalPublished,
}

// ScheduleType identifies a time-triggered task.
type ScheduleType string

const (
	ScheduleReminderFdpgCheck              ScheduleType = "REMINDER_FDPG_CHECK"
	ScheduleReminderLocationCheck1         ScheduleType = "REMINDER_LOCATION_CHECK_1"
	ScheduleReminderLocationCheck2         ScheduleType = "REMINDER_LOCATION_CHECK_2"
	ScheduleReminderLocationCheck3         ScheduleType = "REMINDER_LOCATION_CHECK_3"
	ScheduleReminderLocationContracting    ScheduleType = "REMINDER_LOCATION_CONTRACTING"
	ScheduleReminderExpectDataDelivery     ScheduleType = "REMINDER_EXPECT_DATA_DELIVERY"
	ScheduleReminderFinishedProject        ScheduleType = "REMINDER_FINISHED_PROJECT"
	ScheduleParticipatingResearcherSummary ScheduleType = "PARTICIPATING_RESEARCHER_SUMMARY"
)

// DueDateField names a proposal deadline.
type DueDateField string

const (
	DueDateFdpgCheck           DueDateField = "DUE_DAYS_FDPG_CHECK"
	DueDateLocationCheck       DueDateField = "DUE_DAYS_LOCATION_CHECK"
	DueDateLocationContracting DueDateField = "DUE_DAYS_LOCATION_CONTRACTING"
	DueDateExpectDataDelivery  DueDateField = "DUE_DAYS_EXPECT_DATA_DELIVERY"
	DueDateFinishedProject     DueDateField = "DUE_DAYS_FINISHED_PROJECT"
)

// LocationState is the per-location analogue of Status.
type LocationState string

const (
	LocationStateDizCheck          LocationState = "DIZ_CHECK"
	LocationStateExcluded          LocationState = "REQUESTED_BUT_EXCLUDED"
	LocationStateDizApproved       LocationState = "DIZ_APPROVED"
	LocationStateUacConditionCheck LocationState = "UAC_CONDITION_CHECK"
	LocationStateUacApproved       LocationState = "UAC_APPROVED"
	LocationStateContractSigned    LocationState = "CONTRACT_SIGNED"
)
