package filter

import (
	"fdpg_backend/internal/proposals/domain"
)

// Panel names a role-scoped proposal queue.
type Panel string

const (
	PanelDraft              Panel = "Draft"
	PanelResearcherPending  Panel = "ResearcherPending"
	PanelResearcherOngoing  Panel = "ResearcherOngoing"
	PanelResearcherFinished Panel = "ResearcherFinished"

	PanelPublishedDraft     Panel = "PublishedDraft"
	PanelPublishedPending   Panel = "PublishedPending"
	PanelPublishedCompleted Panel = "PublishedCompleted"

	PanelFdpgRequestedToCheck Panel = "FdpgRequestedToCheck"
	PanelFdpgRequestedInWork  Panel = "FdpgRequestedInWork"
	PanelFdpgOngoingToCheck   Panel = "FdpgOngoingToCheck"
	PanelFdpgOngoingInWork    Panel = "FdpgOngoingInWork"
	PanelFdpgFinished         Panel = "FdpgFinished"

	PanelDataSourcePending  Panel = "DataSourcePending"
	PanelDataSourceOngoing  Panel = "DataSourceOngoing"
	PanelDataSourceFinished Panel = "DataSourceFinished"

	PanelDizRequested Panel = "DizRequested"
	PanelDizPending   Panel = "DizPending"
	PanelDizOngoing   Panel = "DizOngoing"
	PanelDizFinished  Panel = "DizFinished"

	PanelUacRequested Panel = "UacRequested"
	PanelUacPending   Panel = "UacPending"
	PanelUacOngoing   Panel = "UacOngoing"
	PanelUacFinished  Panel = "UacFinished"

	PanelDmsPending  Panel = "DmsPending"
	PanelDmsOngoing  Panel = "DmsOngoing"
	PanelDmsFinished Panel = "DmsFinished"

	PanelArchived Panel = "Archived"
)

const (
	fieldStatus               = "status"
	fieldType                 = "type"
	fieldOwnerID              = "ownerId"
	fieldParticipants         = "participants"
	fieldParticipantEmail     = "researcher.email"
	fieldResponsibleEmail     = "projectResponsible.researcher.email"
	fieldOpenDizChecks        = "openDizChecks"
	fieldOpenConditionChecks  = "openDizConditionChecks"
	fieldDizApproved          = "dizApprovedLocations"
	fieldUacApproved          = "uacApprovedLocations"
	fieldRequestedButExcluded = "requestedButExcludedLocations"
	fieldSignedContracts      = "signedContracts"
)

var (
	ongoingStatuses = []domain.Status{
		domain.StatusLocationCheck,
		domain.StatusContracting,
		domain.StatusExpectDataDelivery,
		domain.StatusDataResearch,
		domain.StatusDataCorrupt,
	}
	deliveryStatuses = []domain.Status{
		domain.StatusExpectDataDelivery,
		domain.StatusDataResearch,
		domain.StatusDataCorrupt,
	}
	finishedStatuses = []domain.Status{
		domain.StatusFinishedProject,
		domain.StatusReadyToArchive,
		domain.StatusRejected,
	}
)

func status(s domain.Status) Predicate {
	return Eq(fieldStatus, string(s))
}

func statusIn(statuses ...domain.Status) Predicate {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}
	return In(fieldStatus, values...)
}

func ofType(t domain.ProposalType) Predicate {
	return Eq(fieldType, string(t))
}

// ownership matches proposals the user authored, participates in or is
// responsible for.
func ownership(user domain.RequestUser) Predicate {
	children := []Predicate{Eq(fieldOwnerID, user.UserID)}
	if user.Email != "" {
		children = append(children,
			ElemMatch(fieldParticipants, fieldParticipantEmail, user.Email),
			Eq(fieldResponsibleEmail, user.Email),
		)
	}
	return Or(children...)
}

// locationIn matches proposals whose location lies in any of the buckets.
func locationIn(location string, buckets ...string) Predicate {
	children := make([]Predicate, len(buckets))
	for i, b := range buckets {
		children[i] = Contains(b, location)
	}
	return Or(children...)
}

func involved(location string) Predicate {
	return locationIn(location,
		fieldOpenDizChecks,
		fieldOpenConditionChecks,
		fieldDizApproved,
		fieldUacApproved,
		fieldRequestedButExcluded,
		fieldSignedContracts,
	)
}

type builder func(domain.RequestUser) Predicate

func researcherPanels() map[Panel]builder {
	owned := func(rest ...Predicate) builder {
		return func(u domain.RequestUser) Predicate {
			return And(append([]Predicate{ownership(u)}, rest...)...)
		}
	}
	return map[Panel]builder{
		PanelDraft:              owned(status(domain.StatusDraft), ofType(domain.TypeApplicationForm)),
		PanelResearcherPending:  owned(statusIn(domain.StatusFdpgCheck, domain.StatusRework), ofType(domain.TypeApplicationForm)),
		PanelResearcherOngoing:  owned(statusIn(ongoingStatuses...)),
		PanelResearcherFinished: owned(statusIn(finishedStatuses...), ofType(domain.TypeApplicationForm)),
		PanelPublishedDraft:     owned(status(domain.StatusDraft), ofType(domain.TypeRegisteringForm)),
		PanelPublishedPending:   owned(statusIn(domain.StatusFdpgCheck, domain.StatusRework, domain.StatusReadyToPublish, domain.StatusRejected), ofType(domain.TypeRegisteringForm)),
		PanelPublishedCompleted: owned(status(domain.StatusPublished), ofType(domain.TypeRegisteringForm)),
		PanelArchived:           owned(status(domain.StatusArchived)),
	}
}

func fdpgPanels() map[Panel]builder {
	static := func(p Predicate) builder {
		return func(domain.RequestUser) Predicate { return p }
	}
	return map[Panel]builder{
		PanelFdpgRequestedToCheck: static(And(status(domain.StatusFdpgCheck), ofType(domain.TypeApplicationForm))),
		PanelFdpgRequestedInWork:  static(And(status(domain.StatusRework), ofType(domain.TypeApplicationForm))),
		PanelFdpgOngoingToCheck:   static(statusIn(domain.StatusLocationCheck, domain.StatusContracting)),
		PanelFdpgOngoingInWork:    static(statusIn(deliveryStatuses...)),
		PanelFdpgFinished:         static(And(statusIn(finishedStatuses...), ofType(domain.TypeApplicationForm))),
		PanelPublishedPending:     static(And(statusIn(domain.StatusFdpgCheck, domain.StatusRework, domain.StatusReadyToPublish), ofType(domain.TypeRegisteringForm))),
		PanelPublishedCompleted:   static(And(status(domain.StatusPublished), ofType(domain.TypeRegisteringForm))),
		PanelArchived:             static(status(domain.StatusArchived)),
	}
}

func dataSourcePanels() map[Panel]builder {
	return map[Panel]builder{
		PanelDataSourcePending: func(domain.RequestUser) Predicate { return status(domain.StatusExpectDataDelivery) },
		PanelDataSourceOngoing: func(domain.RequestUser) Predicate {
			return statusIn(domain.StatusDataResearch, domain.StatusDataCorrupt)
		},
		PanelDataSourceFinished: func(domain.RequestUser) Predicate {
			return statusIn(domain.StatusFinishedProject, domain.StatusReadyToArchive)
		},
		PanelArchived: func(domain.RequestUser) Predicate { return status(domain.StatusArchived) },
	}
}

func dmsPanels() map[Panel]builder {
	return map[Panel]builder{
		PanelDmsPending: func(domain.RequestUser) Predicate { return status(domain.StatusExpectDataDelivery) },
		PanelDmsOngoing: func(domain.RequestUser) Predicate {
			return statusIn(domain.StatusDataResearch, domain.StatusDataCorrupt)
		},
		PanelDmsFinished: func(domain.RequestUser) Predicate {
			return statusIn(domain.StatusFinishedProject, domain.StatusReadyToArchive)
		},
		PanelArchived: func(domain.RequestUser) Predicate { return status(domain.StatusArchived) },
	}
}

// locationPanels builds the DIZ and UAC queues. requested names the buckets in
// which the location awaits an action of this role during the location check.
func locationPanels(requestedPanel, pendingPanel, ongoingPanel, finishedPanel Panel, requested []string, pending ...string) map[Panel]builder {
	return map[Panel]builder{
		requestedPanel: func(u domain.RequestUser) Predicate {
			loc := u.MiiLocation
			return Or(
				And(status(domain.StatusLocationCheck), locationIn(loc, requested...)),
				And(status(domain.StatusContracting), Contains(fieldUacApproved, loc)),
			)
		},
		pendingPanel: func(u domain.RequestUser) Predicate {
			return And(status(domain.StatusLocationCheck), locationIn(u.MiiLocation, pending...))
		},
		ongoingPanel: func(u domain.RequestUser) Predicate {
			loc := u.MiiLocation
			return Or(
				And(status(domain.StatusContracting), Contains(fieldSignedContracts, loc)),
				And(statusIn(deliveryStatuses...), Contains(fieldSignedContracts, loc)),
			)
		},
		finishedPanel: func(u domain.RequestUser) Predicate {
			loc := u.MiiLocation
			return Or(
				And(statusIn(finishedStatuses...), involved(loc)),
				And(statusIn(ongoingStatuses...), Contains(fieldRequestedButExcluded, loc)),
			)
		},
		PanelArchived: func(u domain.RequestUser) Predicate {
			return And(status(domain.StatusArchived), Or(involved(u.MiiLocation), ownership(u)))
		},
	}
}

func dizPanels() map[Panel]builder {
	return locationPanels(PanelDizRequested, PanelDizPending, PanelDizOngoing, PanelDizFinished,
		[]string{fieldOpenDizChecks, fieldOpenConditionChecks},
		fieldDizApproved, fieldUacApproved)
}

func uacPanels() map[Panel]builder {
	return locationPanels(PanelUacRequested, PanelUacPending, PanelUacOngoing, PanelUacFinished,
		[]string{fieldDizApproved},
		fieldOpenConditionChecks, fieldUacApproved)
}
