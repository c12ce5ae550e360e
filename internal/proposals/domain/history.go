package domain

import "time"

// summaryEventTypes are the history entries participating researchers are
// told about in their digest.
var summaryEventTypes = map[HistoryEventType]bool{
	HistoryProposalFdpgCheck:      true,
	HistoryProposalRework:         true,
	HistoryProposalRejected:       true,
	HistoryProposalLocationCheck:  true,
	HistoryProposalContracting:    true,
	HistoryProposalDataDelivery:   true,
	HistoryProposalDataResearch:   true,
	HistoryProposalDataCorrupt:    true,
	HistoryProposalFinished:       true,
	HistoryProposalReadyToArchive: true,
	HistoryProposalArchived:       true,
}

// IsSummaryEvent reports whether t is part of the participant digest.
func IsSummaryEvent(t HistoryEventType) bool {
	return summaryEventTypes[t]
}

// HistorySince returns the digest-relevant history entries created after since.
func HistorySince(p *Proposal, since time.Time) []HistoryEvent {
	var out []HistoryEvent
	for _, ev := range p.History {
		if summaryEventTypes[ev.Type] && ev.CreatedAt.After(since) {
			out = append(out, ev)
		}
	}
	return out
}
