package domain

// RecalculateCounters re-derives the cached location counters from the flow
// arrays and the latest UAC approval per location.
func (p *Proposal) RecalculateCounters() {
	requested := map[string]bool{}
	for _, step := range locationFlow {
		for _, location := range *p.bucketSlice(step.bucket) {
			requested[location] = true
		}
	}

	signed := toSet(p.SignedContracts)
	approved := toSet(p.UacApprovedLocations)
	for location := range signed {
		approved[location] = true
	}

	latest := make(map[string]int, len(p.UacApprovals))
	for _, approval := range p.UacApprovals {
		latest[approval.Location] = approval.DataAmount
	}

	promised, contracted := 0, 0
	for location := range approved {
		promised += latest[location]
		if signed[location] {
			contracted += latest[location]
		}
	}

	p.NumberOfRequestedLocations = len(requested)
	p.NumberOfApprovedLocations = len(approved)
	p.NumberOfSignedLocations = len(signed)
	p.TotalPromisedDataAmount = promised
	p.TotalContractedDataAmount = contracted
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
