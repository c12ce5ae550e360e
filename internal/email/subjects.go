package email

const (
	subjectReminderFmt      = "[FDPG] Reminder for %s"
	subjectSummaryFmt       = "[FDPG] Daily update for %s"
	subjectStatusChangedFmt = "[FDPG] %s is now %s"
	subjectVoteRevertedFmt  = "[FDPG] Please review %s again"
	subjectChangelogReview  = "[FDPG] Location changes awaiting review"
	reminderHeading         = "Upcoming deadline"
	summaryHeading          = "What happened today"
	statusChangedHeading    = "Proposal status changed"
	voteRevertedHeading     = "Location vote reverted"
	changelogReviewHeading  = "Location registry changes"
	openProposalLabel       = "Open proposal"
	reviewChangelogsLabel   = "Review changes"
	dateLayout              = "02.01.2006"
)
