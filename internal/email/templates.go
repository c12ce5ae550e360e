package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const baseTemplate = `{{define "email"}}<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body style="font-family:Arial,sans-serif;color:#1f2937">
<h1 style="font-size:20px">{{.Heading}}</h1>
{{if .Subheading}}<p>{{.Subheading}}</p>{{end}}
{{template "content" .}}
{{if .CTAURL}}<p><a href="{{.CTAURL}}">{{.CTALabel}}</a></p>{{end}}
</body></html>{{end}}`

var contentTemplates = map[string]string{
	"reminder": `{{define "content"}}<p>The proposal <strong>{{.ProjectAbbreviation}}</strong> has an open task ({{.ReminderType}}).</p>
{{if .DueDate}}<p>Due on {{.DueDate}}.</p>{{end}}
{{if .Locations}}<p>Pending locations:</p><ul>{{range .Locations}}<li>{{.}}</li>{{end}}</ul>{{end}}{{end}}`,
	"summary": `{{define "content"}}<p>Changes to <strong>{{.ProjectAbbreviation}}</strong>:</p>
<ul>{{range .Entries}}<li>{{.At}} {{.Type}}{{if .Location}} ({{.Location}}){{end}}</li>{{end}}</ul>{{end}}`,
	"status_changed":   `{{define "content"}}<p>The proposal <strong>{{.ProjectAbbreviation}}</strong> moved from {{.From}} to {{.To}}.</p>{{end}}`,
	"vote_reverted":    `{{define "content"}}<p>The vote of {{.Location}} on <strong>{{.ProjectAbbreviation}}</strong> was reset by the FDPG. Please check the proposal again.</p>{{end}}`,
	"changelog_review": `{{define "content"}}<p>The codesystem sync produced {{.Count}} change(s) to the location registry.</p>{{end}}`,
}

var templates = mustParseTemplates()

func mustParseTemplates() map[string]*template.Template {
	out := make(map[string]*template.Template, len(contentTemplates))
	for name, content := range contentTemplates {
		tmpl := template.Must(template.New(name).Parse(baseTemplate))
		out[name] = template.Must(tmpl.Parse(content))
	}
	return out
}

type baseEmailData struct {
	Title      string
	Heading    string
	Subheading string
	CTALabel   string
	CTAURL     string
}

type reminderEmailData struct {
	baseEmailData
	ProjectAbbreviation string
	ReminderType        string
	DueDate             string
	Locations           []string
}

type summaryLineData struct {
	Type     string
	Location string
	At       string
}

type summaryEmailData struct {
	baseEmailData
	ProjectAbbreviation string
	Entries             []summaryLineData
}

type statusChangedEmailData struct {
	baseEmailData
	ProjectAbbreviation string
	From                string
	To                  string
}

type voteRevertedEmailData struct {
	baseEmailData
	ProjectAbbreviation string
	Location            string
}

type changelogReviewEmailData struct {
	baseEmailData
	Count int
}

func renderEmailTemplate(name string, data any) (string, error) {
	tmpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %s", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

func renderReminder(data ReminderEmail) (string, string, error) {
	subject := fmt.Sprintf(subjectReminderFmt, data.ProjectAbbreviation)
	content, err := renderEmailTemplate("reminder", reminderEmailData{
		baseEmailData: baseEmailData{
			Title:    subject,
			Heading:  reminderHeading,
			CTALabel: openProposalLabel,
			CTAURL:   data.ProposalURL,
		},
		ProjectAbbreviation: data.ProjectAbbreviation,
		ReminderType:        data.ReminderType,
		DueDate:             formatDate(data.DueDate),
		Locations:           data.Locations,
	})
	return subject, content, err
}

func renderSummary(data SummaryEmail) (string, string, error) {
	subject := fmt.Sprintf(subjectSummaryFmt, data.ProjectAbbreviation)
	lines := make([]summaryLineData, 0, len(data.Entries))
	for _, e := range data.Entries {
		at := e.At
		lines = append(lines, summaryLineData{Type: e.Type, Location: e.Location, At: formatDate(&at)})
	}
	content, err := renderEmailTemplate("summary", summaryEmailData{
		baseEmailData: baseEmailData{
			Title:    subject,
			Heading:  summaryHeading,
			CTALabel: openProposalLabel,
			CTAURL:   data.ProposalURL,
		},
		ProjectAbbreviation: data.ProjectAbbreviation,
		Entries:             lines,
	})
	return subject, content, err
}

func renderStatusChanged(data StatusChangedEmail) (string, string, error) {
	subject := fmt.Sprintf(subjectStatusChangedFmt, data.ProjectAbbreviation, data.To)
	content, err := renderEmailTemplate("status_changed", statusChangedEmailData{
		baseEmailData: baseEmailData{
			Title:    subject,
			Heading:  statusChangedHeading,
			CTALabel: openProposalLabel,
			CTAURL:   data.ProposalURL,
		},
		ProjectAbbreviation: data.ProjectAbbreviation,
		From:                data.From,
		To:                  data.To,
	})
	return subject, content, err
}

func renderVoteReverted(data LocationVoteRevertedEmail) (string, string, error) {
	subject := fmt.Sprintf(subjectVoteRevertedFmt, data.ProjectAbbreviation)
	content, err := renderEmailTemplate("vote_reverted", voteRevertedEmailData{
		baseEmailData: baseEmailData{
			Title:    subject,
			Heading:  voteRevertedHeading,
			CTALabel: openProposalLabel,
			CTAURL:   data.ProposalURL,
		},
		ProjectAbbreviation: data.ProjectAbbreviation,
		Location:            data.Location,
	})
	return subject, content, err
}

func renderChangelogReview(count int, reviewURL string) (string, string, error) {
	content, err := renderEmailTemplate("changelog_review", changelogReviewEmailData{
		baseEmailData: baseEmailData{
			Title:    subjectChangelogReview,
			Heading:  changelogReviewHeading,
			CTALabel: reviewChangelogsLabel,
			CTAURL:   reviewURL,
		},
		Count: count,
	})
	return subjectChangelogReview, content, err
}
