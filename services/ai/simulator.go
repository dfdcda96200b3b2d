package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"

	"github.com/flowyn/flowyn-core/dto"
	"github.com/flowyn/flowyn-core/interfaces"
	"github.com/flowyn/flowyn-core/internal/config"
	"github.com/flowyn/flowyn-core/internal/logger"
	"github.com/flowyn/flowyn-core/internal/models"
	"github.com/flowyn/flowyn-core/internal/tracing"
	"github.com/flowyn/flowyn-core/internal/utils"
)

// simulatedAIService is the offline stand-in for the generative backend. It
// produces plausible mailbox content from fixed templates so the rest of the
// system behaves exactly as it would against the real service.
type simulatedAIService struct {
	cfg *config.AIConfig
	log logger.Logger
}

func NewSimulatedAIService(cfg *config.AIConfig, log logger.Logger) interfaces.AIService {
	return &simulatedAIService{cfg: cfg, log: log}
}

type mailTemplate struct {
	senderName string
	senderUser string
	subject    string
	snippet    string
	body       string
	label      string
	important  bool
}

var mailTemplates = []mailTemplate{
	{
		senderName: "Priya Sharma",
		senderUser: "priya.sharma",
		subject:    "Q3 roadmap review",
		snippet:    "Sharing the updated roadmap deck ahead of Thursday's review.",
		body:       "<p>Hi,</p><p>Sharing the updated roadmap deck ahead of Thursday's review. The infra track moved out a sprint, everything else holds.</p><p>Priya</p>",
		label:      "Work",
		important:  true,
	},
	{
		senderName: "The Daily Dispatch",
		senderUser: "newsletter",
		subject:    "Your Tuesday briefing",
		snippet:    "Five stories worth your time this morning.",
		body:       "<p>Five stories worth your time this morning, picked by our editors.</p>",
		label:      "Newsletter",
	},
	{
		senderName: "Security Team",
		senderUser: "no-reply.security",
		subject:    "New sign-in from Chrome on Linux",
		snippet:    "We noticed a new sign-in to your account. If this was you, no action is needed.",
		body:       "<p>We noticed a new sign-in to your account from Chrome on Linux.</p><p>If this was you, no action is needed.</p>",
		label:      "Security",
		important:  true,
	},
	{
		senderName: "Skyline Travel",
		senderUser: "bookings",
		subject:    "Your itinerary confirmation",
		snippet:    "Your booking is confirmed. Check-in opens 24 hours before departure.",
		body:       "<p>Your booking is confirmed.</p><p>Check-in opens 24 hours before departure.</p>",
		label:      "Travel",
	},
	{
		senderName: "Sam Okafor",
		senderUser: "sam.okafor",
		subject:    "Dinner on Saturday?",
		snippet:    "We found a new place near the market, want to try it this weekend?",
		body:       "<p>Hey!</p><p>We found a new place near the market, want to try it this weekend?</p><p>Sam</p>",
		label:      "Personal",
	},
	{
		senderName: "Ledger",
		senderUser: "receipts",
		subject:    "Your March invoice is ready",
		snippet:    "Invoice #4821 for your subscription is attached and due in 14 days.",
		body:       "<p>Invoice #4821 for your subscription is ready and due in 14 days.</p>",
		label:      "Finance",
	},
	{
		senderName: "Maya Lindqvist",
		senderUser: "maya.lindqvist",
		subject:    "Re: design handoff notes",
		snippet:    "Left comments on the spacing tokens, the rest looks ready to ship.",
		body:       "<p>Left comments on the spacing tokens, the rest looks ready to ship.</p><p>Maya</p>",
		label:      "Work",
	},
	{
		senderName: "Gym North",
		senderUser: "hello",
		subject:    "Your membership renews next week",
		snippet:    "Your annual membership renews on the 12th. Manage your plan any time.",
		body:       "<p>Your annual membership renews on the 12th. Manage your plan any time from your profile.</p>",
		label:      "Promo",
	},
	{
		senderName: "Devon Carter",
		senderUser: "devon.carter",
		subject:    "Intro: Devon from Parallel",
		snippet:    "Great meeting you last week, following up on the integration idea.",
		body:       "<p>Great meeting you last week, following up on the integration idea we discussed.</p><p>Devon</p>",
		label:      "Work",
	},
	{
		senderName: "Cloud Status",
		senderUser: "status",
		subject:    "Incident resolved: elevated API latency",
		snippet:    "The incident affecting API latency has been resolved as of 09:42 UTC.",
		body:       "<p>The incident affecting API latency has been resolved as of 09:42 UTC. Full post-mortem to follow.</p>",
		label:      "Updates",
	},
}

func (s *simulatedAIService) GenerateMailbox(ctx context.Context, request dto.GenerateMailboxRequest) ([]*models.Email, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "simulatedAIService.GenerateMailbox")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagAccount(span, request.AccountID)

	count := request.Count
	if count <= 0 {
		count = s.cfg.MailboxSeedCount
	}
	if count <= 0 {
		count = len(mailTemplates)
	}

	domain := utils.MailDomain(request.EmailAddress)
	now := time.Now().UTC()
	// spread the batch across the last 72 hours, newest first
	interval := 72 * time.Hour / time.Duration(count+1)

	emails := make([]*models.Email, 0, count)
	for i := 0; i < count; i++ {
		tpl := mailTemplates[i%len(mailTemplates)]
		senderDomain := domain
		if strings.Contains(tpl.senderUser, ".") && tpl.label != "Work" {
			senderDomain = "example.com"
		}
		emails = append(emails, &models.Email{
			ID:        utils.GenerateMessageID(),
			ThreadID:  utils.GenerateThreadID(),
			AccountID: request.AccountID,
			From: models.EmailParty{
				Name:         tpl.senderName,
				EmailAddress: tpl.senderUser + "@" + senderDomain,
				Avatar:       fmt.Sprintf("https://picsum.photos/seed/%s/40/40", tpl.senderUser),
			},
			To: []models.EmailParty{
				{EmailAddress: request.EmailAddress},
			},
			Subject:     tpl.subject,
			Snippet:     tpl.snippet,
			Body:        tpl.body,
			Date:        now.Add(-time.Duration(i+1) * interval),
			IsImportant: tpl.important,
			Labels:      []string{tpl.label},
			Attachments: []models.AttachmentRef{},
			FolderID:    models.FolderIDInbox,
		})
	}
	span.SetTag("result.count", len(emails))
	return emails, nil
}

func (s *simulatedAIService) SummarizeThread(ctx context.Context, request dto.SummarizeThreadRequest) string {
	span, _ := opentracing.StartSpanFromContext(ctx, "simulatedAIService.SummarizeThread")
	defer span.Finish()

	if len(request.Emails) == 0 {
		return "Summary unavailable."
	}
	lines := make([]string, 0, len(request.Emails))
	for _, e := range request.Emails {
		lines = append(lines, fmt.Sprintf("- %s: %s", e.From.Name, e.Snippet))
	}
	return strings.Join(lines, "\n")
}

func (s *simulatedAIService) GenerateDraft(ctx context.Context, request dto.GenerateDraftRequest) string {
	span, _ := opentracing.StartSpanFromContext(ctx, "simulatedAIService.GenerateDraft")
	defer span.Finish()

	if request.Prompt == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString("Hi,\n\n")
	if request.ReplyTo != nil {
		b.WriteString(fmt.Sprintf("Thanks for your note about \"%s\". ", request.ReplyTo.Subject))
	}
	b.WriteString(fmt.Sprintf("Regarding %s, happy to move this forward. Let me know what works on your side.\n\nBest regards", strings.TrimSpace(request.Prompt)))
	return b.String()
}

func (s *simulatedAIService) TriageEmail(ctx context.Context, email *models.Email) *dto.TriageResult {
	span, _ := opentracing.StartSpanFromContext(ctx, "simulatedAIService.TriageEmail")
	defer span.Finish()

	text := strings.ToLower(email.Subject + " " + email.Snippet)
	switch {
	case strings.Contains(text, "security") || strings.Contains(text, "sign-in"):
		return &dto.TriageResult{Importance: 9, Category: "Work"}
	case strings.Contains(text, "invoice") || strings.Contains(text, "renew"):
		return &dto.TriageResult{Importance: 6, Category: "Promo"}
	case strings.Contains(text, "dinner") || strings.Contains(text, "weekend"):
		return &dto.TriageResult{Importance: 3, Category: "Personal"}
	case email.IsImportant:
		return &dto.TriageResult{Importance: 8, Category: "Work"}
	}
	return dto.DefaultTriageResult()
}

func (s *simulatedAIService) ClassifyEmails(ctx context.Context, emails []*models.Email) map[string]string {
	span, ctx := opentracing.StartSpanFromContext(ctx, "simulatedAIService.ClassifyEmails")
	defer span.Finish()
	span.SetTag("emails.count", len(emails))

	folders := make(map[string]string, len(emails))
	for _, e := range emails {
		// promotional mail is filed away, everything else stays in the inbox
		if s.TriageEmail(ctx, e).Category == "Promo" {
			folders[e.ID] = models.FolderIDArchive
		} else {
			folders[e.ID] = models.FolderIDInbox
		}
	}
	return folders
}

func (s *simulatedAIService) ValidateServerSettings(ctx context.Context, settings dto.ServerSettings) *dto.ServerValidationReport {
	span, _ := opentracing.StartSpanFromContext(ctx, "simulatedAIService.ValidateServerSettings")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	checks := []dto.ServerCheckResult{
		{Name: dto.CheckIncomingServer, Passed: settings.IncomingHost != "" && settings.IncomingPort > 0},
		{Name: dto.CheckCredentials, Passed: settings.EmailAddress != "" && settings.Password != ""},
		{Name: dto.CheckOutgoingServer, Passed: settings.OutgoingHost != "" && settings.OutgoingPort > 0},
	}

	report := &dto.ServerValidationReport{Success: true, Checks: checks}
	for i := range report.Checks {
		if report.Checks[i].Passed {
			continue
		}
		report.Success = false
		switch report.Checks[i].Name {
		case dto.CheckIncomingServer:
			report.Checks[i].Message = "incoming server host and port are required"
		case dto.CheckCredentials:
			report.Checks[i].Message = "email address and password are required"
		case dto.CheckOutgoingServer:
			report.Checks[i].Message = "outgoing server host and port are required"
		}
		if report.Error == "" {
			report.Error = report.Checks[i].Message
		}
	}
	return report
}
