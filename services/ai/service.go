package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/flowyn/flowyn-core/dto"
	"github.com/flowyn/flowyn-core/interfaces"
	"github.com/flowyn/flowyn-core/internal/config"
	"github.com/flowyn/flowyn-core/internal/logger"
	"github.com/flowyn/flowyn-core/internal/models"
	"github.com/flowyn/flowyn-core/internal/tracing"
)

type aiService struct {
	cfg *config.AIConfig
	log logger.Logger
}

// NewAIService returns the generative backend client. Without an API key the
// deterministic in-process simulator is used instead, so a local deployment
// still gets populated mailboxes.
func NewAIService(cfg *config.AIConfig, log logger.Logger) interfaces.AIService {
	if cfg.ApiKey == "" {
		return NewSimulatedAIService(cfg, log)
	}
	return &aiService{cfg: cfg, log: log}
}

func (s *aiService) GenerateMailbox(ctx context.Context, request dto.GenerateMailboxRequest) ([]*models.Email, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "aiService.GenerateMailbox")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.LogObjectAsJson(span, "request", request)

	if request.Count <= 0 {
		request.Count = s.cfg.MailboxSeedCount
	}

	var emails []*models.Email
	if err := s.post(ctx, span, "/internal/v1/generateMailbox", request, &emails); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	for _, e := range emails {
		e.AccountID = request.AccountID
		if e.Attachments == nil {
			e.Attachments = []models.AttachmentRef{}
		}
	}
	span.SetTag("result.count", len(emails))
	return emails, nil
}

func (s *aiService) SummarizeThread(ctx context.Context, request dto.SummarizeThreadRequest) string {
	span, ctx := opentracing.StartSpanFromContext(ctx, "aiService.SummarizeThread")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	var response struct {
		Summary string `json:"summary"`
	}
	if err := s.post(ctx, span, "/internal/v1/summarizeThread", request, &response); err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("Thread summary failed for %s: %v", request.ThreadID, err)
		return "Summary unavailable."
	}
	if response.Summary == "" {
		return "Summary unavailable."
	}
	return response.Summary
}

func (s *aiService) GenerateDraft(ctx context.Context, request dto.GenerateDraftRequest) string {
	span, ctx := opentracing.StartSpanFromContext(ctx, "aiService.GenerateDraft")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	var response struct {
		Draft string `json:"draft"`
	}
	if err := s.post(ctx, span, "/internal/v1/generateDraft", request, &response); err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("Draft generation failed: %v", err)
		return ""
	}
	return response.Draft
}

func (s *aiService) TriageEmail(ctx context.Context, email *models.Email) *dto.TriageResult {
	span, ctx := opentracing.StartSpanFromContext(ctx, "aiService.TriageEmail")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagEntity(span, email.ID)

	payload := map[string]string{
		"subject": email.Subject,
		"snippet": email.Snippet,
	}
	var result dto.TriageResult
	if err := s.post(ctx, span, "/internal/v1/triageEmail", payload, &result); err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("Triage failed for %s: %v", email.ID, err)
		return dto.DefaultTriageResult()
	}
	if result.Category == "" {
		return dto.DefaultTriageResult()
	}
	return &result
}

func (s *aiService) ClassifyEmails(ctx context.Context, emails []*models.Email) map[string]string {
	span, ctx := opentracing.StartSpanFromContext(ctx, "aiService.ClassifyEmails")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("emails.count", len(emails))

	type item struct {
		ID      string `json:"id"`
		Subject string `json:"subject"`
		Snippet string `json:"snippet"`
	}
	payload := make([]item, 0, len(emails))
	for _, e := range emails {
		payload = append(payload, item{ID: e.ID, Subject: e.Subject, Snippet: e.Snippet})
	}

	var folders map[string]string
	if err := s.post(ctx, span, "/internal/v1/classifyEmails", payload, &folders); err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("Classification failed: %v", err)
		return map[string]string{}
	}
	if folders == nil {
		return map[string]string{}
	}
	return folders
}

func (s *aiService) ValidateServerSettings(ctx context.Context, settings dto.ServerSettings) *dto.ServerValidationReport {
	span, ctx := opentracing.StartSpanFromContext(ctx, "aiService.ValidateServerSettings")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	var report dto.ServerValidationReport
	if err := s.post(ctx, span, "/internal/v1/validateServerSettings", settings, &report); err != nil {
		tracing.TraceErr(span, err)
		s.log.Errorf("Server validation call failed for %s: %v", settings.EmailAddress, err)
		return dto.FailedValidationReport("validation service unreachable")
	}
	return &report
}

func (s *aiService) post(ctx context.Context, span opentracing.Span, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "failed to marshal payload")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.cfg.Url+path, bytes.NewBuffer(body))
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Flowyn-API-KEY", s.cfg.ApiKey)
	req.Header.Set("X-Flowyn-Model", s.cfg.Model)

	client := &http.Client{
		Timeout: 60 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "unable to read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("request failed with status code %d: %s", resp.StatusCode, string(responseBody))
	}

	if err := json.Unmarshal(responseBody, out); err != nil {
		return errors.Wrap(err, "failed to unmarshal response")
	}
	tracing.LogObjectAsJson(span, "response", out)
	return nil
}
