package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wikirelay/internal/config"
	"wikirelay/internal/event"
	"wikirelay/internal/logger"
	"wikirelay/internal/wiki"
	"wikirelay/pkg/metrics"
	"wikirelay/pkg/rules"
)

// Deliverer posts a finished payload to the chat webhook.
type Deliverer interface {
	Send(ctx context.Context, payload WebhookPayload) error
}

// Pipeline outcomes recorded per event.
const (
	outcomeDelivered      = "delivered"
	outcomeFiltered       = "filtered"
	outcomeIgnored        = "ignored"
	outcomeSkipped        = "skipped"
	outcomeFailed         = "failed"
	outcomeDeliveryFailed = "delivery_failed"
)

type compiledRule struct {
	name       string
	expression string
}

// Service runs the notification pipeline: filter, classify, format,
// deliver. Invocations are request-scoped and hold no cross-event
// state, so they may run concurrently.
type Service struct {
	policy    Policy
	formatter *Formatter
	deliverer Deliverer
	evaluator *rules.Evaluator
	rules     []compiledRule
	fallback  string
	logger    logger.Logger
}

func NewService(cfg config.RelayConfig, formatter *Formatter, deliverer Deliverer, log logger.Logger) (*Service, error) {
	evaluator, err := rules.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("failed to create rule evaluator: %w", err)
	}

	compiled := make([]compiledRule, 0, len(cfg.Rules))
	for _, rule := range cfg.Rules {
		if err := evaluator.ValidateFilterExpression(rule.Expression); err != nil {
			return nil, fmt.Errorf("invalid filter rule %q: %w", rule.Name, err)
		}
		compiled = append(compiled, compiledRule{name: rule.Name, expression: rule.Expression})
	}
	metrics.SetRelayActiveRules(len(compiled))

	return &Service{
		policy:    NewPolicy(cfg),
		formatter: formatter,
		deliverer: deliverer,
		evaluator: evaluator,
		rules:     compiled,
		fallback:  cfg.Fallback.OnError,
		logger:    log,
	}, nil
}

// Notify runs one event through the pipeline. Delivery failures are
// swallowed (best effort, at most once); formatting faults are returned
// so the inbound adapter can decide what to do with the event.
func (s *Service) Notify(ctx context.Context, ev *event.ChangeEvent) error {
	start := time.Now()

	outcome, err := s.process(ctx, ev)

	metrics.RelayEventsTotal.WithLabelValues(outcome).Inc()
	metrics.ObserveRelayDuration(time.Since(start), outcome)
	return err
}

func (s *Service) process(ctx context.Context, ev *event.ChangeEvent) (string, error) {
	if !s.policy.Allows(ev) {
		s.logger.DebugwCtx(ctx, "Event excluded by policy",
			"namespace", ev.Namespace,
			"bot", ev.Bot,
		)
		return outcomeFiltered, nil
	}

	passed, err := s.evaluateRules(ctx, ev)
	if err != nil {
		return outcomeFailed, err
	}
	if !passed {
		return outcomeFiltered, nil
	}

	var embed *Embed
	switch ev.Kind() {
	case event.KindEdit:
		embed, err = s.formatter.EditEmbed(ctx, ev)
	case event.KindNewPage:
		embed, err = s.formatter.NewPageEmbed(ctx, ev)
	case event.KindLogAction:
		embed, err = s.formatter.LogEmbed(ctx, ev)
	default:
		return outcomeIgnored, nil
	}

	if errors.Is(err, wiki.ErrLogEntryNotFound) {
		metrics.LogLookupsTotal.WithLabelValues("not_found").Inc()
		s.logger.DebugwCtx(ctx, "Log entry gone, skipping event",
			"log_id", ev.LogID,
		)
		return outcomeSkipped, nil
	}
	if err != nil {
		return outcomeFailed, fmt.Errorf("failed to format event %d: %w", ev.ID, err)
	}

	payload := WebhookPayload{Embeds: []Embed{*embed}}
	if err := s.deliverer.Send(ctx, payload); err != nil {
		// Fire and forget: a failed send drops the notification, it
		// never fails the event.
		s.logger.WarnwCtx(ctx, "Webhook delivery failed, dropping notification",
			"error", err,
			"title", ev.Title,
		)
		return outcomeDeliveryFailed, nil
	}

	return outcomeDelivered, nil
}

func (s *Service) evaluateRules(ctx context.Context, ev *event.ChangeEvent) (bool, error) {
	if len(s.rules) == 0 {
		return true, nil
	}

	eventVars, err := eventToMap(ev)
	if err != nil {
		return false, err
	}

	for _, rule := range s.rules {
		result, err := s.evaluator.EvaluateFilter(ctx, rule.expression, eventVars)
		if err != nil {
			metrics.IncRuleEvaluation(rule.name, "error")
			if s.fallback == "deny" {
				metrics.FallbackUsageTotal.WithLabelValues("deny_on_error", "evaluation_error").Inc()
				s.logger.WarnwCtx(ctx, "Rule evaluation error, denying event (fallback: deny)",
					"rule_name", rule.name,
					"error", err,
				)
				return false, nil
			}
			metrics.FallbackUsageTotal.WithLabelValues("allow_on_error", "evaluation_error").Inc()
			s.logger.WarnwCtx(ctx, "Rule evaluation error, skipping rule (fallback: allow)",
				"rule_name", rule.name,
				"error", err,
			)
			continue
		}

		if !result {
			metrics.IncRuleEvaluation(rule.name, "filtered")
			s.logger.DebugwCtx(ctx, "Rule filtered event",
				"rule_name", rule.name,
			)
			return false, nil
		}
		metrics.IncRuleEvaluation(rule.name, "passed")
	}

	return true, nil
}

func eventToMap(ev *event.ChangeEvent) (map[string]interface{}, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event for rule evaluation: %w", err)
	}
	var vars map[string]interface{}
	if err := json.Unmarshal(raw, &vars); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event for rule evaluation: %w", err)
	}
	return vars, nil
}
