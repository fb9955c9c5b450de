// Package validation decides whether a workout draft is ready to persist.
//
// Validation runs in stages: scalar rules, the assignment rule, the
// variant-specific structural rules and, when a medical lookup is supplied,
// an asynchronous medical-compliance check. Stages one to three produce
// blocking errors; the medical stage only ever produces warnings.
package validation

import (
	"alcyxob/team-workouts/internal/domain"
	"context"
	"time"
)

// Defaults used when a Config leaves a value unset.
const (
	DefaultMinIntervalSeconds = 10
	DefaultHeartRateThreshold = 160
)

// Bounds limits the computed total duration of a workout. A zero side is open.
type Bounds struct {
	Min time.Duration
	Max time.Duration
}

func (b Bounds) set() bool { return b.Min > 0 || b.Max > 0 }

// RuleSet is the per-variant rule table.
type RuleSet struct {
	RequirePlayers bool
	DurationBounds Bounds
}

type Config struct {
	MinIntervalSeconds int
	HeartRateThreshold int
	Rules              map[domain.DocumentType]RuleSet
}

// DefaultConfig requires an assignment for every variant and leaves duration bounds open.
func DefaultConfig() Config {
	rules := make(map[domain.DocumentType]RuleSet, len(domain.DocumentTypes))
	for _, t := range domain.DocumentTypes {
		rules[t] = RuleSet{RequirePlayers: true}
	}
	return Config{
		MinIntervalSeconds: DefaultMinIntervalSeconds,
		HeartRateThreshold: DefaultHeartRateThreshold,
		Rules:              rules,
	}
}

// MedicalLookup fetches medical reports for the given players.
type MedicalLookup interface {
	Lookup(ctx context.Context, playerIDs []string) ([]domain.MedicalRecord, error)
}

// MedicalLookupFunc adapts a function to MedicalLookup.
type MedicalLookupFunc func(ctx context.Context, playerIDs []string) ([]domain.MedicalRecord, error)

func (f MedicalLookupFunc) Lookup(ctx context.Context, playerIDs []string) ([]domain.MedicalRecord, error) {
	return f(ctx, playerIDs)
}

// Input carries the reference data a validation run may consult.
// Players and Teams are only used to name players and expand team membership.
type Input struct {
	Players []domain.Player
	Teams   []domain.Team
	Medical MedicalLookup // nil disables the medical stage
}

// Engine runs the validation pipeline. It holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	cfg Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.MinIntervalSeconds <= 0 {
		cfg.MinIntervalSeconds = DefaultMinIntervalSeconds
	}
	if cfg.HeartRateThreshold <= 0 {
		cfg.HeartRateThreshold = DefaultHeartRateThreshold
	}
	if cfg.Rules == nil {
		cfg.Rules = DefaultConfig().Rules
	}
	return &Engine{cfg: cfg}
}

// Validate runs every stage and concatenates their issues.
func (e *Engine) Validate(ctx context.Context, d *domain.WorkoutDraft, in Input) domain.ValidationResult {
	var c collector
	e.structural(&c, d)
	if in.Medical != nil && d != nil {
		e.checkMedical(ctx, &c, d, in)
	}
	return c.result()
}

// ValidateStructure runs the synchronous stages only. Save gates on this.
func (e *Engine) ValidateStructure(d *domain.WorkoutDraft) domain.ValidationResult {
	var c collector
	e.structural(&c, d)
	return c.result()
}

func (e *Engine) structural(c *collector, d *domain.WorkoutDraft) {
	if d == nil {
		c.err("", domain.CodeRequiredField, "workout is missing")
		return
	}
	checkScalars(c, d)
	if !d.DocumentType.Valid() {
		return
	}
	rules := e.cfg.Rules[d.DocumentType]
	if rules.RequirePlayers {
		checkAssignments(c, d)
	}
	e.checkContent(c, d, rules)
}

type collector struct {
	errors   []domain.ValidationIssue
	warnings []domain.ValidationIssue
}

func (c *collector) err(field string, code domain.IssueCode, msg string) {
	c.errors = append(c.errors, domain.ValidationIssue{Field: field, Message: msg, Code: code})
}

func (c *collector) warn(field string, code domain.IssueCode, msg string) {
	c.warnings = append(c.warnings, domain.ValidationIssue{Field: field, Message: msg, Code: code})
}

func (c *collector) result() domain.ValidationResult {
	r := domain.ValidationResult{
		IsValid:  len(c.errors) == 0,
		Errors:   c.errors,
		Warnings: c.warnings,
	}
	if r.Errors == nil {
		r.Errors = []domain.ValidationIssue{}
	}
	if r.Warnings == nil {
		r.Warnings = []domain.ValidationIssue{}
	}
	return r
}
