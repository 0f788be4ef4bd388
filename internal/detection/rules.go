package detection

import (
	"regexp"
	"strings"
)

// Rule is a single local attack signature.
type Rule struct {
	Name     string
	Pattern  *regexp.Regexp
	Severity string
}

// Ruleset holds the local signature rules plus the nighttime-admin
// precedence rule. Rules are checked in order; the first match wins.
type Ruleset struct {
	rules []*Rule
}

func NewRuleset() *Ruleset {
	rs := &Ruleset{}
	rs.initLocalRules()
	return rs
}

func (rs *Ruleset) initLocalRules() {
	rs.rules = []*Rule{
		{
			Name:     "sql_injection",
			Pattern:  regexp.MustCompile(`(?i)\b(union\s+(all\s+)?select|select\s+.*\bfrom\b|drop\s+table|delete\s+from|insert\s+into|update\s+\w+\s+set)\b`),
			Severity: "critical",
		},
		{
			Name:     "sql_injection_operator",
			Pattern:  regexp.MustCompile(`(?i)('\s*or\s*')|(\bor\s+1\s*=\s*1\b)|('--)`),
			Severity: "critical",
		},
		{
			Name:     "xss_attempt",
			Pattern:  regexp.MustCompile(`(?i)<script|javascript:|onerror=|onload=|onclick=|<img\s`),
			Severity: "high",
		},
		{
			Name:     "auth_failure",
			Pattern:  regexp.MustCompile(`(?i)failed login|login failed|invalid password|authentication rejected`),
			Severity: "high",
		},
		{
			Name:     "privilege_escalation",
			Pattern:  regexp.MustCompile(`(?i)\bunauthorized\b|access denied|permission denied|role change`),
			Severity: "high",
		},
		{
			Name:     "attack_tooling",
			Pattern:  regexp.MustCompile(`(?i)\bsqlmap\b|\bnikto\b|\bburp\b`),
			Severity: "high",
		},
		{
			Name:     "path_traversal",
			Pattern:  regexp.MustCompile(`\.\./|\.\.\\`),
			Severity: "critical",
		},
	}
}

// Match checks the tagged log against the precedence rules and returns the
// first matching rule, or nil. The nighttime-admin rule is checked first:
// any log written between 00:00 and 06:00 that mentions "admin" anywhere
// (case-insensitive, so "Admin" and "administrator" both count) is
// anomalous regardless of content.
func (rs *Ruleset) Match(periodTag, text string) *Rule {
	if periodTag == Nighttime && strings.Contains(strings.ToLower(text), "admin") {
		return &Rule{Name: "nighttime_admin", Severity: "critical"}
	}

	for _, rule := range rs.rules {
		if rule.Pattern.MatchString(text) {
			return rule
		}
	}

	return nil
}
