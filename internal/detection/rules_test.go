package detection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRulesetMatch(t *testing.T) {
	rs := NewRuleset()

	tests := []struct {
		name     string
		period   string
		text     string
		wantRule string
	}{
		{"sql keywords", Daytime, "query executed: SELECT * FROM users WHERE id=1", "sql_injection"},
		{"drop table", Daytime, "attempted DROP TABLE accounts", "sql_injection"},
		{"or 1=1", Daytime, "login attempt with ' OR 1=1 --", "sql_injection_operator"},
		{"script tag", Daytime, "comment posted: <script>alert(1)</script>", "xss_attempt"},
		{"onerror handler", Daytime, "profile updated with onerror=steal()", "xss_attempt"},
		{"failed login", Daytime, "failed login for user bob", "auth_failure"},
		{"invalid password", Daytime, "invalid password entered 5 times", "auth_failure"},
		{"access denied", Daytime, "access denied for /etc/shadow", "privilege_escalation"},
		{"role change", Daytime, "unexpected role change to superuser", "privilege_escalation"},
		{"sqlmap scan", Daytime, "user agent sqlmap/1.7 detected", "attack_tooling"},
		{"path traversal", Daytime, "requested ../../etc/passwd", "path_traversal"},
		{"nighttime admin", Nighttime, "Admin exported all user data", "nighttime_admin"},
		{"nighttime administrator", Nighttime, "administrator session opened", "nighttime_admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := rs.Match(tt.period, tt.text)
			require.NotNil(t, rule)
			assert.Equal(t, tt.wantRule, rule.Name)
		})
	}
}

func TestRulesetNoMatch(t *testing.T) {
	rs := NewRuleset()

	for _, text := range []string{
		"User logged out successfully",
		"File report.pdf uploaded",
		"Admin exported all user data", // admin alone is fine during the day
		"Session refreshed",
	} {
		assert.Nil(t, rs.Match(Daytime, text), "text: %s", text)
	}
}

func TestNighttimeAdminPrecedence(t *testing.T) {
	rs := NewRuleset()

	// The nighttime-admin rule wins even when another signature also matches.
	rule := rs.Match(Nighttime, "admin ran SELECT * FROM audit_log WHERE 1=1")
	require.NotNil(t, rule)
	assert.Equal(t, "nighttime_admin", rule.Name)

	// At night without "admin", signature rules still apply.
	rule = rs.Match(Nighttime, "query: SELECT password FROM users")
	require.NotNil(t, rule)
	assert.Equal(t, "sql_injection", rule.Name)
}
