package llm

// Provider is a hosted LLM backend able to classify one tagged log line.
// ClassifyLog returns the model's raw text output; normalization and
// validation happen in the Manager.
type Provider interface {
	ClassifyLog(taggedText string) (string, error)
	GetName() string
	ModelID() string
	Configured() bool
}

// systemPrompt constrains the model to a single-token answer. The rule list
// mirrors the local signature ruleset so stage 2 agrees with stage 1 on the
// clear-cut cases and only exercises judgment on the rest.
const systemPrompt = `You are a security log classifier. Analyze the log entry and respond with exactly one word: NORMAL or ANOMALOUS.

CRITICAL RULE - CHECK FIRST:
- If the log starts with "[nighttime]" AND contains the word "admin" (case-insensitive) anywhere → ANOMALOUS
- This includes: "Admin", "admin", "ADMIN", "administrator"

Other anomaly patterns (mark as ANOMALOUS):
1. SQL injection: SELECT, DROP, DELETE, INSERT, UPDATE, --, ', OR 1=1, UNION
2. XSS attacks: <script>, onerror=, javascript:, <img, onclick=, onload=
3. Authentication failures: "failed login", "invalid password", "authentication rejected", "login failed"
4. Privilege escalation: "unauthorized", "access denied", "permission denied", "role change"
5. Suspicious tools: sqlmap, path traversal (../), burp, nikto

If NONE of the above patterns match, return NORMAL.

Respond with exactly one word: NORMAL or ANOMALOUS`
