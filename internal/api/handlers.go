package api

import (
	"encoding/json"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/danielsultan7/audit-anomaly-service/internal/detection"
	"github.com/danielsultan7/audit-anomaly-service/internal/logging"
	"github.com/danielsultan7/audit-anomaly-service/internal/model"
	"github.com/danielsultan7/audit-anomaly-service/internal/notifications"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if !s.analyzer.Ready() {
		status = "unhealthy"
	}

	resp := map[string]interface{}{
		"status":       status,
		"model_loaded": s.analyzer.Ready(),
		"model_name":   s.analyzer.ModelName(),
	}

	if sa, ok := s.analyzer.(*detection.SentimentAnalyzer); ok {
		resp["threshold"] = sa.Threshold()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *APIServer) handleAnalyzeLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var rec model.LogRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := rec.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.analyzer.Ready() {
		writeError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}

	verdict, err := s.analyzer.Analyze(rec)
	if err != nil {
		logging.Error("[API] analysis failed for log %d: %v", rec.LogID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if verdict.IsAnomaly {
		logging.Anomaly(verdict.LogID, verdict.AnomalyScore, verdict.ModelName, "analyze-log")
		s.notifyAnomaly(verdict, rec.LogText)
	}

	writeJSON(w, http.StatusOK, verdict)
}

func (s *APIServer) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var recs []model.LogRecord
	if err := json.NewDecoder(r.Body).Decode(&recs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !s.analyzer.Ready() {
		writeError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}

	batchID := uuid.NewString()
	logging.Info("[API] batch %s: analyzing %d records", batchID, len(recs))

	verdicts := detection.AnalyzeBatch(s.analyzer, recs, func(verdict model.Verdict, rec model.LogRecord) {
		if verdict.IsAnomaly {
			logging.Anomaly(verdict.LogID, verdict.AnomalyScore, verdict.ModelName, "analyze-batch "+batchID)
			s.notifyAnomaly(verdict, rec.LogText)
		}
	})

	writeJSON(w, http.StatusOK, verdicts)
}

func (s *APIServer) handleGetCacheStats(w http.ResponseWriter, r *http.Request) {
	if s.llmManager == nil {
		writeError(w, http.StatusBadRequest, "classification cache not active for this variant")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"cache":  s.llmManager.CacheStats(),
	})
}

func (s *APIServer) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	if s.llmManager == nil {
		writeError(w, http.StatusBadRequest, "classification cache not active for this variant")
		return
	}

	cleared := s.llmManager.ClearCache()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"cleared": cleared,
	})
}

// maxSummaryLen caps the log text carried in alert payloads.
const maxSummaryLen = 200

// truncateSummary shortens text to maxSummaryLen bytes without splitting a
// multi-byte rune.
func truncateSummary(text string) string {
	if len(text) <= maxSummaryLen {
		return text
	}
	cut := maxSummaryLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// notifyAnomaly fires the alert asynchronously so delivery latency never
// shows up in response times.
func (s *APIServer) notifyAnomaly(verdict model.Verdict, logText string) {
	if s.notifier == nil {
		return
	}

	logText = truncateSummary(logText)

	go s.notifier.Send(&notifications.Notification{
		LogID:        verdict.LogID,
		AnomalyScore: verdict.AnomalyScore,
		ModelName:    verdict.ModelName,
		Summary:      logText,
		Timestamp:    time.Now().UTC(),
	})
}
