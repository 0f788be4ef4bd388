package notifications

import "time"

// Notification describes one detected anomaly worth alerting on.
type Notification struct {
	LogID        int64
	AnomalyScore float64
	ModelName    string
	RuleName     string
	Summary      string
	Timestamp    time.Time
}

// NotificationProvider delivers a notification over one channel.
type NotificationProvider interface {
	Name() string
	IsEnabled() bool
	Send(notification *Notification) error
}
