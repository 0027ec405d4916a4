package amqp

import (
	"encoding/json"
	"time"
)

// ReconcileMessage asks a worker to rebuild one project month. It carries
// only the coordinates; the worker reads the schedule from the database.
type ReconcileMessage struct {
	ProjectID string    `json:"projectId"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewReconcileMessage(projectID string, year, month int) *ReconcileMessage {
	return &ReconcileMessage{
		ProjectID: projectID,
		Year:      year,
		Month:     month,
		Timestamp: time.Now(),
	}
}

func (m *ReconcileMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReconcileMessageFromJSON(data []byte) (*ReconcileMessage, error) {
	var msg ReconcileMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
