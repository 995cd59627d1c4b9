package audit

import (
	"encoding/json"
	"fmt"
	"time"

	id "redhope/pkg/domain"
)

// payload is the JSON structure written to the outbox and published to Kafka.
type payload struct {
	ID        string            `json:"id"`
	Category  string            `json:"category"`
	Timestamp string            `json:"timestamp"`
	Action    string            `json:"action"`
	BankID    string            `json:"bank_id,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	Subject   string            `json:"subject,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Marshal encodes the event in its wire form.
func Marshal(e Event) ([]byte, error) {
	p := payload{
		ID:        e.ID,
		Category:  string(e.Category()),
		Timestamp: e.Timestamp.UTC().Format(time.RFC3339Nano),
		Action:    e.Action,
		Subject:   e.Subject,
		Detail:    e.Detail,
		RequestID: e.RequestID,
	}
	if !e.BankID.IsNil() {
		p.BankID = e.BankID.String()
	}
	if !e.UserID.IsNil() {
		p.UserID = e.UserID.String()
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal audit payload: %w", err)
	}
	return b, nil
}

// Unmarshal decodes the wire form produced by Marshal.
func Unmarshal(b []byte) (Event, error) {
	var p payload
	if err := json.Unmarshal(b, &p); err != nil {
		return Event{}, fmt.Errorf("unmarshal audit payload: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, p.Timestamp)
	if err != nil {
		return Event{}, fmt.Errorf("parse audit timestamp: %w", err)
	}
	e := Event{
		ID:        p.ID,
		Timestamp: ts,
		Action:    p.Action,
		Subject:   p.Subject,
		Detail:    p.Detail,
		RequestID: p.RequestID,
	}
	if p.BankID != "" {
		if e.BankID, err = id.ParseBankID(p.BankID); err != nil {
			return Event{}, err
		}
	}
	if p.UserID != "" {
		if e.UserID, err = id.ParseUserID(p.UserID); err != nil {
			return Event{}, err
		}
	}
	return e, nil
}
