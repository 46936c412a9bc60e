// Package queue defines message payloads exchanged over the message broker.
package queue

import "encoding/json"

// EventsQueueName is the single durable queue all floor-plan events flow
// through.  Consumers switch on the envelope type.
const EventsQueueName = "floorplan.events"

// EventType discriminates the payload inside an Envelope.
type EventType string

const (
	EventFloorPublished    EventType = "floor.published"
	EventApprovalRequested EventType = "approval.requested"
	EventApprovalResolved  EventType = "approval.resolved"
)

// Envelope wraps every message on the events queue with its type and the
// time it happened, so consumers can route without inspecting payloads.
type Envelope struct {
	Type       EventType       `json:"type"`
	OccurredAt string          `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// FloorPublishedEvent is published when a floor version goes live, either
// through a direct publish, an approved request or a restore.  It carries
// enough information for downstream consumers to log, notify, or trigger
// analytics without querying the primary database.
type FloorPublishedEvent struct {
	FloorID       uint64 `json:"floor_id"`
	FloorName     string `json:"floor_name"`
	VersionNumber int    `json:"version_number"`
	PublishedBy   uint64 `json:"published_by"`
	RestoredFrom  int    `json:"restored_from,omitempty"`
	Notes         string `json:"notes,omitempty"`
	TablesAdded   int    `json:"tables_added"`
	Modified      int    `json:"modified"`
	Deleted       int    `json:"deleted"`
}

// ApprovalRequestedEvent is published when a draft is routed to an
// approver instead of being published directly.
type ApprovalRequestedEvent struct {
	RequestID   string `json:"request_id"`
	FloorID     uint64 `json:"floor_id"`
	FloorName   string `json:"floor_name"`
	RequesterID uint64 `json:"requester_id"`
	ApproverID  uint64 `json:"approver_id"`
	Priority    string `json:"priority"`
	Message     string `json:"message,omitempty"`
	LockDraft   bool   `json:"lock_draft"`
	Changes     int    `json:"changes"`
}

// ApprovalResolvedEvent is published when a pending request is approved,
// rejected, sent back for changes or withdrawn.
type ApprovalResolvedEvent struct {
	RequestID   string `json:"request_id"`
	FloorID     uint64 `json:"floor_id"`
	FloorName   string `json:"floor_name"`
	RequesterID uint64 `json:"requester_id"`
	ResolvedBy  uint64 `json:"resolved_by"`
	Status      string `json:"status"`
	Resolution  string `json:"resolution,omitempty"`
}
