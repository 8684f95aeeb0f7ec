package model

// Queue entry outcomes returned by the admission endpoint.
const (
	QueueImmediateEntry = "IMMEDIATE_ENTRY"
	QueueWaiting        = "WAITING"
	QueueError          = "ERROR"
)

// QueueEntry is the platform's reply to an enter-queue request. Exactly one
// of AccessKey, Rank or Message is meaningful depending on Status.
type QueueEntry struct {
	Status    string `json:"status"`
	AccessKey string `json:"accessKey,omitempty"`
	Rank      int    `json:"rank,omitempty"`
	Message   string `json:"message,omitempty"`
}

// AdmissionMessage is an inbound frame on the waiting-room channel. Only
// type "ADMIT" carries protocol significance; everything else is ignored so
// new server-side message types never break old clients.
type AdmissionMessage struct {
	Type      string `json:"type"`
	AccessKey string `json:"accessKey,omitempty"`
}

const AdmissionAdmit = "ADMIT"
