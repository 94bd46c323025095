package model

import "time"

// Document is the governed artifact whose version history is tracked. The
// engine is content-agnostic: a document is just an identity plus current
// metadata; its state lives in the snapshot history.
type Document struct {
	ID               string    `json:"id"`
	OrgID            string    `json:"org_id,omitempty"`
	Title            string    `json:"title"`
	Category         string    `json:"category,omitempty"`
	JurisdictionTags []string  `json:"jurisdiction_tags,omitempty"`
	CreatedBy        string    `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`
}
