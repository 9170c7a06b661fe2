package model

import "time"

// PressRelease is a typed narrative artifact bound for the Gazette.
type PressRelease struct {
	Type     string         `json:"type"`
	Headline string         `json:"headline"`
	Body     string         `json:"body"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// WithMeta sets a metadata key, allocating the map on first use.
func (p *PressRelease) WithMeta(key string, value any) *PressRelease {
	if p.Metadata == nil {
		p.Metadata = make(map[string]any)
	}
	p.Metadata[key] = value
	return p
}

// PressRecord is an archived release. IDs are strictly monotone.
type PressRecord struct {
	ID        int64        `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Release   PressRelease `json:"release"`
}

// QueuedPress is a release awaiting its scheduled moment.
type QueuedPress struct {
	ID        int64        `json:"id"`
	ReleaseAt time.Time    `json:"release_at"`
	CreatedAt time.Time    `json:"created_at"`
	Release   PressRelease `json:"release"`
}
