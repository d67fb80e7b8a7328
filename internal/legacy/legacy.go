// Package legacy reads the JSON document the original file-backed store kept
// on disk and loads it into the relational store. The format is only read
// here, never written.
package legacy

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type User struct {
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
	CreatedAt    string `json:"createdAt"`
}

type Session struct {
	Token     string `json:"token"`
	UserID    uint   `json:"userId"`
	ExpiresAt string `json:"expiresAt"`
}

// Contact carries a single display name; it is split into first/last parts
// on import.
type Contact struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"userId"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt"`
}

type Interaction struct {
	ID         uint   `json:"id"`
	UserID     uint   `json:"userId"`
	ContactID  *uint  `json:"contactId,omitempty"`
	ContactIDs []uint `json:"contactIds"`
	Rating     *int   `json:"rating"`
	Notes      string `json:"notes"`
	CreatedAt  string `json:"createdAt"`
	UpdatedAt  string `json:"updatedAt"`
}

type Document struct {
	Users        []User        `json:"users"`
	Sessions     []Session     `json:"sessions"`
	Contacts     []Contact     `json:"contacts"`
	Interactions []Interaction `json:"interactions"`
}

// Load reads and normalizes a legacy document. Normalization is the
// versioned one-time migration step: missing arrays default to empty and the
// pre-multi-contact singular contactId field becomes a one-element
// contactIds list.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read legacy document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse legacy document: %w", err)
	}
	doc.normalize()
	return &doc, nil
}

func (d *Document) normalize() {
	if d.Users == nil {
		d.Users = []User{}
	}
	if d.Sessions == nil {
		d.Sessions = []Session{}
	}
	if d.Contacts == nil {
		d.Contacts = []Contact{}
	}
	if d.Interactions == nil {
		d.Interactions = []Interaction{}
	}
	for i := range d.Interactions {
		in := &d.Interactions[i]
		if in.ContactIDs == nil && in.ContactID != nil {
			in.ContactIDs = []uint{*in.ContactID}
		}
		in.ContactID = nil
	}
}

// ParseTime accepts the RFC 3339 timestamps the legacy store wrote; anything
// unparseable falls back to the supplied default.
func ParseTime(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return fallback
}
