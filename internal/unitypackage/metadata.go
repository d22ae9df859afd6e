package unitypackage

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Metadata is the JSON document embedded in a package header.
type Metadata struct {
	Link         Link        `json:"link"`
	UnityVersion string      `json:"unity_version"`
	PubDate      string      `json:"pubdate"`
	Version      string      `json:"version"`
	UploadID     flexInt     `json:"upload_id"`
	VersionID    flexInt     `json:"version_id"`
	Category     LabelWithID `json:"category"`
	ID           flexInt     `json:"id"`
	Title        string      `json:"title"`
	Publisher    LabelWithID `json:"publisher"`
	Description  string      `json:"description,omitempty"`
}

// Link is the store link of a package.
type Link struct {
	ID   flexString `json:"id"`
	Type string     `json:"type"`
}

// LabelWithID is a category or publisher reference.
type LabelWithID struct {
	ID    flexString `json:"id"`
	Label string     `json:"label"`
}

// ParseMetadata decodes header JSON. Ids may be encoded as strings or
// numbers.
func ParseMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// flexInt decodes a JSON number or numeric string. Empty or
// non-numeric strings decode to zero.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexInt(n)
		return nil
	}
	var n int
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

func (f flexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(f)))
}

// flexString decodes a JSON string or number as a string.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// NewMetadata builds metadata with the common identity fields set.
// Categories and publishers are left for the caller.
func NewMetadata(id int, title, version string, versionID int, unityVersion, pubDate string) *Metadata {
	return &Metadata{
		Link:         Link{ID: flexString(strconv.Itoa(id)), Type: "content"},
		UnityVersion: unityVersion,
		PubDate:      pubDate,
		Version:      version,
		VersionID:    flexInt(versionID),
		ID:           flexInt(id),
		Title:        title,
	}
}

// SetCategory sets the category reference.
func (m *Metadata) SetCategory(id, label string) *Metadata {
	m.Category = LabelWithID{ID: flexString(id), Label: label}
	return m
}

// SetPublisher sets the publisher reference.
func (m *Metadata) SetPublisher(id, label string) *Metadata {
	m.Publisher = LabelWithID{ID: flexString(id), Label: label}
	return m
}

// Encode returns m as header JSON.
func (m *Metadata) Encode() ([]byte, error) {
	return json.Marshal(m)
}
