// Package models defines the data shared between the reconciliation core,
// the store adapters and the transport layer.
package models

import "time"

// Asset is the metadata record of one stored file. PublicID is the blob
// store content identifier; ID is the metadata store identifier.
type Asset struct {
	ID           string
	Email        string
	FileName     string
	URL          string
	PublicID     string
	ResourceType string
	CreatedAt    time.Time
}

// Resource kinds reported by the blob store.
const (
	ResourceImage = "image"
	ResourceVideo = "video"
	ResourceRaw   = "raw"
)

// LocalFile is a file staged on local disk by the transport layer.
type LocalFile struct {
	// Path is the temp file location; it is removed after the push attempt.
	Path string
	// Name is the original client-side file name.
	Name string
	Size int64
}

// StoredFile describes a file the blob store accepted.
type StoredFile struct {
	PublicID     string `json:"public_id"`
	URL          string `json:"url"`
	ResourceType string `json:"resource_type"`
	FileName     string `json:"filename"`
}
