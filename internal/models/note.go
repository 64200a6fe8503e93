// Package models defines the domain types for PictNote.
package models

import "time"

// FileAttributes is the canonical view of one input file, built from the
// filesystem and, for JPEGs, embedded EXIF metadata.
type FileAttributes struct {
	Path        string    `json:"path"`
	DisplayName string    `json:"display_name"`
	MIMEType    string    `json:"mime_type"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	// Location is set only when both latitude and longitude were resolved.
	Location *Geolocation `json:"location,omitempty"`
	// Altitude is extracted independently of Location.
	Altitude *float64 `json:"altitude,omitempty"`
}

// Geolocation holds signed decimal degrees and an optional altitude in meters.
type Geolocation struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Altitude  *float64 `json:"altitude,omitempty"`
}

// Notebook is a named note container in the remote service.
type Notebook struct {
	GUID string `json:"guid"`
	Name string `json:"name"`
}

// Tag is a named label in the remote service.
type Tag struct {
	GUID string `json:"guid"`
	Name string `json:"name"`
}

// User is the authenticated account. ShardID routes note operations.
type User struct {
	ID       int32  `json:"id"`
	Username string `json:"username"`
	ShardID  string `json:"shard_id"`
}

// NoteRecord is the note as acknowledged by the service after creation.
type NoteRecord struct {
	GUID         string    `json:"guid"`
	Title        string    `json:"title"`
	NotebookGUID string    `json:"notebook_guid,omitempty"`
	Created      time.Time `json:"created"`
}

// ImageFile is an image found in the inbox directory.
type ImageFile struct {
	Path    string    `json:"path"` // relative to the inbox root
	AbsPath string    `json:"abs_path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}
