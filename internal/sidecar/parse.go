package sidecar

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Metadata is the fixed record extracted from one sidecar. Optional fields
// are nil when the sidecar does not carry them; zero is a valid coordinate
// only when the export actually wrote one.
type Metadata struct {
	TakenTime    *time.Time
	CreationTime *time.Time
	Latitude     *float64
	Longitude    *float64
	Altitude     *float64
	Description  string
	OriginalName string
}

// EarliestTime returns the older of the capture and creation timestamps, or
// nil when neither is present. Used to restore file times on copies.
func (m *Metadata) EarliestTime() *time.Time {
	switch {
	case m == nil:
		return nil
	case m.TakenTime == nil:
		return m.CreationTime
	case m.CreationTime == nil:
		return m.TakenTime
	case m.CreationTime.Before(*m.TakenTime):
		return m.CreationTime
	default:
		return m.TakenTime
	}
}

// sidecarJSON mirrors the subset of the Takeout sidecar schema this tool
// consumes. Timestamps arrive as epoch-second strings.
type sidecarJSON struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	CreationTime struct {
		Timestamp string `json:"timestamp"`
	} `json:"creationTime"`
	PhotoTakenTime struct {
		Timestamp string `json:"timestamp"`
	} `json:"photoTakenTime"`
	GeoData     geoJSON `json:"geoData"`
	GeoDataExif geoJSON `json:"geoDataExif"`
}

type geoJSON struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// ParseFile reads and parses a sidecar file.
func ParseFile(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sidecar: %w", err)
	}
	return Parse(data)
}

// Parse extracts the Metadata record from raw sidecar JSON.
func Parse(data []byte) (*Metadata, error) {
	var raw sidecarJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse sidecar: %w", err)
	}

	meta := &Metadata{
		Description:  raw.Description,
		OriginalName: raw.Title,
	}

	taken, err := parseEpoch(raw.PhotoTakenTime.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("parse photoTakenTime: %w", err)
	}
	meta.TakenTime = taken

	created, err := parseEpoch(raw.CreationTime.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("parse creationTime: %w", err)
	}
	meta.CreationTime = created

	// The export writes all-zero geoData when no location is known; fall
	// back to the EXIF-derived block before giving up.
	geo := raw.GeoData
	if geo.isZero() {
		geo = raw.GeoDataExif
	}
	if !geo.isZero() {
		lat, lng, alt := geo.Latitude, geo.Longitude, geo.Altitude
		meta.Latitude = &lat
		meta.Longitude = &lng
		meta.Altitude = &alt
	}

	return meta, nil
}

func (g geoJSON) isZero() bool {
	return g.Latitude == 0 && g.Longitude == 0 && g.Altitude == 0
}

func parseEpoch(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, err
	}
	t := time.Unix(seconds, 0).UTC()
	return &t, nil
}
