// Package services defines the error taxonomy shared by pipeline stages.
//
// Stages tag failures with sentinel markers (external tool, validation,
// configuration, timeout, transient, fatal) via Wrap so the orchestrator can
// decide between recording a warning and aborting the run without inspecting
// message text.
package services
