// Package pickload drives concurrent picks and reveals against a running
// service and checks the coin ledger and rankings afterwards.
package pickload

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL       string        // Base URL of the service
	Members       []string      // Members with open accounts
	QuestionSetID string        // Set every pick answers
	QuestionIDs   []string      // Questions in the set
	OpenItem      string        // Item opened on every received pick
	OpenRacers    int           // Concurrent opens per pick
	MaxOpens      int           // Picks to race opens on; 0 means all
	Workers       int           // Number of concurrent workers
	Timeout       time.Duration // HTTP request timeout
	Verbose       bool          // Log every failed request
}

// PickRequest is the body of POST /picks.
type PickRequest struct {
	QuestionSheetID string `json:"question_sheet_id"`
	QuestionSetID   string `json:"question_set_id"`
	QuestionID      string `json:"question_id"`
	PickedID        string `json:"picked_id"`
	Skip            bool   `json:"skip"`
}

// Submission is one pick a member tries to make.
type Submission struct {
	PickerID string
	Request  PickRequest
}

// Created records an accepted pick.
type Created struct {
	PickID   string `json:"pick_id"`
	PickedID string `json:"picked_id"`
	PickerID string `json:"-"`
}

// Stats holds run statistics.
type Stats struct {
	PicksGenerated int
	PicksSubmitted int
	PicksCreated   int
	PicksDuplicate int
	PicksFailed    int
	OpensAttempted int
	OpensSucceeded int
	OpensRejected  int
	OpensFailed    int
	MembersChecked int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
