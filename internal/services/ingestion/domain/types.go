// Package domain defines the types and interfaces for the ingestion stage
package domain

import "time"

// Stage is the label attached to every log line of this stage
const Stage = "data_ingestion"

// Report summarises one ingestion run
type Report struct {
	Source   string
	Input    int
	Kept     int
	Dropped  int
	Positive int
	Negative int
	Train    int
	Test     int
	Paths    []string
	Took     time.Duration
}
