// Package domain defines the types and interfaces for the preprocessing stage
package domain

import "time"

// Stage is the label attached to every log line of this stage
const Stage = "data_preprocessing"

// PartReport counts what normalization did to one partition
type PartReport struct {
	Input          int
	Output         int
	DroppedMissing int
	DroppedEmpty   int
}

// Report summarises one preprocessing run
type Report struct {
	Train PartReport
	Test  PartReport
	Paths []string
	Took  time.Duration
}
