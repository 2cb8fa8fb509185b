// Package sample holds the manual sample record and the field rules that
// gate its creation.
package sample

import "fmt"

const (
	// TypeSample tags records created by hand rather than read from a changer.
	TypeSample = "Sample"
	// LocationManual marks a sample that is not in any changer position.
	LocationManual = "Manual"
)

// Task is a queued data collection step attached to a sample.
type Task struct {
	Type       string            `json:"type"`
	Parameters map[string]string `json:"parameters,omitempty"`
}

// Record is a sample ready to be handed to the store. SampleID is empty
// until the tracking list assigns one.
type Record struct {
	SampleID       string `json:"sampleID,omitempty"`
	SampleName     string `json:"sampleName"`
	ProteinAcronym string `json:"proteinAcronym"`
	Type           string `json:"type"`
	DefaultPrefix  string `json:"defaultPrefix"`
	Location       string `json:"location"`
	Loadable       bool   `json:"loadable"`
	Tasks          []Task `json:"tasks"`
}

// Params are the raw form values a Record is built from.
type Params struct {
	SampleName     string
	ProteinAcronym string
}

// NewRecord builds a fresh manual sample from validated params.
func NewRecord(p Params) Record {
	return Record{
		SampleName:     p.SampleName,
		ProteinAcronym: p.ProteinAcronym,
		Type:           TypeSample,
		DefaultPrefix:  DefaultPrefix(p.ProteinAcronym, p.SampleName),
		Location:       LocationManual,
		Loadable:       true,
		Tasks:          []Task{},
	}
}

// DefaultPrefix is the data file prefix for a sample.
func DefaultPrefix(proteinAcronym, sampleName string) string {
	return fmt.Sprintf("%s-%s", proteinAcronym, sampleName)
}
