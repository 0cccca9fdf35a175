// Package core defines the shared vocabulary of the triage pipeline: the
// State record threaded through every stage, the closed StageID enumeration,
// the Stage execution contract and the append-only execution Trace.
//
// Everything here is transport- and provider-agnostic. Stages, the
// supervisor and the pipeline driver all operate exclusively on these types.
package core
