// Package models defines the persistent entities of the genre tagger.
//
//   - [Track] : an audio file whose genre has been looked up, with the outcome
//   - [TagRun] : one batch tagging run and its counters
//
// Both implement [Model]; [Repository] defines the CRUD operations the
// repositories package provides for them.
package models
