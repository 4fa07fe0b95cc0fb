// Package anki persists flashcards to a deck store. The remote store speaks
// the AnkiConnect JSON protocol over HTTP; an offline store writes Anki
// package files (.apkg) instead. The deck builder on top implements
// fail-fast deck creation with best-effort card insertion.
package anki
