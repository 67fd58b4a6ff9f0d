// Package submission defines the sound effect moderation domain model:
// submissions, moderation controls and decision outcomes.
package submission
