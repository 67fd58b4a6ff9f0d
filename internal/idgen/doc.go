// Package idgen generates the opaque submission identifiers embedded in
// moderation control ids. Callers must treat them as opaque strings.
package idgen
