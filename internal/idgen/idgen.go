package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// NewFunc returns a new identifier; replace it in tests for stable ids.
// Dashes are dropped to keep control ids short.
var NewFunc = func() string { return strings.ReplaceAll(uuid.New().String(), "-", "") }

func New() string { return NewFunc() }
