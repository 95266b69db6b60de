package service

import "github.com/google/uuid"

// newID returns a fresh UUID string. Swapped for a deterministic
// generator in tests where ids matter.
var newID = uuid.NewString
