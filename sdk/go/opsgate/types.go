package opsgate

import (
	"github.com/opsgate/opsgate/internal/enforce"
	"github.com/opsgate/opsgate/internal/model"
)

// Context carries caller-declared operation metadata (purpose,
// contains_personal_data, user_consent, responsible_party, ...).
type Context = model.Context

// Decision is one composed oversight decision.
type Decision = model.Decision

// HealthCheck is one scored health observation.
type HealthCheck = model.HealthCheck

// BlockedError is returned when oversight denies an operation.
// The wrapped function is never called.
type BlockedError = enforce.BlockedError
