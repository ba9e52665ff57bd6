package listing

import "errors"

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrPermission covers every permission-shaped failure: no org context, a
// listing owned by another org (including "does not exist" — deliberately
// indistinguishable so cross-tenant existence never leaks), and a missing
// capability.
var ErrPermission = errors.New("you do not have permission to perform this action")

// PlanLimitError rejects a mutation blocked by the organization's
// subscription plan. Distinct from ErrPermission so the caller can surface an
// upgrade prompt.
type PlanLimitError struct{ Msg string }

func (e *PlanLimitError) Error() string { return e.Msg }

// ValidationError wraps a user-facing validation message on a direct
// mutation. Filter fields never produce one — they are dropped instead.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
