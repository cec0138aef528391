// Package errors provides the structured error type used across the room
// server.
//
// Errors carry a Code, a user-facing message, an optional cause and
// metadata. They convert to gRPC status errors for the admin surface and to
// HTTP statuses when a websocket upgrade is refused.
//
// The room engine sorts failures into four kinds:
//
//   - malformed input never becomes an error; codec reads return a zero
//     value and ok == false
//   - invariant violations (double occupancy, stack overflow, out of bounds
//     mutation) are built with Invariantf and logged; the offending mutation
//     is dropped
//   - business rejections (blocked placement, toggling a denylisted item,
//     acting without rights) are built with Rejectedf; the acting client gets
//     a rejection packet
//   - persistence failures are logged by the writer and never roll back
//     in-memory room state
//
// Creating and wrapping:
//
//	err := errors.NotFoundf("room %d not found", id)
//	if err := repo.Get(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to load room")
//	}
//
// Config validation:
//
//	vb := errors.NewValidationBuilder()
//	if c.Transport == nil {
//	    vb.RequiredField("Transport")
//	}
//	return vb.Build()
package errors
