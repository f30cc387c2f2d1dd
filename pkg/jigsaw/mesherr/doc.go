// Package mesherr defines the closed error taxonomy of the binding layer and
// translates native status codes into it.
//
// Every failure surfaced by the jigsaw packages is a *Error carrying the
// Stage that produced it and a Kind:
//
//   - KindMalformedGeometry: bad input topology or dimensionality
//   - KindInvalidConfiguration, KindUnknownOption: rejected before any
//     native call
//   - KindNativeFailure: the engine reported a non-success status; Code
//     holds the original status
//   - KindCorruptOutput: the engine reported success but its output failed
//     validation
//   - KindResourceExhausted: pool saturation, memory budget or a native
//     allocation failure; the only kind worth retrying
//   - KindCanceled: the caller's context ended first
//
// Compare kinds with errors.Is against the Err* sentinels and use errors.As
// to reach the status code:
//
//	var me *mesherr.Error
//	if errors.As(err, &me) && me.HasCode {
//	    log.Printf("engine status %d: %s", me.Code, me.Message)
//	}
package mesherr
