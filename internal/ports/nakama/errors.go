package nakama

import (
	"github.com/heroiclabs/nakama-common/runtime"

	"colonos/internal/app"
)

// gRPC status codes Nakama forwards to clients.
const (
	codeInvalidArgument  = 3
	codeNotFound         = 5
	codePermissionDenied = 7
	codeInternal         = 13
	codeUnauthenticated  = 16
)

var errNoSession = runtime.NewError(app.DetailOf(app.ErrUnauthenticated), codeUnauthenticated)

func codeOf(kind app.Kind) int {
	switch kind {
	case app.KindUnauthorized:
		return codeUnauthenticated
	case app.KindNotFound:
		return codeNotFound
	case app.KindInvalidAction, app.KindRuleViolation:
		return codePermissionDenied
	case app.KindValidation:
		return codeInvalidArgument
	default:
		return codeInternal
	}
}

// toRuntimeError converts a service error into the error returned from an RPC.
func toRuntimeError(err error) error {
	kind := app.KindOf(err)
	if kind == app.KindInternal {
		return runtime.NewError("Internal error", codeInternal)
	}
	return runtime.NewError(app.DetailOf(err), codeOf(kind))
}
