// Package logger builds the zap logger shared by the server and the CLI.
//
// Level "debug" uses zap's development preset; other levels use the
// production preset. Format selects json or console encoding.
//
// Requests carry a ray id (see core/middleware/rayid). WithRayID attaches it
// to a logger so every line written while serving a request can be correlated:
//
//	l := logger.WithRayID(log, c)
//	l.Error("Purchase failed", zap.Error(err))
package logger
