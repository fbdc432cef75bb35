// Package connection provides the Unix socket client used by `poold ctl`.
package connection
