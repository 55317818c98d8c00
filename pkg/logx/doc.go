// Package logx is the structured logger used across crontab.
//
// It is a small value-type wrapper over zerolog that keeps:
//   - Console output readable (short timestamp + short caller)
//   - JSON output structured, for machines
//   - A zero value that is a safe no-op, so library callers need no setup
package logx
