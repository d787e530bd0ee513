// Package observability provides event logging, metrics calculation,
// alerting and Slack notification for pulse. Task mutations are appended
// to a JSON Lines event log; metrics are derived on demand from that log,
// while alerts are evaluated against the current task snapshot.
package observability
