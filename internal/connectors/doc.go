// Package connectors holds source-site integrations. Each connector
// knows how to enumerate and fetch workouts from one site; runninglog
// is the connector for running-log.com.
package connectors
