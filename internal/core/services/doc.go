// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters): the supervisor and its router,
// the three specialist agents, hybrid retrieval, ingestion, the
// support database tools and layered settings.
//
// Services depend only on the ports, the domain, the logger and uuid.
package services
