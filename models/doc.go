// Package models provides shared data structures for the FSM appointment
// booking service.
//
// This package contains all core data models used across the HTTP API, the
// service layer, and the admin utilities. By keeping models in a separate
// package, they can be imported by any component without creating circular
// dependencies.
//
// The models in this package represent:
//   - Tenants: one customer organization's isolated configuration, keyed by
//     accountId_companyId, including OAuth credentials and the license window
//   - AppointmentInstances: tokenized booking requests, one per FSM activity
//   - CustomerBookings: the customer-submitted preferences for one instance
//   - TimeSlots: generated appointment windows offered to customers
//   - Activity snapshots: the FSM activity fields frozen at instance creation
//
// All structs include JSON tags matching the wire contract of the HTTP API
// (camelCase, as consumed by the dispatcher and customer front ends).
package models
