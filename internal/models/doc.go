// Package models defines the core domain models for tasksync.
//
// # Models
//
//   - User: a registered account, bound to an external identity token
//   - Task: a single task owned by exactly one user
//   - SplitSpec / SplitRequest: input for the task split operation
//   - IdentityClaim: the identity payload presented on connect
//
// # Design Principles
//
//  1. All timestamps are epoch milliseconds (int64); optional timestamps are
//     *int64 and nil when absent.
//  2. Durations travel as "HH:MM:SS" strings on the wire and in storage;
//     ParseDuration is the single parseability check.
//  3. Models hold no storage or transport concerns; IDs are uuid.UUID and
//     are never reused once assigned.
package models
