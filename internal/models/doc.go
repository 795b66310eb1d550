// Package models defines domain entities and persistence interfaces for the coursedeck catalog client.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): In-memory shapes built from spreadsheet rows
//   - [Topic] : A named group of videos built from one or more content rows
//   - [Video] : A single playable unit with label, video id, description and URL
//   - [User] : Profile data returned by the identity provider
//   - [TopicProgress] : Derived per-topic watch counts, recomputed on demand
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Session] : The signed-in user's identity and access credential
//   - [WatchedVideo] : One row per locally watched video
//
// All persistent entities implement the Model interface providing ID generation, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
