// Fly Fitness Zone - Gym Management and Ephemeral Feed
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/flyfitness

/*
Package models defines the data structures shared by the server, the storage
backends and the client SDK.

Model Categories:

 1. Feed: Post, Comment, Media, UserRef
 2. Accounts: User, WeightEntry, PendingRegistration, Role
 3. Notifications: Notification, NotificationType
 4. Push: PushSubscription, PushKeys
 5. Gym content: ContentItem, ContentKind
 6. Negotiation: Capabilities

Every model carries json tags (the REST wire format) and bson tags (the
MongoDB document layout). The badger backend stores the JSON form.
*/
package models
