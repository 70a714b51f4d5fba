// Package service provides the session service for bil.
//
// SessionService is the client-side data-access layer over the bil API's
// Project → PayGroup → Payment hierarchy:
//
//   - Reads fetch from the server every time; nothing is cached.
//   - Writes are rejected with domain.ErrReadOnly while a historical
//     snapshot is being viewed.
//   - Group and payment paths are built from the active context, which is
//     set by GetProjectDetails, SetActiveProject and SetActiveGroup.
//
// The service depends on the Transport interface, implemented by
// connection.HTTPClient.
package service
