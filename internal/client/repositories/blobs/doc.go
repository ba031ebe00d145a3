// Package blobs stores the binary payloads of note attachments.
//
// There is one logical store per media kind (video, image, audio). Entries
// are keyed by opaque string ids; audio entries also carry a display name.
// The package knows nothing about notes: references are kept by the note
// repository and reconciled by the normalization layer.
//
// Two drivers implement Store:
//
//   - SQLiteStore keeps each kind in its own table of the local database.
//   - BucketStore keeps blobs in a gocloud.dev bucket (file:// or mem://)
//     under "<kind>/<id>" keys and streams payloads on read.
package blobs
