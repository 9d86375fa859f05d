// Package storage persists the Follower List: a JSON array of usernames in
// a single flat file (data.json by default).
//
// Writes go to a temporary file in the same directory which is synced and
// then renamed over the target, so readers only ever see the previous list
// or the new one. A mutex serialises writers inside one process.
//
// Load distinguishes a missing file (ErrNoData) from a file that exists but
// does not hold an array of strings (*CorruptError). A corrupt file is left
// untouched for the operator to inspect.
package storage
