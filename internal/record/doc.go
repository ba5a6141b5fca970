// Package record provides the canonical kanji record and the dataset codec.
//
// This package contains the data model shared by every other internal
// package. record imports nothing internal, so it stays the foundational
// layer with no circular dependencies.
//
// Key design constraints:
//   - Kanji is the identity of a record; it is unique across a dataset
//   - Primitives is always a JSON array, never null
//   - Strings are NFC normalized at the serialization boundary
//   - The sort key is derived from HeisigNumber and never stored
package record
