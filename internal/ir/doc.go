// Package ir provides the shared value and descriptor types for the hit data store.
//
// This package contains type definitions only. All other internal packages
// import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Column values are a sealed set: Null, Text, Integer, Real, Timestamp
//   - Booleans are stored as Integer 0/1
//   - Column assignments are ordered (Columns), never maps, so generated
//     statements are stable for a given call site
//   - Text values are NFC normalized before they reach the store
package ir
