// Package ir provides the request model and canonical value types for sparqlc.
//
// This package contains type definitions and JSON decoding only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Requests are loosely structured: filter maps may be JSON arrays or
//     objects, numeric fields may arrive as strings, coordinates as pairs or
//     {lat,lng} objects. Decoding absorbs that looseness so the compiler
//     only sees typed values.
//   - Canonical JSON (RFC 8785 key order, NFC strings) is used only for
//     content-addressed request identity (cache keys), never for output.
//   - Numbers are carried as their decimal text in canonical form so that
//     hashing never depends on float formatting.
package ir
