// Package core provides the business logic for synthetic dataset generation.
//
// Everything here is independent of the transport layer. The web server and
// the datagen CLI both drive the same [Service].
//
// # Generation
//
// A run produces a [Dataset] of ordered [Record] values from one of two
// sources:
//
//   - Built-in categories, resolved with [ParseCategory]. Each category has a
//     fixed field list and a [GeneratorFunc].
//   - Custom schemas, parsed with [ParseSchema] or [ParseSchemaYAML]. Each
//     field spec becomes a [NumberRange], [Literal] or [BareTag].
//
// Randomness comes from a seeded *rand.Rand (see [NewRand]). Passing the same
// seed and clock reproduces a dataset exactly.
//
// # Serialization
//
// [Serialize] renders a dataset as JSON, CSV, XML or SQL. Column order always
// follows the first record.
//
// # History
//
// Completed runs are recorded in a capped [HistoryStore], newest first. Three
// backends exist: [MemoryHistory], [SQLiteHistory] and [PostgresHistory].
// Built-in runs can be regenerated with [Service.Replay].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - GEN001-GEN004: Generation errors (record counts and capacity)
//   - SCH001, CAT001, FMT001: Schema, category and format errors
//   - HIS001-HIS002: History errors
//   - REQ001-REQ003, DB001-DB003: Request and storage errors
package core
