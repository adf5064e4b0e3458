// Package model defines core types used throughout rowmap.
//
// # Identity Types
//
//   - Key: Unique, ordered record identifier (lexicographic byte order)
//
// # Data Types
//
//   - Row: Record with a dynamic, insertion-ordered set of named columns
//
// Rows keep their first-set column order. Two records may carry entirely
// different column sets; reconciling them into one stable export header is
// the job of the schema package.
package model
