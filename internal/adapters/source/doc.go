// Package source loads the input table of a stage from wherever params point at
//
// Supported locations:
// - a local path to a CSV file (gzip when the name ends in .gz)
// - an http(s) URL to a CSV file, optionally cached on disk with ETag/Last-Modified revalidation
// - a postgres:// or clickhouse:// DSN plus a query
//
// CSV cells follow the pandas defaults: NA markers load as missing and everything else as text.
// Every failure is reported as a source unavailable error.
package source
