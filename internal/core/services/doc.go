// Package services holds the use cases behind the driving ports. An
// extraction resolves its source text, chunks and filters it, fans out to
// the strategies and merges their candidates into one ranked result.
package services
