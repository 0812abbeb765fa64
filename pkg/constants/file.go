// Package constants provides file storage constant definitions.
package constants

// FileChunkSize is the size in bytes of every file chunk except possibly the last one.
const FileChunkSize = 1024

// HLength is the length in bytes of the trie hasher output (Blake2b-256).
const HLength = 32

// FileSizeToChallenges is the number of file bytes covered by one proof challenge.
const FileSizeToChallenges = 1 << 19

// TrieKeyLength is the width in bytes of an encoded chunk id.
const TrieKeyLength = 8
