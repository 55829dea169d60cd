package channel

import "github.com/OneOfOne/xxhash"

// HashBytes is the default Exchange pusher hash function for byte-keyed
// items (spec §4.2 "Exchange pusher: hash(item) mod N").
func HashBytes(b []byte) uint64 { return xxhash.Checksum64(b) }

// HashString is HashBytes over s without copying it into a []byte.
func HashString(s string) uint64 { return xxhash.ChecksumString64(s) }
