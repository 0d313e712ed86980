// Package storepath contains the path constants and helpers used to lay
// out an object store root directory:
//
//	<root>/<hex[0:2]>/<hex[2:64]>  loose objects
//	<root>/pack/<name>.pack        packed objects
//	<root>/pack/<name>.idx         pack index
//	<root>/tmp/                    in-progress writes
package storepath

import "path/filepath"

// Directory names relative to a store root.
const (
	PackDir = "pack"
	TmpDir  = "tmp"

	PackExt  = ".pack"
	IndexExt = ".idx"
)

// Shard returns the two-character shard directory and the remaining
// filename for a lowercase hex-encoded content address.
func Shard(hex string) (dir, name string) {
	return hex[0:2], hex[2:]
}

// LoosePath returns the absolute path of the loose object file for the
// given hex-encoded content address.
func LoosePath(root, hex string) string {
	dir, name := Shard(hex)
	return filepath.Join(root, dir, name)
}

// ShardDir returns the absolute path of the two-character shard
// directory for the given hex-encoded content address.
func ShardDir(root, hex string) string {
	dir, _ := Shard(hex)
	return filepath.Join(root, dir)
}

// TmpPath returns the absolute path of the temp directory under root.
func TmpPath(root string) string {
	return filepath.Join(root, TmpDir)
}

// PackPath returns the absolute path for the pack/index pair named name.
func PackPath(root, name string) (pack, idx string) {
	base := filepath.Join(root, PackDir, name)
	return base + PackExt, base + IndexExt
}

// IsShardDir reports whether name looks like a two-character hex shard
// directory (00 through ff).
func IsShardDir(name string) bool {
	if len(name) != 2 {
		return false
	}
	for _, c := range name {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
