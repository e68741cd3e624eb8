//go:build !unix

package reminder

// lockFile is a no-op where flock is unavailable. Stores still reload the file
// when another process replaced it, but writes are not serialized.
func lockFile(string) (func(), error) {
	return func() {}, nil
}
