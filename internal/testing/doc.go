// Package testing contains fixture and assertion helpers shared by tests:
// throwaway package roots, fake compilers and output assertions.
package testing

const (
	// testDirPermissions is the permission mode for creating test directories.
	testDirPermissions = 0o750

	// testFilePermissions is the permission mode for creating test files.
	testFilePermissions = 0o600

	// testExecPermissions is the permission mode for fake executables.
	testExecPermissions = 0o700
)
