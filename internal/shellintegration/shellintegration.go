// Package shellintegration writes the chosen worktree path so the user's
// shell wrapper can cd into it on exit.
package shellintegration

import "os"

// OutputFileEnv names the environment variable the shell wrapper sets to a
// writable path.
const OutputFileEnv = "OWT_OUTPUT_FILE"

// Emit writes path to the file named by OWT_OUTPUT_FILE, or returns it
// unwritten (for the caller to print to stdout) when the variable is unset.
func Emit(path string) (wroteFile bool, err error) {
	file := os.Getenv(OutputFileEnv)
	if file == "" {
		return false, nil
	}
	if err := os.WriteFile(file, []byte(path), 0o600); err != nil {
		return false, err
	}
	return true, nil
}
