//go:build unix

package treesit

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// dupFile opens a private duplicate of fd so closing it leaves the
// caller's descriptor open.
func dupFile(fd int) (*os.File, error) {
	dup, err := unix.Dup(fd)
	if err != nil {
		return nil, fmt.Errorf("dup file descriptor %d: %w", fd, err)
	}
	unix.CloseOnExec(dup)
	return os.NewFile(uintptr(dup), fmt.Sprintf("fd%d", fd)), nil
}
