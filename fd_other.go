//go:build !unix

package treesit

import (
	"fmt"
	"os"
)

func dupFile(fd int) (*os.File, error) {
	return nil, fmt.Errorf("file descriptor %d: dot graphs by descriptor need a unix platform", fd)
}
