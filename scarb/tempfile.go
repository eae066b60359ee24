package scarb

import (
	"fmt"
	"os"
	"path/filepath"
)

// TempFile is the well-known artifact path commands may write to through
// $OUTPUT. It is unique per process.
func TempFile() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("starklings_%d.sierra.json", os.Getpid()))
}

// TempFileHandle removes TempFile when released. Hold it with
// defer so the artifact goes away on every exit path.
type TempFileHandle struct {
	path string
}

func Acquire() *TempFileHandle {
	return &TempFileHandle{path: TempFile()}
}

func (h *TempFileHandle) Path() string {
	return h.path
}

// Release deletes the artifact. A missing file or any other removal error is
// ignored.
func (h *TempFileHandle) Release() {
	_ = os.Remove(h.path)
}
