package alba

import (
	"os"
	"os/exec"
	"path/filepath"

	"github.com/llir/llvm/ir"
	"github.com/pkg/errors"
)

// BuildExecutable lowers mod to a native object file and links it into an
// executable at outPath. The object step runs clang over the textual IR; the
// link step hands the object to the system C compiler so the printf reference
// resolves against the host libc.
func BuildExecutable(mod *ir.Module, outPath string) error {
	dir, err := os.MkdirTemp("", "alba")
	if err != nil {
		return errors.Wrap(err, "unable to create a build directory")
	}
	defer os.RemoveAll(dir)

	llPath := filepath.Join(dir, "module.ll")
	if err := os.WriteFile(llPath, []byte(mod.String()), 0o644); err != nil {
		return errors.Wrap(err, "unable to write the module")
	}

	objPath := filepath.Join(dir, "module.o")
	if out, err := exec.Command("clang", "-c", llPath, "-o", objPath).CombinedOutput(); err != nil {
		return &BackendError{Output: string(out), Err: err}
	}

	if out, err := exec.Command("cc", objPath, "-o", outPath).CombinedOutput(); err != nil {
		return &LinkError{Output: string(out), Err: err}
	}

	return nil
}
