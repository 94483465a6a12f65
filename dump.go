package airlinesim

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/davecgh/go-spew/spew"
)

func Dump(v ...any) {
	_, file, line, _ := runtime.Caller(1)
	DumpTo(os.Stdout, append([]any{fmt.Sprintf("%s:%d:", file, line)}, v...)...)
}

// DumpTo writes a spew dump of v to w.
func DumpTo(w io.Writer, v ...any) {
	spew.Fdump(w, v...)
}
