// Command libflvgap builds the C shared library:
//
//	go build -buildmode=c-shared -o libflvgap.so ./cmd/libflvgap
//
// It exports
//
//	char *check(const char *path);
//	void check_free(char *report);
//
// check always returns a NUL-terminated JSON report that the caller must pass
// to check_free. The Go-side buffer behind each report stays held until then,
// so export.Outstanding counts the reports C callers still own; freeing an
// address twice is ignored.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"unsafe"

	"github.com/five82/flvgap/internal/export"
)

var handles export.Handles

//export check
func check(path *C.char) *C.char {
	var buf *export.Buffer
	if path == nil {
		buf = export.ProduceError("format error: null path")
	} else {
		buf = export.Produce(C.GoString(path))
	}

	report := C.CString(string(buf.Bytes()))
	handles.Hold(uintptr(unsafe.Pointer(report)), buf)
	return report
}

//export check_free
func check_free(report *C.char) { //nolint:revive // C symbol name
	if report == nil {
		return
	}
	if handles.Drop(uintptr(unsafe.Pointer(report))) {
		C.free(unsafe.Pointer(report))
	}
}

func main() {}
