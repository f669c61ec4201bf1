// Command libhlbridge builds the C shared library:
//
//	go build -buildmode=c-shared -o libhlbridge.so ./cmd/libhlbridge
//
// Every exported function runs on the calling C thread. Errors are reported
// as a negative return value and parked per thread until collected with
// last_error_length and last_error_message. A thread's uncollected error is
// dropped once the thread exits.
package main

/*
#include <stdbool.h>
#include <stdint.h>
*/
import "C"

import (
	"unsafe"

	"github.com/codefionn/hlbridge/internal/bridge"
	"github.com/codefionn/hlbridge/internal/config"
	"github.com/codefionn/hlbridge/internal/handle"
	"github.com/codefionn/hlbridge/internal/logger"
	"github.com/codefionn/hlbridge/internal/render"
)

var lib *bridge.Bridge

func init() {
	cfg, err := config.Load(config.GetConfigPath())
	if err != nil {
		cfg = config.DefaultConfig()
	}
	// Logging stays disabled if the log file cannot be opened.
	_ = cfg.InitLogger()
	if err != nil {
		logger.Warn("Ignoring configuration: %v", err)
	}
	lib = bridge.New(render.New(cfg.RenderOptions()))
	logger.Debug("libhlbridge %s loaded", bridge.Version)
}

//export last_error_length
func last_error_length() C.int {
	return C.int(lib.LastErrorLength(tid()))
}

//export last_error_message
func last_error_message(buf *C.char, length C.int) C.int {
	return C.int(lib.LastErrorMessage(tid(), unsafe.Pointer(buf), int32(length)))
}

//export release_thread_errors
func release_thread_errors() {
	lib.ReleaseThreadErrors(tid())
}

//export hlbridge_version
func hlbridge_version(buf *C.char, length C.int) C.int {
	return C.int(lib.WriteVersion(tid(), unsafe.Pointer(buf), int32(length)))
}

//export load_default_theme_set
func load_default_theme_set() C.uint64_t {
	return C.uint64_t(lib.LoadDefaultThemeSet(tid()))
}

//export release_theme_set
func release_theme_set(ts C.uint64_t) {
	lib.ReleaseThemeSet(handle.Token(ts))
}

//export find_all_themes
func find_all_themes(buf *C.char, length C.int, ts C.uint64_t) C.int {
	return C.int(lib.FindAllThemes(tid(), unsafe.Pointer(buf), int32(length), handle.Token(ts)))
}

//export load_default_syntax_set
func load_default_syntax_set(newlines C.bool) C.uint64_t {
	return C.uint64_t(lib.LoadDefaultSyntaxSet(tid(), bool(newlines)))
}

//export release_syntax_set
func release_syntax_set(ss C.uint64_t) {
	lib.ReleaseSyntaxSet(handle.Token(ss))
}

//export find_all_syntaxes
func find_all_syntaxes(buf *C.char, length C.int, ss C.uint64_t) C.int {
	return C.int(lib.FindAllSyntaxes(tid(), unsafe.Pointer(buf), int32(length), handle.Token(ss)))
}

//export find_syntax_by_extension
func find_syntax_by_extension(buf *C.char, length C.int, ss C.uint64_t, ext *C.char) C.int {
	return C.int(lib.FindSyntaxByExtension(tid(), unsafe.Pointer(buf), int32(length), handle.Token(ss), unsafe.Pointer(ext)))
}

//export find_syntax_by_token
func find_syntax_by_token(buf *C.char, length C.int, ss C.uint64_t, token *C.char) C.int {
	return C.int(lib.FindSyntaxByToken(tid(), unsafe.Pointer(buf), int32(length), handle.Token(ss), unsafe.Pointer(token)))
}

//export highlight_to_html
func highlight_to_html(buf *C.char, length C.int, src *C.char, ss C.uint64_t, syntaxName *C.char, ts C.uint64_t, themeName *C.char) C.int {
	return C.int(lib.HighlightToHTML(tid(), unsafe.Pointer(buf), int32(length),
		unsafe.Pointer(src), handle.Token(ss), unsafe.Pointer(syntaxName),
		handle.Token(ts), unsafe.Pointer(themeName)))
}

func main() {}
