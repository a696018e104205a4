// Package cos provides common low-level types and utilities shared by
// every azrael component.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	ratomic "sync/atomic"

	"github.com/azraelhq/azrael/cmn/nlog"
)

type (
	// ErrNotFound is returned by whole-or-nothing operations (§7 of
	// the design: NotFound taxonomy) where the caller required an
	// object/template/fragment to exist.
	ErrNotFound struct {
		what string
	}
	// ErrValidation wraps a rejected builder/validator input (§7:
	// Validation taxonomy); it is never allowed to escape as a panic
	// through a handler - handlers turn it into {ok:false}.
	ErrValidation struct {
		what string
	}
	// Errs is a bounded, deduplicating multi-error accumulator for
	// collecting several independent per-item failures without
	// aborting the whole call.
	Errs struct {
		errs []error
		cnt  int64
		mu   sync.Mutex
	}
)

func NewErrNotFound(format string, a ...any) *ErrNotFound {
	return &ErrNotFound{fmt.Sprintf(format, a...)}
}

func (e *ErrNotFound) Error() string { return e.what + " does not exist" }

func IsErrNotFound(err error) bool {
	var e *ErrNotFound
	return errors.As(err, &e)
}

func NewErrValidation(format string, a ...any) *ErrValidation {
	return &ErrValidation{fmt.Sprintf(format, a...)}
}

func (e *ErrValidation) Error() string { return e.what }

func IsErrValidation(err error) bool {
	var e *ErrValidation
	return errors.As(err, &e)
}

const maxErrs = 4

func (e *Errs) Add(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	for _, added := range e.errs {
		if added.Error() == err.Error() {
			e.mu.Unlock()
			return
		}
	}
	if len(e.errs) < maxErrs {
		e.errs = append(e.errs, err)
		ratomic.StoreInt64(&e.cnt, int64(len(e.errs)))
	}
	e.mu.Unlock()
}

func (e *Errs) Cnt() int { return int(ratomic.LoadInt64(&e.cnt)) }

func (e *Errs) JoinErr() (cnt int, err error) {
	if cnt = e.Cnt(); cnt > 0 {
		e.mu.Lock()
		err = errors.Join(e.errs...)
		e.mu.Unlock()
	}
	return
}

func (e *Errs) Error() (s string) {
	cnt := e.Cnt()
	if cnt == 0 {
		return
	}
	e.mu.Lock()
	var err error
	if cnt = len(e.errs); cnt > 0 {
		err = e.errs[0]
	}
	e.mu.Unlock()
	if err == nil {
		return
	}
	if cnt > 1 {
		err = fmt.Errorf("%v (and %d more error%s)", err, cnt-1, Plural(cnt-1))
	}
	return err.Error()
}

func Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

const fatalPrefix = "FATAL ERROR: "

// ExitLogf logs a fatal error (flushing the logger first) and exits
// the process; used by cmd/ entrypoints on unrecoverable startup
// failures (e.g. the backing store could not be opened).
func ExitLogf(f string, a ...any) {
	msg := fmt.Sprintf(fatalPrefix+f, a...)
	if flag.Parsed() {
		nlog.ErrorDepth(1, msg)
		nlog.Flush(true)
	}
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
