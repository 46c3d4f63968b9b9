//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package main

import "os"

func isTerminal(f *os.File) bool { return false }
