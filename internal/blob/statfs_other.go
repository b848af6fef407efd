//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package blob

func diskFree(string) (int64, bool) { return 0, false }
