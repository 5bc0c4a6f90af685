package mfs

import "errors"

var errShortWrite = errors.New("mfs: short write")
