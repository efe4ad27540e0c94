//go:build !linux

package flv

import "os"

func adviseSequential(*os.File) {}
