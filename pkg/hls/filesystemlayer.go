// Copyright 2021, Chef.  All rights reserved.
// https://github.com/q191201771/lal
//
// Use of this source code is governed by a MIT-style license
// that can be found in the License file.
//
// Author: Chef (191201771@qq.com)

package hls

import "github.com/q191201771/naza/pkg/filesystemlayer"

// newFsl picks a filesystem backend per Muxer rather than process-wide,
// since one process may run muxers with different UseMemoryFs settings
// concurrently (a disk-backed recording alongside a memory-backed test
// double, say).
func newFsl(useMemory bool) filesystemlayer.IFileSystemLayer {
	t := filesystemlayer.FslTypeDisk
	if useMemory {
		t = filesystemlayer.FslTypeMemory
	}
	return filesystemlayer.FslFactory(t)
}
