// Package resource shares limits between block caches that live in one process.
//
// A Controller governs three things:
//
//   - Memory: bytes of entry buffers, reserved once when a cache is created
//   - Background slots: how many flush passes may run at the same time
//   - Background I/O: a token bucket paced by write-back and read-ahead bytes
//
// Foreground reads and writes never wait on the controller.
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes:     64 << 20,
//	    MaxBackgroundWorkers: 2,
//	    IOLimitBytesPerSec:   8 << 20,
//	})
//
//	a, _ := blockcache.New(devA, blockcache.WithResourceController(rc))
//	b, _ := blockcache.New(devB, blockcache.WithResourceController(rc))
//
// All methods are safe for concurrent use, and all of them are no-ops on a nil
// *Controller.
package resource
