// Package mmap maps files into memory for the mmap-backed block device.
//
//	f, _ := os.OpenFile("disk.img", os.O_RDWR, 0)
//	m, err := mmap.Map(f, size, true)
//	if err != nil { ... }
//	defer m.Close()
//
//	copy(m.Bytes()[off:], block) // stores go straight to the page cache
//	m.Sync()                     // msync(MS_SYNC)
//	m.Advise(mmap.AccessRandom)
//
// Only unix platforms are supported; elsewhere Map returns ErrUnsupported.
package mmap
