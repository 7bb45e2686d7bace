// Package fs abstracts the file system beneath file-backed devices and the
// local blob store so that tests can inject I/O failures.
//
//   - [LocalFS]: the os package
//   - [FaultyFS]: wraps another FileSystem and fails reads, writes, syncs or
//     closes of files whose name matches a rule
//
// Production code uses fs.Default:
//
//	f, err := fs.Default.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
//
// Tests swap in a FaultyFS:
//
//	ffs := fs.NewFaultyFS(nil)
//	ffs.AddRule("disk.img", fs.Fault{FailAfterBytes: 4096})
//
// Operations take no context.Context: local file I/O cannot be interrupted at
// the syscall level.
package fs
