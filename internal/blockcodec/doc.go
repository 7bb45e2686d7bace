// Package blockcodec frames block content for object storage.
//
// A frame is a 13-byte little-endian header followed by the payload:
//
//	[kind u8][rawLen u32][payloadLen u32][crc32c(raw) u32][payload...]
//
// kind records how the payload was produced. Encode falls back to KindNone
// when compression saves less than 10%, so a frame's kind can differ from the
// codec that wrote it. Decode never needs to know the writer's codec.
package blockcodec
