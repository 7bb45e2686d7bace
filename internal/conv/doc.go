// Package conv provides checked integer conversions for values that come from
// configuration or persisted headers, such as block sizes and image lengths.
package conv
