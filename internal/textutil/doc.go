// Package textutil provides text normalization helpers shared by the
// alignment corpus builder and command output.
package textutil
