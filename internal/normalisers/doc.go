// Package normalisers turns policy files into documents.
//
// Each subpackage handles one family of MIME types. The Registry picks the
// highest-priority normaliser for a file and decides, from the file's
// extension or content, which MIME type a file should be treated as.
package normalisers
