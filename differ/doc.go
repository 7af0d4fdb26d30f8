// Package differ compares two resolved trees one way: every regular file on
// the left is looked up by relative path on the right, and files present on
// both sides with different bytes are printed and copied into a stage
// directory.
//
// A Differ moves through Init, Resolved, Walking and Closed. Resolution
// errors and I/O errors during the walk divert it through Failed before it
// closes. Both sides are released on every path out of Run and Compare.
package differ
