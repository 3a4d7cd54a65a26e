// Package main trains the sleep disorder classifier on the sleep health and
// lifestyle survey and exports the preprocessing record, the native checkpoint
// and the quantized model into the output directory.
package main
