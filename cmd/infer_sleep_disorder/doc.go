// Package main scores a survey CSV with the artifacts exported by
// train_sleep_disorder, printing the row number, the predicted class and its
// probability for every row.
package main
