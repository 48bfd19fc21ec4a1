// Package utils provides common utility functions for the datasync application.
// It includes the loose scalar conversions the casting engine relies on: truthiness,
// string rendering of arbitrary values and lenient integer parsing.
package utils
