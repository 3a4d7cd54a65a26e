package fu

import (
	"path/filepath"
)

// Fnzi returns the first non-zero argument or 0
func Fnzi(a ...int) int {
	for _, x := range a {
		if x != 0 {
			return x
		}
	}
	return 0
}

// Fnzd returns the first non-zero argument or 0
func Fnzd(a ...float64) float64 {
	for _, x := range a {
		if x != 0 {
			return x
		}
	}
	return 0
}

// Fnzs returns the first non-empty argument or ""
func Fnzs(a ...string) string {
	for _, x := range a {
		if x != "" {
			return x
		}
	}
	return ""
}

func Maxi(a int, b ...int) int {
	for _, x := range b {
		if x > a {
			a = x
		}
	}
	return a
}

func Mini(a int, b ...int) int {
	for _, x := range b {
		if x < a {
			a = x
		}
	}
	return a
}

/*
Indmaxd returns index of the first max value, -1 for empty slice
*/
func Indmaxd(a []float64) int {
	j := -1
	for i, x := range a {
		if j < 0 || x > a[j] {
			j = i
		}
	}
	return j
}

/*
Path resolves artifact name relative to the directory unless it's absolute
*/
func Path(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
