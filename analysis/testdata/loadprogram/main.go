package main

func count(n int) int {
	i := 0
	for i < n {
		i = i + 1
	}
	return i
}

func main() {
	x := count(10)
	y := 100 / x
	_ = y
}
