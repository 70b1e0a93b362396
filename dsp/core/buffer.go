package core

// ZeroChannels zeroes the first n samples of every channel.
func ZeroChannels(channels [][]float64, n int) {
	for _, ch := range channels {
		if n > len(ch) {
			clear(ch)
			continue
		}
		clear(ch[:n])
	}
}
