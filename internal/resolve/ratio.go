package resolve

// Ratio returns the normalized Indel similarity of a and b in [0, 100]:
//
//	100 * (1 - (len(a)+len(b)-2*LCS(a,b)) / (len(a)+len(b)))
//
// Lengths count runes. Two empty strings score 100.
func Ratio(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 100
	}
	lcs := lcsLength(ra, rb)
	return 100 * float64(2*lcs) / float64(total)
}

// lcsLength computes the longest common subsequence length with two rows.
func lcsLength(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
