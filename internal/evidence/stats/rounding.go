package stats

// roundDiv divides num by den and rounds half away from zero using integer
// arithmetic only. den must be positive.
func roundDiv(num, den int64) int64 {
	if num < 0 {
		return -((-2*num + den) / (2 * den))
	}
	return (2*num + den) / (2 * den)
}

// averageRounded is the mean of values rounded to an integer.
func averageRounded(values []int) (int64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	var sum int64
	for _, v := range values {
		sum += int64(v)
	}
	return roundDiv(sum, int64(len(values))), true
}

// percentTenths returns part/whole*100 in tenths of a percent, rounded half
// away from zero.
func percentTenths(part, whole int) (int64, bool) {
	if whole <= 0 {
		return 0, false
	}
	return roundDiv(int64(part)*1000, int64(whole)), true
}
