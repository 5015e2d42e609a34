package scoring

// AwardStars maps a percentage score to a star count. Tiers are evaluated top-down and the
// result is clamped at zero, so low maxStars values never yield negative stars.
func AwardStars(percentage float64, maxStars int) int {
	var stars int
	switch {
	case percentage >= 90:
		stars = maxStars
	case percentage >= 75:
		stars = maxStars - 1
	case percentage >= 60:
		stars = maxStars - 2
	case percentage >= 50:
		stars = 1
	default:
		stars = 0
	}

	if stars < 0 {
		return 0
	}
	return stars
}
