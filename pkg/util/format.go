package util

import "strings"

// DigitsOnly 숫자만 남긴다
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatPhone 010-1234-5678 형태로 맞춘다. 숫자가 11자리를 넘으면 잘라낸다
func FormatPhone(s string) string {
	nums := DigitsOnly(s)
	switch {
	case len(nums) <= 3:
		return nums
	case len(nums) <= 7:
		return nums[:3] + "-" + nums[3:]
	case len(nums) <= 11:
		return nums[:3] + "-" + nums[3:7] + "-" + nums[7:]
	default:
		return nums[:3] + "-" + nums[3:7] + "-" + nums[7:11]
	}
}

// FormatBusinessNumber 사업자번호 123-45-67890
func FormatBusinessNumber(s string) string {
	nums := DigitsOnly(s)
	if len(nums) > 10 {
		nums = nums[:10]
	}
	switch {
	case len(nums) <= 3:
		return nums
	case len(nums) <= 5:
		return nums[:3] + "-" + nums[3:]
	default:
		return nums[:3] + "-" + nums[3:5] + "-" + nums[5:]
	}
}
