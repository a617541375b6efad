package portfolio

// Risk buckets the portfolio backend understands, from most defensive
// to most aggressive.
var Buckets = []string{
	"Conservative",
	"Moderate",
	"Moderate Growth",
	"Growth",
	"Aggressive Growth",
}

// DefaultBucket is used when a score response carries no bucket.
const DefaultBucket = "Moderate"

// IsValidBucket reports whether name is a known risk bucket.
func IsValidBucket(name string) bool {
	for _, b := range Buckets {
		if b == name {
			return true
		}
	}
	return false
}

// BucketOrDefault returns name if it is a known bucket, DefaultBucket
// otherwise. Empty and unknown values both fall back.
func BucketOrDefault(name string) string {
	if IsValidBucket(name) {
		return name
	}
	return DefaultBucket
}
