package domain

// Timeframes, in ascending bucket size. The chart UI offers exactly
// this list.
var Timeframes = []string{"1m", "5m", "15m", "30m", "1H", "4H", "12H", "1D", "3D", "1W", "1M", "1Y"}

var bucketMillis = map[string]int64{
	"1m":  60_000,
	"5m":  300_000,
	"15m": 900_000,
	"30m": 1_800_000,
	"1H":  3_600_000,
	"4H":  14_400_000,
	"12H": 43_200_000,
	"1D":  86_400_000,
	"3D":  259_200_000,
	"1W":  604_800_000,
	"1M":  2_592_000_000,
	"1Y":  31_536_000_000,
}

// BucketDuration returns the bucket span in milliseconds for a
// timeframe. Unknown timeframes fall back to one minute.
func BucketDuration(timeframe string) int64 {
	if ms, ok := bucketMillis[timeframe]; ok {
		return ms
	}
	return bucketMillis["1m"]
}
