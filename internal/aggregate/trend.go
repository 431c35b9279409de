package aggregate

import (
	"sort"

	"chat-insights/internal/models"
)

// BucketLabels names the four 6-hour buckets of a day.
var BucketLabels = [4]string{"00:00-06:00", "06:00-12:00", "12:00-18:00", "18:00-24:00"}

// BucketOf returns the bucket index of an hour of day, or -1 for an invalid hour.
func BucketOf(hour int) int {
	if hour < 0 || hour > 23 {
		return -1
	}
	return hour / 6
}

// Trend counts messages per bucket, per hour, per date and per date and
// bucket. Messages without a timestamp are skipped.
func Trend(tables models.FilteredTables) models.Trend {
	var buckets [4]int
	var hours [24]int
	daily := map[string]*models.DateBuckets{}

	for _, m := range tables.Messages {
		h := m.SentAt.Hour()
		b := BucketOf(h)
		if b < 0 {
			continue
		}
		buckets[b]++
		hours[h]++
		key := m.SentAt.DateKey()
		d, ok := daily[key]
		if !ok {
			d = &models.DateBuckets{Date: key}
			daily[key] = d
		}
		d.Buckets[b]++
	}

	t := models.Trend{
		Buckets:      make([]models.BucketCount, 0, len(buckets)),
		Hourly:       make([]models.HourCount, 0, len(hours)),
		Daily:        make([]models.DateCount, 0, len(daily)),
		DailyBuckets: make([]models.DateBuckets, 0, len(daily)),
	}
	for i, c := range buckets {
		t.Buckets = append(t.Buckets, models.BucketCount{Bucket: BucketLabels[i], Count: c})
	}
	for h, c := range hours {
		t.Hourly = append(t.Hourly, models.HourCount{Hour: h, Count: c})
	}

	dates := make([]string, 0, len(daily))
	for k := range daily {
		dates = append(dates, k)
	}
	sort.Strings(dates)
	for _, k := range dates {
		d := daily[k]
		total := 0
		for _, c := range d.Buckets {
			total += c
		}
		t.Daily = append(t.Daily, models.DateCount{Date: k, Count: total})
		t.DailyBuckets = append(t.DailyBuckets, *d)
	}
	return t
}
