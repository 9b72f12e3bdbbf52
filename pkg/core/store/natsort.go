package store

import (
	"regexp"
	"sort"
	"strconv"

	"bendcalc/pkg/models"
)

var leadingNumber = regexp.MustCompile(`\d+\.?\d*`)

// ChannelSortKey extracts the numeric part of a channel designation so
// "9" sorts before "10" and "50R8" sorts with the 50s. Values with no
// digits sort first, among themselves alphabetically.
func ChannelSortKey(value string) float64 {
	m := leadingNumber.FindString(value)
	if m == "" {
		return 0
	}
	n, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return n
}

// SortChannels orders channels by their numeric designation, falling
// back to the full string for ties.
func SortChannels(channels []models.Channel) {
	sort.SliceStable(channels, func(i, j int) bool {
		ki, kj := ChannelSortKey(channels[i].Value), ChannelSortKey(channels[j].Value)
		if ki != kj {
			return ki < kj
		}
		return channels[i].Value < channels[j].Value
	})
}
