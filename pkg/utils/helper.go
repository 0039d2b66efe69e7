package utils

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"
)

// ParseInt converts string to int with default value
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 1 {
		return defaultValue
	}

	return result
}

// GeneratePayoutReference creates a human-readable payout reference with timestamp
func GeneratePayoutReference() string {
	rand.New(rand.NewSource(time.Now().UnixNano()))
	now := time.Now()

	// Format: PAYOUT-YYYYMMDD-HHMMSS-RANDOM
	datePart := now.Format("20060102")
	timePart := now.Format("150405")
	randomPart := fmt.Sprintf("%04d", rand.Intn(10000))

	return fmt.Sprintf("PAYOUT-%s-%s-%s", datePart, timePart, randomPart)
}
