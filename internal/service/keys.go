package service

import "fmt"

func metricsKey(userID string) string {
	return fmt.Sprintf("user_analytics:%s", userID)
}

func trendsKey(userID, period string) string {
	return fmt.Sprintf("productivity_trends:%s:%s", userID, period)
}

func correlationKey(userID string) string {
	return fmt.Sprintf("sleep_correlation:%s", userID)
}

func windowsKey(userID string) string {
	return fmt.Sprintf("performance_windows:%s", userID)
}
