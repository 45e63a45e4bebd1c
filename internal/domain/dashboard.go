package domain

type DashboardStats struct {
	TotalPrayerRequests      int
	UnansweredPrayerRequests int
	TotalEvents              int
	UpcomingEvents           int
	TotalSermons             int
	ActiveSubscribers        int

	RecentPrayerRequests  []PrayerRequest
	RecentContactMessages []ContactMessage
}

const DashboardRecentLimit = 5
