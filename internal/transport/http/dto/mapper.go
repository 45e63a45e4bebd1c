package dto

import "github.com/baechuer/church-service/internal/domain"

func ToPageResp[T, R any](p domain.Page[T], fn func(T) R) PageResp[R] {
	items := make([]R, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, fn(it))
	}
	return PageResp[R]{
		Items: items,
		Pagination: Pagination{
			Page:  p.Page,
			Limit: p.Limit,
			Total: p.Total,
			Pages: p.Pages(),
		},
	}
}

func mapAll[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, it := range in {
		out = append(out, fn(it))
	}
	return out
}

func ToUserResp(u domain.User) UserResp {
	return UserResp{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func ToPrayerResp(p domain.PrayerRequest) PrayerResp {
	return PrayerResp{
		ID:         p.ID,
		Name:       p.Name,
		Email:      p.Email,
		Request:    p.Request,
		Category:   string(p.Category),
		IsPublic:   p.IsPublic,
		IsAnswered: p.IsAnswered,
		AnsweredAt: p.AnsweredAt,
		CreatedAt:  p.CreatedAt,
	}
}

func ToEventResp(e domain.Event) EventResp {
	count := e.AttendeeCount
	if len(e.Attendees) > count {
		count = len(e.Attendees)
	}
	var remaining *int
	if e.MaxAttendees != nil {
		left := max(*e.MaxAttendees-count, 0)
		remaining = &left
	}
	return EventResp{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		Date:           e.Date,
		EndDate:        e.EndDate,
		Location:       e.Location,
		Category:       string(e.Category),
		MaxAttendees:   e.MaxAttendees,
		AttendeeCount:  count,
		SpotsRemaining: remaining,
		ImageURL:       e.ImageURL,
		IsPublished:    e.IsPublished,
		CreatedBy:      e.CreatedBy,
		CreatedAt:      e.CreatedAt,
	}
}

func ToContactResp(m domain.ContactMessage) ContactResp {
	return ContactResp{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Subject:   m.Subject,
		Message:   m.Message,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

func ToSubscriptionResp(s domain.Subscription) SubscriptionResp {
	return SubscriptionResp{
		ID:             s.ID,
		Email:          s.Email,
		Name:           s.Name,
		IsActive:       s.IsActive,
		SubscribedAt:   s.SubscribedAt,
		UnsubscribedAt: s.UnsubscribedAt,
	}
}

func ToSermonResp(s domain.Sermon) SermonResp {
	return SermonResp{
		ID:          s.ID,
		Title:       s.Title,
		Speaker:     s.Speaker,
		Date:        s.Date,
		Scripture:   s.Scripture,
		Description: s.Description,
		Series:      s.Series,
		VideoURL:    s.VideoURL,
		AudioURL:    s.AudioURL,
		CreatedAt:   s.CreatedAt,
	}
}

func ToDashboardResp(s domain.DashboardStats) DashboardResp {
	return DashboardResp{
		TotalPrayerRequests:      s.TotalPrayerRequests,
		UnansweredPrayerRequests: s.UnansweredPrayerRequests,
		TotalEvents:              s.TotalEvents,
		UpcomingEvents:           s.UpcomingEvents,
		TotalSermons:             s.TotalSermons,
		ActiveSubscribers:        s.ActiveSubscribers,
		RecentPrayerRequests:     mapAll(s.RecentPrayerRequests, ToPrayerResp),
		RecentContactMessages:    mapAll(s.RecentContactMessages, ToContactResp),
	}
}
