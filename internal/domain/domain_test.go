package domain

import (
	"errors"
	"math"
	"testing"
	"time"
)

func intPtr(n int) *int { return &n }

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"admin", RoleAdmin, true},
		{" Pastor ", RolePastor, true},
		{"staff", RoleStaff, true},
		{"volunteer", RoleVolunteer, true},
		{"", "", false},
		{"root", "", false},
	}
	for _, c := range cases {
		got, ok := ParseRole(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("ParseRole(%q) = %q, %v", c.in, got, ok)
		}
	}
}

func TestParseEventCategory_EmptyMeansOther(t *testing.T) {
	c, ok := ParseEventCategory("")
	if !ok || c != CategoryOther {
		t.Fatalf("expected other, got %q %v", c, ok)
	}
	if _, ok := ParseEventCategory("party"); ok {
		t.Fatalf("expected unknown category rejected")
	}
}

func TestPageRequest_Normalize(t *testing.T) {
	cases := []struct {
		in   PageRequest
		want PageRequest
	}{
		{PageRequest{}, PageRequest{Page: 1, Limit: DefaultPageLimit}},
		{PageRequest{Page: -3, Limit: 5}, PageRequest{Page: 1, Limit: 5}},
		{PageRequest{Page: 2, Limit: 1000}, PageRequest{Page: 2, Limit: MaxPageLimit}},
		{PageRequest{Page: math.MaxInt, Limit: 10}, PageRequest{Page: MaxPage, Limit: 10}},
	}
	for _, c := range cases {
		if got := c.in.Normalize(); got != c.want {
			t.Fatalf("Normalize(%+v) = %+v", c.in, got)
		}
	}
}

func TestPaginate(t *testing.T) {
	all := []int{1, 2, 3, 4, 5, 6, 7}

	p := Paginate(all, PageRequest{Page: 2, Limit: 3})
	if len(p.Items) != 3 || p.Items[0] != 4 || p.Total != 7 || p.Pages() != 3 {
		t.Fatalf("unexpected page: %+v pages=%d", p, p.Pages())
	}

	last := Paginate(all, PageRequest{Page: 3, Limit: 3})
	if len(last.Items) != 1 || last.Items[0] != 7 {
		t.Fatalf("unexpected last page: %+v", last)
	}

	past := Paginate(all, PageRequest{Page: 9, Limit: 3})
	if len(past.Items) != 0 || past.Total != 7 {
		t.Fatalf("expected empty page past the end, got %+v", past)
	}

	huge := Paginate([]int{1, 2, 3}, PageRequest{Page: math.MaxInt64 / 5, Limit: 10})
	if len(huge.Items) != 0 || huge.Total != 3 {
		t.Fatalf("expected empty page for huge page number, got %+v", huge)
	}

	empty := Paginate([]int{}, PageRequest{})
	if empty.Pages() != 0 {
		t.Fatalf("expected zero pages for empty list")
	}
}

func TestPageRequest_OffsetNeverNegative(t *testing.T) {
	for _, p := range []PageRequest{
		{Page: math.MaxInt, Limit: MaxPageLimit},
		{Page: math.MaxInt64 / 5, Limit: 10},
		{Page: MaxPage, Limit: 1000},
	} {
		if off := p.Offset(); off < 0 {
			t.Fatalf("Offset(%+v) = %d", p, off)
		}
	}
}

func TestEvent_CheckRegistration(t *testing.T) {
	base := func() *Event {
		return &Event{
			IsPublished:  true,
			MaxAttendees: intPtr(2),
			Attendees:    []Attendee{{Name: "A", Email: "a@example.com"}},
		}
	}

	if err := base().CheckRegistration("b@example.com"); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	err := base().CheckRegistration("  A@Example.com ")
	if !HasCode(err, CodeConflict) || err.(*AppError).Message != MsgAlreadyRegistered {
		t.Fatalf("expected duplicate conflict, got %v", err)
	}

	full := base()
	full.Attendees = append(full.Attendees, Attendee{Email: "c@example.com"})
	err = full.CheckRegistration("d@example.com")
	if !HasCode(err, CodeConflict) || err.(*AppError).Message != MsgEventFull {
		t.Fatalf("expected full conflict, got %v", err)
	}

	unlimited := base()
	unlimited.MaxAttendees = nil
	for i := 0; i < 50; i++ {
		unlimited.Attendees = append(unlimited.Attendees, Attendee{Email: "x@example.com"})
	}
	if unlimited.IsFull() {
		t.Fatalf("nil cap must never be full")
	}

	draft := base()
	draft.IsPublished = false
	if err := draft.CheckRegistration("b@example.com"); !HasCode(err, CodeNotFound) {
		t.Fatalf("expected not found for unpublished, got %v", err)
	}
}

func TestSubscription_ReactivateKeepsIdentity(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := &Subscription{ID: "sub-1", Email: "a@example.com", Name: "Ann", IsActive: true, SubscribedAt: t0}

	s.Deactivate(t0.Add(time.Hour))
	if s.IsActive || s.UnsubscribedAt == nil {
		t.Fatalf("expected inactive with timestamp")
	}

	t1 := t0.Add(48 * time.Hour)
	s.Reactivate(t1, "")
	if s.ID != "sub-1" || !s.IsActive || s.UnsubscribedAt != nil || !s.SubscribedAt.Equal(t1) {
		t.Fatalf("unexpected reactivated record: %+v", s)
	}
	if s.Name != "Ann" {
		t.Fatalf("empty name must keep the old one, got %q", s.Name)
	}
}

func TestAppError_IsMatchesCode(t *testing.T) {
	err := ErrConflict("email is already subscribed")
	if !errors.Is(err, ErrConflict("")) {
		t.Fatalf("expected errors.Is to match on code")
	}
	if errors.Is(err, ErrNotFound("")) {
		t.Fatalf("different codes must not match")
	}
	wrapped := errors.Join(errors.New("ctx"), err)
	if !HasCode(wrapped, CodeConflict) {
		t.Fatalf("HasCode must unwrap")
	}
	if NormalizeEmail("  Foo@Bar.COM ") != "foo@bar.com" {
		t.Fatalf("NormalizeEmail")
	}
}
