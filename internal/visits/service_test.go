package visits

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCheckInAndList(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	current := base
	svc := &Service{
		Repo:  NewMemoryRepo(),
		Clock: func() time.Time { return current },
	}

	for i, in := range []CheckInInput{
		{Kind: KindOrientation, FirstName: "Ana", LastName: "Diaz", TimeSlot: "9:00 AM"},
		{Kind: KindBadge, FirstName: "Bob", LastName: "Reyes", Phone: "555-0100"},
		{Kind: KindFingerprint, FirstName: "Cara", LastName: "Lin", FingerprintType: "new"},
		{Kind: KindOrientation, FirstName: "Dee", LastName: "Park"},
	} {
		current = base.Add(time.Duration(i) * time.Minute)
		if _, err := svc.CheckIn(context.Background(), in); err != nil {
			t.Fatalf("CheckIn %d: %v", i, err)
		}
	}

	orientation, err := svc.List(context.Background(), KindOrientation)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(orientation) != 2 {
		t.Fatalf("orientation visits = %d, want 2", len(orientation))
	}
	if orientation[0].FirstName != "Dee" {
		t.Errorf("visits[0] = %q, want newest first (Dee)", orientation[0].FirstName)
	}
	if orientation[0].Status != StatusRegistered {
		t.Errorf("status = %q, want %q", orientation[0].Status, StatusRegistered)
	}
	if orientation[1].TimeSlot != "9:00 AM" {
		t.Errorf("time slot = %q, want 9:00 AM", orientation[1].TimeSlot)
	}

	fingerprints, err := svc.List(context.Background(), KindFingerprint)
	if err != nil {
		t.Fatalf("List fingerprints: %v", err)
	}
	if len(fingerprints) != 1 || fingerprints[0].FingerprintType != "new" {
		t.Fatalf("fingerprint visits = %+v, want one with type new", fingerprints)
	}

	all, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("all visits = %d, want 4", len(all))
	}
}

func TestCheckInValidation(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	cases := []struct {
		name string
		in   CheckInInput
	}{
		{"unknown kind", CheckInInput{Kind: "tour", FirstName: "A", LastName: "B"}},
		{"missing name", CheckInInput{Kind: KindBadge, FirstName: " ", LastName: ""}},
		{"fingerprint type on badge visit", CheckInInput{Kind: KindBadge, FirstName: "A", LastName: "B", FingerprintType: "new"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.CheckIn(context.Background(), tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
		})
	}

	if _, err := svc.List(context.Background(), "tour"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("List with bad kind: err = %v, want ErrInvalidInput", err)
	}
}
