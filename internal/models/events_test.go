package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvent_Location(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{
			name:  "all parts",
			event: Event{VenueName: strPtr("Blue Room"), Address: "1 Music Sq", City: "Nashville", State: "TN"},
			want:  "Blue Room, 1 Music Sq, Nashville, TN",
		},
		{
			name:  "no venue",
			event: Event{Address: "1 Music Sq", City: "Nashville", State: "TN"},
			want:  "1 Music Sq, Nashville, TN",
		},
		{
			name:  "blank address",
			event: Event{VenueName: strPtr(" "), Address: "", City: "Austin", State: "TX"},
			want:  "Austin, TX",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.event.Location())
		})
	}
}

func TestEvent_Helpers(t *testing.T) {
	t.Parallel()

	ev := Event{
		OrganizerID: strPtr("org-1"),
		Genres:      []Genre{{ID: "g1"}},
		Latitude:    floatPtr(1),
	}
	assert.True(t, ev.IsOrganizedBy("org-1"))
	assert.False(t, ev.IsOrganizedBy(""))
	assert.False(t, ev.IsOrganizedBy("org-2"))
	assert.True(t, ev.HasGenre("g1"))
	assert.False(t, ev.HasGenre("g2"))
	assert.False(t, ev.HasCoordinates())
	assert.Zero(t, ev.PriceOrZero())

	ev.Price = floatPtr(12.5)
	assert.Equal(t, 12.5, ev.PriceOrZero())
}

func TestEventInput_Record(t *testing.T) {
	t.Parallel()

	in := EventInput{
		Title:     " Jazz Night ",
		EventDate: "2024-06-01",
		EventTime: strPtr("19:00"),
		City:      "Nashville",
		State:     "tn",
		Price:     floatPtr(15),
		GenreIDs:  []string{"g1"},
	}
	assert.NoError(t, Validate.Struct(in))

	row := in.Record("org-1")
	assert.Equal(t, "Jazz Night", row["title"])
	assert.Equal(t, "TN", row["state"])
	assert.Equal(t, StatusPending, row["status"])
	assert.Equal(t, false, row["featured"])
	assert.Equal(t, "org-1", row["organizer_id"])
	assert.Equal(t, "19:00", row["event_time"])
	assert.Equal(t, 15.0, row["price"])
	assert.NotContains(t, row, "end_date")
	assert.NotContains(t, row, "genre_ids")
}

func TestEventInput_Changes(t *testing.T) {
	t.Parallel()

	in := EventInput{
		Title:     "Jazz Night",
		EventDate: "2024-06-01",
		City:      "Nashville",
		State:     "tn",
		VenueName: strPtr("Blue Room"),
	}

	tests := []struct {
		name       string
		byAdmin    bool
		wantStatus bool
	}{
		{name: "organizer edit goes back to review", byAdmin: false, wantStatus: true},
		{name: "admin edit keeps moderation state", byAdmin: true, wantStatus: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			row := in.Changes(tt.byAdmin)
			assert.Equal(t, "TN", row["state"])
			assert.Equal(t, "Blue Room", row["venue_name"])
			assert.Contains(t, row, "end_date")
			assert.Nil(t, row["end_date"])
			assert.NotContains(t, row, "organizer_id")
			if tt.wantStatus {
				assert.Equal(t, StatusPending, row["status"])
				assert.Equal(t, false, row["featured"])
			} else {
				assert.NotContains(t, row, "status")
				assert.NotContains(t, row, "featured")
			}
		})
	}
}

func TestEventStatus_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, StatusApproved.Valid())
	assert.True(t, StatusPending.Valid())
	assert.False(t, EventStatus("archived").Valid())
}

func TestUserAdminUpdate(t *testing.T) {
	t.Parallel()

	role := "organizer"
	tier := "gold"

	assert.True(t, UserAdminUpdate{}.IsEmpty())
	assert.Equal(t, map[string]interface{}{"role": "organizer"}, UserAdminUpdate{Role: &role}.Record())
	assert.Error(t, Validate.Struct(UserAdminUpdate{SubscriptionTier: &tier}))
	assert.Equal(t, RolePublic, (*User)(nil).EffectiveRole())
	assert.Equal(t, RoleAdmin, (&User{Role: RoleAdmin}).EffectiveRole())
}
