package presence

import (
	"testing"

	"github.com/nxyyspace/api/internal/testutil"
)

func TestStoreReplaces(t *testing.T) {
	s := NewStore()

	s.Put(Record{
		DiscordUser:   DiscordUser{ID: "1"},
		DiscordStatus: StatusOnline,
		Activities:    []Activity{{Name: "Game"}},
	})
	s.Put(Record{
		DiscordUser:   DiscordUser{ID: "1"},
		DiscordStatus: StatusOffline,
	})

	rec, ok := s.Get("1")
	testutil.Assert(t, true, ok, "record exists")
	testutil.Assert(t, StatusOffline, rec.DiscordStatus, "status replaced")
	testutil.Assert(t, 0, len(rec.Activities), "activities replaced")
	testutil.Assert(t, 1, s.Len(), "one record per user")
}

func TestStoreReturnsCopies(t *testing.T) {
	s := NewStore()
	s.Put(Record{
		DiscordUser: DiscordUser{ID: "1"},
		Activities:  []Activity{{Name: "Game", Assets: &Assets{LargeText: "a"}}},
	})

	rec, _ := s.Get("1")
	rec.Activities[0].Name = "Changed"
	rec.Activities[0].Assets.LargeText = "b"

	snap := s.Snapshot()
	snap["1"].Activities[0].Assets.SmallText = "c"

	rec, _ = s.Get("1")
	testutil.Assert(t, "Game", rec.Activities[0].Name, "activity name untouched")
	testutil.Assert(t, "a", rec.Activities[0].Assets.LargeText, "assets untouched")
	testutil.Assert(t, "", rec.Activities[0].Assets.SmallText, "snapshot is a copy")
}

func TestStorePutIfUnchanged(t *testing.T) {
	s := NewStore()

	rev := s.Revision()

	s.Put(Record{DiscordUser: DiscordUser{ID: "1"}, DiscordStatus: StatusDND})

	ok := s.PutIfUnchanged(Record{DiscordUser: DiscordUser{ID: "1"}, DiscordStatus: StatusOnline}, rev)
	testutil.Assert(t, false, ok, "older write is refused")

	rec, _ := s.Get("1")
	testutil.Assert(t, StatusDND, rec.DiscordStatus, "newer record kept")

	ok = s.PutIfUnchanged(Record{DiscordUser: DiscordUser{ID: "2"}, DiscordStatus: StatusIdle}, rev)
	testutil.Assert(t, true, ok, "unrelated user is written")

	ok = s.PutIfUnchanged(Record{DiscordUser: DiscordUser{ID: "1"}, DiscordStatus: StatusIdle}, s.Revision())
	testutil.Assert(t, true, ok, "current revision is accepted")
}
